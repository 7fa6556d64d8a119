package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/codearena-labs/arena-go-api/internal/models"
)

// ProblemQuery filters problem listings.
type ProblemQuery struct {
	Difficulty string
	Topic      string
	Page       int
	PageSize   int
}

// ProblemRepository exposes persistence helpers for problems and their
// test cases.
type ProblemRepository interface {
	List(ctx context.Context, query ProblemQuery) ([]models.Problem, int64, error)
	GetByID(ctx context.Context, id uint) (models.Problem, error)
}

// NewProblemRepository constructs a problem repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

type problemRepository struct {
	db *gorm.DB
}

func (r *problemRepository) List(ctx context.Context, query ProblemQuery) ([]models.Problem, int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.Problem{})

	if query.Difficulty != "" {
		tx = tx.Where("difficulty = ?", query.Difficulty)
	}
	if query.Topic != "" {
		tx = tx.Where("topics LIKE ?", "%"+query.Topic+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.PageSize > 0 {
		page := query.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Offset((page - 1) * query.PageSize).Limit(query.PageSize)
	}

	var problems []models.Problem
	if err := tx.Order("id ASC").Find(&problems).Error; err != nil {
		return nil, 0, err
	}
	return problems, total, nil
}

func (r *problemRepository) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	var problem models.Problem
	err := r.db.WithContext(ctx).
		Preload("TestCases", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordinal ASC")
		}).
		First(&problem, id).Error
	if err != nil {
		return models.Problem{}, err
	}
	return problem, nil
}
