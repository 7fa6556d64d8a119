package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codearena-labs/arena-go-api/internal/models"
)

// StreakRepository exposes persistence helpers for per-user streak state.
// All mutations go through UpdateLocked so concurrent accepted verdicts for
// the same user cannot drop a daily increment.
type StreakRepository interface {
	GetByUser(ctx context.Context, userID uint) (models.StreakState, error)
	UpdateLocked(ctx context.Context, userID uint, fn func(state *models.StreakState) error) error
}

// NewStreakRepository constructs a streak repository.
func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepository{db: db}
}

type streakRepository struct {
	db *gorm.DB
}

func (r *streakRepository) GetByUser(ctx context.Context, userID uint) (models.StreakState, error) {
	var state models.StreakState
	err := r.db.WithContext(ctx).
		Preload("Days", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC")
		}).
		Where("user_id = ?", userID).
		First(&state).Error
	if err != nil {
		return models.StreakState{}, err
	}
	return state, nil
}

// UpdateLocked loads (or creates) the user's streak row FOR UPDATE inside a
// transaction, applies fn, and persists the state together with its daily
// progress entries.
func (r *streakRepository) UpdateLocked(ctx context.Context, userID uint, fn func(state *models.StreakState) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var state models.StreakState
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Days", func(db *gorm.DB) *gorm.DB {
				return db.Order("date ASC")
			}).
			Where("user_id = ?", userID).
			First(&state).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			state = models.StreakState{UserID: userID, Badge: models.BadgeNone}
			if err := tx.Create(&state).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := fn(&state); err != nil {
			return err
		}

		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&state).Error
	})
}
