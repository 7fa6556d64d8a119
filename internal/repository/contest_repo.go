package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codearena-labs/arena-go-api/internal/models"
)

// ContestRepository exposes persistence helpers for contests and their
// participants. Participant mutations run under a row lock so concurrent
// submissions from the same user never drop a score increment.
type ContestRepository interface {
	GetByID(ctx context.Context, id uint) (models.Contest, error)
	Save(ctx context.Context, contest *models.Contest) error
	GetParticipant(ctx context.Context, contestID, userID uint) (models.Participant, error)
	CreateParticipant(ctx context.Context, participant *models.Participant) error
	UpdateParticipantLocked(ctx context.Context, contestID, userID uint, fn func(participant *models.Participant) error) error
	ListParticipants(ctx context.Context, contestID uint) ([]models.Participant, error)
	SaveRanks(ctx context.Context, participants []models.Participant) error
}

// NewContestRepository constructs a contest repository.
func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

type contestRepository struct {
	db *gorm.DB
}

func (r *contestRepository) GetByID(ctx context.Context, id uint) (models.Contest, error) {
	var contest models.Contest
	err := r.db.WithContext(ctx).
		Preload("Problems").
		Preload("Problems.Problem").
		First(&contest, id).Error
	if err != nil {
		return models.Contest{}, err
	}
	return contest, nil
}

func (r *contestRepository) Save(ctx context.Context, contest *models.Contest) error {
	return r.db.WithContext(ctx).Omit("Problems", "Participants").Save(contest).Error
}

func (r *contestRepository) GetParticipant(ctx context.Context, contestID, userID uint) (models.Participant, error) {
	var participant models.Participant
	err := r.db.WithContext(ctx).
		Where("contest_id = ? AND user_id = ?", contestID, userID).
		First(&participant).Error
	if err != nil {
		return models.Participant{}, err
	}
	return participant, nil
}

func (r *contestRepository) CreateParticipant(ctx context.Context, participant *models.Participant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

// UpdateParticipantLocked loads the participant row FOR UPDATE inside a
// transaction, applies fn, and persists the result. The lock serialises
// concurrent read-modify-write cycles on the same participant.
func (r *contestRepository) UpdateParticipantLocked(ctx context.Context, contestID, userID uint, fn func(participant *models.Participant) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var participant models.Participant
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("contest_id = ? AND user_id = ?", contestID, userID).
			First(&participant).Error
		if err != nil {
			return err
		}

		if err := fn(&participant); err != nil {
			return err
		}

		return tx.Save(&participant).Error
	})
}

func (r *contestRepository) ListParticipants(ctx context.Context, contestID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("joined_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *contestRepository) SaveRanks(ctx context.Context, participants []models.Participant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range participants {
			err := tx.Model(&models.Participant{}).
				Where("id = ?", participants[i].ID).
				Update("rank", participants[i].Rank).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
