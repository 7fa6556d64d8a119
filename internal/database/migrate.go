package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/codearena-labs/arena-go-api/internal/models"
)

// Migrate applies the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Problem{},
		&models.TestCase{},
		&models.Submission{},
		&models.Contest{},
		&models.ContestProblem{},
		&models.Participant{},
		&models.StreakState{},
		&models.DailyProgress{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
