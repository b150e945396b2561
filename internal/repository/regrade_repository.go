package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegradeRepository struct {
	DB *gorm.DB
}

func NewRegradeRepository(db *gorm.DB) *RegradeRepository {
	return &RegradeRepository{DB: db}
}

// Upsert writes the mark for (attempt, slot); a later pass over the same slot
// replaces the earlier mark.
func (r *RegradeRepository) Upsert(tx *gorm.DB, mark *model.RegradeMark) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"old_fraction", "new_fraction", "committed", "updated_at"}),
	}).Create(mark).Error
}

func (r *RegradeRepository) ListByAttempt(attemptID uint) ([]model.RegradeMark, error) {
	var marks []model.RegradeMark
	err := r.DB.Where("attempt_id = ?", attemptID).Order("slot").Find(&marks).Error
	return marks, err
}

func (r *RegradeRepository) ListByQuiz(quizID uint, committedOnly bool) ([]model.RegradeMark, error) {
	var marks []model.RegradeMark
	query := r.DB.Where("quiz_id = ?", quizID)
	if committedOnly {
		query = query.Where("committed = ?", true)
	}
	err := query.Order("attempt_id, slot").Find(&marks).Error
	return marks, err
}

// CountUncommitted reports how many dry-run marks are still waiting for a
// committed regrade.
func (r *RegradeRepository) CountUncommitted(quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.RegradeMark{}).
		Where("quiz_id = ? AND committed = ?", quizID, false).
		Count(&count).Error
	return count, err
}
