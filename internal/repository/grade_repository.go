package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GradeRepository struct {
	DB *gorm.DB
}

func NewGradeRepository(db *gorm.DB) *GradeRepository {
	return &GradeRepository{DB: db}
}

// Upsert writes the grade row for (quiz, user), replacing any existing one.
// Re-running with the same value is a no-op on the stored grade.
func (r *GradeRepository) Upsert(tx *gorm.DB, grade *model.QuizGrade) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "quiz_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"grade", "time_modified", "updated_at"}),
	}).Create(grade).Error
}

func (r *GradeRepository) Find(quizID, userID uint) (*model.QuizGrade, error) {
	var g model.QuizGrade
	err := r.DB.Where("quiz_id = ? AND user_id = ?", quizID, userID).First(&g).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GradeRepository) ListByQuiz(quizID uint) ([]model.QuizGrade, error) {
	var grades []model.QuizGrade
	err := r.DB.Where("quiz_id = ?", quizID).Order("user_id").Find(&grades).Error
	return grades, err
}

func (r *GradeRepository) Delete(tx *gorm.DB, quizID, userID uint) error {
	return tx.Unscoped().Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Delete(&model.QuizGrade{}).Error
}
