package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var q model.Quiz
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) ListByCourse(courseID uint, page, limit int, publishedOnly bool) ([]model.Quiz, int64, error) {
	var quizzes []model.Quiz
	var total int64
	query := r.DB.Model(&model.Quiz{})
	if courseID > 0 {
		query = query.Where("course_id = ?", courseID)
	}
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&quizzes).Error
	return quizzes, total, err
}

// Delete removes the quiz and everything hanging off it. Caller supplies the
// transaction so the cascade is one atomic unit.
func (r *QuizRepository) Delete(tx *gorm.DB, quizID uint) error {
	var attemptIDs []uint
	if err := tx.Model(&model.QuizAttempt{}).Where("quiz_id = ?", quizID).
		Pluck("id", &attemptIDs).Error; err != nil {
		return err
	}
	if len(attemptIDs) > 0 {
		if err := tx.Where("attempt_id IN ?", attemptIDs).Delete(&model.AttemptStep{}).Error; err != nil {
			return err
		}
	}
	for _, m := range []interface{}{
		&model.RegradeMark{}, &model.QuizAttempt{}, &model.QuizOverride{},
		&model.QuizGrade{}, &model.QuizSlot{},
	} {
		if err := tx.Where("quiz_id = ?", quizID).Delete(m).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&model.Quiz{}, quizID).Error
}

func (r *QuizRepository) CreateSlot(slot *model.QuizSlot) error {
	return r.DB.Create(slot).Error
}

func (r *QuizRepository) UpdateSlot(slot *model.QuizSlot) error {
	return r.DB.Save(slot).Error
}

func (r *QuizRepository) DeleteSlot(tx *gorm.DB, quizID uint, slot int) error {
	return tx.Where("quiz_id = ? AND slot = ?", quizID, slot).Delete(&model.QuizSlot{}).Error
}

func (r *QuizRepository) ListSlots(quizID uint) ([]model.QuizSlot, error) {
	var slots []model.QuizSlot
	err := r.DB.Where("quiz_id = ?", quizID).Order("slot").Find(&slots).Error
	return slots, err
}

func (r *QuizRepository) MaxSlot(quizID uint) (int, error) {
	var maxSlot *int
	err := r.DB.Model(&model.QuizSlot{}).Where("quiz_id = ?", quizID).
		Select("MAX(slot)").Scan(&maxSlot).Error
	if err != nil || maxSlot == nil {
		return 0, err
	}
	return *maxSlot, nil
}
