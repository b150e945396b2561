package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type OverrideRepository struct {
	DB *gorm.DB
}

func NewOverrideRepository(db *gorm.DB) *OverrideRepository {
	return &OverrideRepository{DB: db}
}

func (r *OverrideRepository) Create(o *model.QuizOverride) error {
	return r.DB.Create(o).Error
}

func (r *OverrideRepository) Update(o *model.QuizOverride) error {
	return r.DB.Save(o).Error
}

func (r *OverrideRepository) FindByID(id uint) (*model.QuizOverride, error) {
	var o model.QuizOverride
	if err := r.DB.First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OverrideRepository) Delete(id uint) error {
	return r.DB.Delete(&model.QuizOverride{}, id).Error
}

func (r *OverrideRepository) FindForUser(quizID, userID uint) (*model.QuizOverride, error) {
	var o model.QuizOverride
	err := r.DB.Where("quiz_id = ? AND user_id = ?", quizID, userID).First(&o).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OverrideRepository) FindForGroup(quizID, groupID uint) (*model.QuizOverride, error) {
	var o model.QuizOverride
	err := r.DB.Where("quiz_id = ? AND group_id = ?", quizID, groupID).First(&o).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListForGroups returns the quiz's group-scoped overrides applicable to any
// of the given groups.
func (r *OverrideRepository) ListForGroups(quizID uint, groupIDs []uint) ([]model.QuizOverride, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	var overrides []model.QuizOverride
	err := r.DB.Where("quiz_id = ? AND group_id IN ?", quizID, groupIDs).
		Order("id").Find(&overrides).Error
	return overrides, err
}

func (r *OverrideRepository) ListForQuiz(quizID uint) ([]model.QuizOverride, error) {
	var overrides []model.QuizOverride
	err := r.DB.Where("quiz_id = ?", quizID).Order("id").Find(&overrides).Error
	return overrides, err
}

func (r *OverrideRepository) ListByGroup(groupID uint) ([]model.QuizOverride, error) {
	var overrides []model.QuizOverride
	err := r.DB.Where("group_id = ?", groupID).Find(&overrides).Error
	return overrides, err
}

// DeleteByGroup removes every override owned by a group, as part of the
// group-deletion cascade.
func (r *OverrideRepository) DeleteByGroup(tx *gorm.DB, groupID uint) error {
	return tx.Where("group_id = ?", groupID).Delete(&model.QuizOverride{}).Error
}
