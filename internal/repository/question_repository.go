package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) FindByIDs(ids []uint) (map[uint]model.Question, error) {
	result := make(map[uint]model.Question, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var qs []model.Question
	if err := r.DB.Where("id IN ?", ids).Find(&qs).Error; err != nil {
		return nil, err
	}
	for _, q := range qs {
		result[q.ID] = q
	}
	return result, nil
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}
