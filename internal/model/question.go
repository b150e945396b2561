package model

import "encoding/json"

// swagger:model Question
// Minimal question record. How a question renders and scores is the question
// engine's business; the quiz core only references questions through slots.
type Question struct {
	BaseModel
	Name          string          `gorm:"size:255;not null" json:"name"`
	QuestionType  string          `gorm:"size:50;not null" json:"questionType"`
	Content       string          `gorm:"type:text" json:"content"`
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	CorrectAnswer string          `gorm:"type:json" json:"-"`
	DefaultMark   float64         `gorm:"default:1" json:"defaultMark"`
}

func (Question) TableName() string {
	return "questions"
}
