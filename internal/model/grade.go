package model

// swagger:model QuizGrade
// Denormalized final grade for one (quiz, user) pair. Fully derived from the
// user's terminal non-preview attempts; safe to drop and recompute.
type QuizGrade struct {
	BaseModel
	QuizID       uint    `gorm:"index:idx_quiz_user_grade,unique;type:bigint unsigned" json:"quizId"`
	UserID       uint    `gorm:"index:idx_quiz_user_grade,unique;type:bigint unsigned" json:"userId"`
	Grade        float64 `json:"grade"`
	TimeModified int64   `json:"timeModified"`
}

func (QuizGrade) TableName() string {
	return "quiz_grades"
}

// swagger:model RegradeMark
// Record of one slot's fraction change found by a regrade pass. Committed is
// false for dry runs; uncommitted marks left behind flag attempts that still
// need a real regrade.
type RegradeMark struct {
	BaseModel
	AttemptID   uint    `gorm:"index:idx_attempt_regrade_slot,unique;type:bigint unsigned" json:"attemptId"`
	QuizID      uint    `gorm:"index;type:bigint unsigned" json:"quizId"`
	Slot        int     `gorm:"index:idx_attempt_regrade_slot,unique" json:"slot"`
	OldFraction float64 `json:"oldFraction"`
	NewFraction float64 `json:"newFraction"`
	MaxMark     float64 `json:"maxMark"`
	Committed   bool    `gorm:"default:false" json:"committed"`
}

func (RegradeMark) TableName() string {
	return "quiz_regrade_marks"
}
