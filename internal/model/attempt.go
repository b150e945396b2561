package model

// AttemptState is the lifecycle state of one quiz attempt.
//
//	inprogress -> overdue | finished | abandoned
//	overdue    -> finished | abandoned
//
// finished and abandoned are terminal.
type AttemptState string

const (
	AttemptInProgress AttemptState = "inprogress"
	AttemptOverdue    AttemptState = "overdue"
	AttemptFinished   AttemptState = "finished"
	AttemptAbandoned  AttemptState = "abandoned"
)

// IsTerminal reports whether no further transition may be applied.
func (s AttemptState) IsTerminal() bool {
	return s == AttemptFinished || s == AttemptAbandoned
}

// swagger:model QuizAttempt
// Time fields are unix seconds. TimeCheckState is the next instant at which
// the overdue scheduler must re-examine the attempt; it is nil exactly when
// the attempt cannot become overdue (no applicable close time or time limit,
// or a preview) or has reached a terminal state.
type QuizAttempt struct {
	BaseModel
	QuizID         uint         `gorm:"index:idx_quiz_user_seq,unique;type:bigint unsigned" json:"quizId"`
	UserID         uint         `gorm:"index:idx_quiz_user_seq,unique;type:bigint unsigned" json:"userId"`
	Attempt        int          `gorm:"index:idx_quiz_user_seq,unique" json:"attempt"` // 1-based sequence
	State          AttemptState `gorm:"type:enum('inprogress','overdue','finished','abandoned');default:'inprogress';index" json:"state"`
	TimeStart      int64        `json:"timeStart"`
	TimeFinish     int64        `gorm:"default:0" json:"timeFinish"`
	TimeModified   int64        `json:"timeModified"`
	TimeCheckState *int64       `gorm:"index" json:"timeCheckState,omitempty"`
	SumGrades      *float64     `json:"sumGrades,omitempty"`
	IsPreview      bool         `gorm:"default:false" json:"isPreview"`
	Layout         QuizLayout   `gorm:"type:json" json:"layout"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// CountsForGrading reports whether the attempt participates in grade
// aggregation: terminal, non-preview, nothing else.
func (a *QuizAttempt) CountsForGrading() bool {
	return !a.IsPreview && a.State.IsTerminal()
}

// swagger:model AttemptStep
// Stored response state for one slot of one attempt. This is the backing
// store the default question engine reads when computing or regrading a
// fraction; the attempt machinery itself never interprets Response.
type AttemptStep struct {
	BaseModel
	AttemptID uint     `gorm:"index:idx_attempt_slot,unique;type:bigint unsigned" json:"attemptId"`
	Slot      int      `gorm:"index:idx_attempt_slot,unique" json:"slot"`
	Response  string   `gorm:"type:json" json:"response"`
	Fraction  *float64 `json:"fraction,omitempty"`
	Finalized bool     `gorm:"default:false" json:"finalized"`
}

func (AttemptStep) TableName() string {
	return "quiz_attempt_steps"
}
