package model

// swagger:model QuizOverride
// An override is scoped to exactly one of UserID or GroupID. Every value
// field is nullable: nil inherits the quiz default, an explicit 0 means
// "no close time" / "no time limit" / "unlimited attempts".
type QuizOverride struct {
	BaseModel
	QuizID    uint    `gorm:"index;type:bigint unsigned;not null" json:"quizId"`
	UserID    *uint   `gorm:"index;type:bigint unsigned" json:"userId,omitempty"`
	GroupID   *uint   `gorm:"index;type:bigint unsigned" json:"groupId,omitempty"`
	TimeOpen  *int64  `json:"timeOpen,omitempty"`
	TimeClose *int64  `json:"timeClose,omitempty"`
	TimeLimit *int    `json:"timeLimit,omitempty"` // Seconds
	Attempts  *int    `json:"attempts,omitempty"`
	Password  *string `gorm:"size:255" json:"-"`
}

func (QuizOverride) TableName() string {
	return "quiz_overrides"
}

// IsUserScoped reports whether this override applies to a single user rather
// than a group.
func (o *QuizOverride) IsUserScoped() bool {
	return o.UserID != nil
}

// IsEmpty reports whether no field of the override deviates from the quiz
// defaults. Empty overrides are deleted rather than stored.
func (o *QuizOverride) IsEmpty() bool {
	return o.TimeOpen == nil && o.TimeClose == nil && o.TimeLimit == nil &&
		o.Attempts == nil && o.Password == nil
}

// MergeFrom copies every non-nil field of other into o. Used when a second
// override is written for a scope that already has one: the pair collapses to
// a single row, last write winning per field.
func (o *QuizOverride) MergeFrom(other *QuizOverride) {
	if other.TimeOpen != nil {
		o.TimeOpen = other.TimeOpen
	}
	if other.TimeClose != nil {
		o.TimeClose = other.TimeClose
	}
	if other.TimeLimit != nil {
		o.TimeLimit = other.TimeLimit
	}
	if other.Attempts != nil {
		o.Attempts = other.Attempts
	}
	if other.Password != nil {
		o.Password = other.Password
	}
}
