package model

// OverdueHandling controls what happens to an in-progress attempt once its
// deadline passes.
type OverdueHandling string

const (
	OverdueAutoSubmit  OverdueHandling = "autosubmit"
	OverdueGracePeriod OverdueHandling = "graceperiod"
	OverdueAutoAbandon OverdueHandling = "autoabandon"
)

// GradeMethod selects how one final grade is derived from multiple attempts.
type GradeMethod string

const (
	GradeHighest GradeMethod = "highest"
	GradeAverage GradeMethod = "average"
	GradeFirst   GradeMethod = "first"
	GradeLast    GradeMethod = "last"
)

// swagger:model Quiz
// Time fields are unix seconds; 0 means "not set" (no open time, no close
// time, no time limit). AttemptsAllowed 0 means unlimited.
type Quiz struct {
	BaseModel
	CourseID                uint            `gorm:"index;type:bigint unsigned" json:"courseId"`
	Title                   string          `gorm:"size:255;not null" json:"title"`
	Intro                   string          `gorm:"type:text" json:"intro"`
	TimeOpen                int64           `gorm:"default:0" json:"timeOpen"`
	TimeClose               int64           `gorm:"default:0" json:"timeClose"`
	TimeLimit               int             `gorm:"default:0" json:"timeLimit"` // Seconds
	GracePeriod             int             `gorm:"default:0" json:"gracePeriod"`
	OverdueHandling         OverdueHandling `gorm:"type:enum('autosubmit','graceperiod','autoabandon');default:'autosubmit'" json:"overdueHandling"`
	GradeMethod             GradeMethod     `gorm:"type:enum('highest','average','first','last');default:'highest'" json:"gradeMethod"`
	AttemptsAllowed         int             `gorm:"default:0" json:"attemptsAllowed"`
	EachAttemptBuildsOnLast bool            `gorm:"default:false" json:"eachAttemptBuildsOnLast"`
	ShuffleQuestions        bool            `gorm:"default:false" json:"shuffleQuestions"`
	QuestionsPerPage        int             `gorm:"default:1" json:"questionsPerPage"`
	SumGrades               float64         `gorm:"default:0" json:"sumGrades"`
	MaxGrade                float64         `gorm:"default:10" json:"maxGrade"`
	Password                string          `gorm:"size:255" json:"-"`
	IsPublished             bool            `gorm:"default:false" json:"isPublished"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// HasTimeLimit reports whether attempts at this quiz can ever become overdue
// with the quiz defaults alone (overrides may still change this per user).
func (q *Quiz) HasTimeLimit() bool {
	return q.TimeClose != 0 || q.TimeLimit != 0
}

// swagger:model QuizSlot
// One position in the quiz's question sequence. The question behind a slot is
// opaque to the attempt machinery; only its maximum mark matters here.
type QuizSlot struct {
	BaseModel
	QuizID     uint    `gorm:"index:idx_quiz_slot,unique;type:bigint unsigned" json:"quizId"`
	Slot       int     `gorm:"index:idx_quiz_slot,unique" json:"slot"`
	QuestionID uint    `gorm:"index;type:bigint unsigned" json:"questionId"`
	MaxMark    float64 `gorm:"default:1" json:"maxMark"`
	Page       int     `gorm:"default:1" json:"page"`
}

func (QuizSlot) TableName() string {
	return "quiz_slots"
}
