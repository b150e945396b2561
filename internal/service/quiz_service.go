package service

import (
	"encoding/json"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"

	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo     *repository.QuizRepository
	AttemptRepo  *repository.AttemptRepository
	QuestionRepo *repository.QuestionRepository
	Grades       *GradeService
	DB           *gorm.DB
}

func NewQuizService(quizRepo *repository.QuizRepository, attemptRepo *repository.AttemptRepository,
	questionRepo *repository.QuestionRepository, grades *GradeService, db *gorm.DB) *QuizService {
	return &QuizService{
		QuizRepo:     quizRepo,
		AttemptRepo:  attemptRepo,
		QuestionRepo: questionRepo,
		Grades:       grades,
		DB:           db,
	}
}

type QuizRequest struct {
	CourseID                uint    `json:"courseId" binding:"required"`
	Title                   string  `json:"title" binding:"required"`
	Intro                   string  `json:"intro"`
	TimeOpen                int64   `json:"timeOpen"`
	TimeClose               int64   `json:"timeClose"`
	TimeLimit               int     `json:"timeLimit"`
	GracePeriod             int     `json:"gracePeriod"`
	OverdueHandling         string  `json:"overdueHandling"`
	GradeMethod             string  `json:"gradeMethod"`
	AttemptsAllowed         int     `json:"attemptsAllowed"`
	EachAttemptBuildsOnLast bool    `json:"eachAttemptBuildsOnLast"`
	ShuffleQuestions        bool    `json:"shuffleQuestions"`
	QuestionsPerPage        int     `json:"questionsPerPage"`
	MaxGrade                float64 `json:"maxGrade"`
	Password                string  `json:"password"`
	IsPublished             bool    `json:"isPublished"`
}

func (s *QuizService) Create(req QuizRequest) (*model.Quiz, error) {
	quiz := &model.Quiz{
		CourseID:                req.CourseID,
		Title:                   req.Title,
		Intro:                   req.Intro,
		TimeOpen:                req.TimeOpen,
		TimeClose:               req.TimeClose,
		TimeLimit:               req.TimeLimit,
		GracePeriod:             req.GracePeriod,
		OverdueHandling:         model.OverdueAutoSubmit,
		GradeMethod:             model.GradeHighest,
		AttemptsAllowed:         req.AttemptsAllowed,
		EachAttemptBuildsOnLast: req.EachAttemptBuildsOnLast,
		ShuffleQuestions:        req.ShuffleQuestions,
		QuestionsPerPage:        req.QuestionsPerPage,
		MaxGrade:                req.MaxGrade,
		Password:                req.Password,
		IsPublished:             req.IsPublished,
	}
	if req.OverdueHandling != "" {
		quiz.OverdueHandling = model.OverdueHandling(req.OverdueHandling)
	}
	if req.GradeMethod != "" {
		quiz.GradeMethod = model.GradeMethod(req.GradeMethod)
	}
	if quiz.MaxGrade == 0 {
		quiz.MaxGrade = 10
	}
	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) Get(id uint) (*model.Quiz, error) {
	return s.QuizRepo.FindByID(id)
}

// List returns the course's quizzes; students only see published ones.
func (s *QuizService) List(courseID uint, page, limit int, publishedOnly bool) ([]model.Quiz, int64, error) {
	return s.QuizRepo.ListByCourse(courseID, page, limit, publishedOnly)
}

func (s *QuizService) Update(id uint, req QuizRequest) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	quiz.Title = req.Title
	quiz.Intro = req.Intro
	quiz.TimeOpen = req.TimeOpen
	quiz.TimeClose = req.TimeClose
	quiz.TimeLimit = req.TimeLimit
	quiz.GracePeriod = req.GracePeriod
	if req.OverdueHandling != "" {
		quiz.OverdueHandling = model.OverdueHandling(req.OverdueHandling)
	}
	if req.GradeMethod != "" {
		quiz.GradeMethod = model.GradeMethod(req.GradeMethod)
	}
	quiz.AttemptsAllowed = req.AttemptsAllowed
	quiz.EachAttemptBuildsOnLast = req.EachAttemptBuildsOnLast
	quiz.ShuffleQuestions = req.ShuffleQuestions
	quiz.QuestionsPerPage = req.QuestionsPerPage
	if req.MaxGrade > 0 {
		quiz.MaxGrade = req.MaxGrade
	}
	quiz.Password = req.Password
	quiz.IsPublished = req.IsPublished
	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Delete removes the quiz with everything under it: slots, attempts and
// their steps, overrides, grades, regrade marks.
func (s *QuizService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.QuizRepo.Delete(tx, id)
	})
}

// AddQuestion appends a question as a new slot and refreshes the mark sum.
func (s *QuizService) AddQuestion(quizID, questionID uint, maxMark float64) (*model.QuizSlot, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, err
	}
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, err
	}
	if maxMark <= 0 {
		maxMark = question.DefaultMark
	}
	maxSlot, err := s.QuizRepo.MaxSlot(quizID)
	if err != nil {
		return nil, err
	}
	slot := &model.QuizSlot{
		QuizID:     quizID,
		Slot:       maxSlot + 1,
		QuestionID: questionID,
		MaxMark:    maxMark,
	}
	if err := s.QuizRepo.CreateSlot(slot); err != nil {
		return nil, err
	}
	if err := s.RecomputeSumGrades(quiz); err != nil {
		return nil, err
	}
	return slot, nil
}

// RemoveQuestion drops a slot and refreshes the mark sum.
func (s *QuizService) RemoveQuestion(quizID uint, slot int) error {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return err
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.QuizRepo.DeleteSlot(tx, quizID, slot)
	})
	if err != nil {
		return err
	}
	return s.RecomputeSumGrades(quiz)
}

// RecomputeSumGrades re-derives the quiz's total achievable marks from its
// slots. If the sum collapses to 0 while attempts already exist, MaxGrade is
// forced to 0 rather than leaving grades undefined; a deliberate degenerate
// policy, not an error.
func (s *QuizService) RecomputeSumGrades(quiz *model.Quiz) error {
	slots, err := s.QuizRepo.ListSlots(quiz.ID)
	if err != nil {
		return err
	}
	sum := 0.0
	for _, slot := range slots {
		sum += slot.MaxMark
	}
	quiz.SumGrades = sum

	if sum <= 0 {
		var total int64
		if err := s.DB.Model(&model.QuizAttempt{}).
			Where("quiz_id = ?", quiz.ID).Count(&total).Error; err != nil {
			return err
		}
		if total > 0 {
			quiz.MaxGrade = 0
		}
	}
	return s.QuizRepo.Update(quiz)
}

// SlotView is a quiz slot joined with its question for the structure editor.
type SlotView struct {
	model.QuizSlot
	Question *model.Question `json:"question,omitempty"`
}

func (s *QuizService) Slots(quizID uint) ([]SlotView, error) {
	slots, err := s.QuizRepo.ListSlots(quizID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.QuestionID)
	}
	questions, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	views := make([]SlotView, len(slots))
	for i, slot := range slots {
		views[i] = SlotView{QuizSlot: slot}
		if q, ok := questions[slot.QuestionID]; ok {
			q := q
			views[i].Question = &q
		}
	}
	return views, nil
}

// UpdateSlotMark changes one slot's maximum mark and refreshes the quiz's
// mark sum.
func (s *QuizService) UpdateSlotMark(quizID uint, slotNum int, maxMark float64) (*model.QuizSlot, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, err
	}
	slots, err := s.QuizRepo.ListSlots(quizID)
	if err != nil {
		return nil, err
	}
	var target *model.QuizSlot
	for i := range slots {
		if slots[i].Slot == slotNum {
			target = &slots[i]
			break
		}
	}
	if target == nil {
		return nil, gorm.ErrRecordNotFound
	}
	target.MaxMark = maxMark
	if err := s.QuizRepo.UpdateSlot(target); err != nil {
		return nil, err
	}
	if err := s.RecomputeSumGrades(quiz); err != nil {
		return nil, err
	}
	return target, nil
}

type QuestionRequest struct {
	Name          string          `json:"name" binding:"required"`
	QuestionType  string          `json:"questionType" binding:"required"`
	Content       string          `json:"content"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer string          `json:"correctAnswer"`
	DefaultMark   float64         `json:"defaultMark"`
}

func (s *QuizService) CreateQuestion(req QuestionRequest) (*model.Question, error) {
	question := &model.Question{
		Name:          req.Name,
		QuestionType:  req.QuestionType,
		Content:       req.Content,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		DefaultMark:   req.DefaultMark,
	}
	if question.DefaultMark <= 0 {
		question.DefaultMark = 1
	}
	if err := s.QuestionRepo.Create(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuizService) UpdateQuestion(id uint, req QuestionRequest) (*model.Question, error) {
	question, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	question.Name = req.Name
	question.QuestionType = req.QuestionType
	question.Content = req.Content
	question.Options = req.Options
	question.CorrectAnswer = req.CorrectAnswer
	if req.DefaultMark > 0 {
		question.DefaultMark = req.DefaultMark
	}
	if err := s.QuestionRepo.Update(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuizService) DeleteQuestion(id uint) error {
	return s.QuestionRepo.Delete(id)
}

func (s *QuizService) GetQuestion(id uint) (*model.Question, error) {
	return s.QuestionRepo.FindByID(id)
}
