package service

import (
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"

	"gorm.io/gorm"
)

// QuestionEngine is the opaque scored-response collaborator. The quiz core
// only ever asks it to start a slot, record a response, and produce a
// fraction in [0,1]; how the fraction is derived is not its concern.
type QuestionEngine interface {
	StartSession(attemptID uint, slot int, questionID uint) error
	SubmitResponse(attemptID uint, slot int, response string) error
	// CurrentFraction returns nil when the slot has no gradable response yet.
	CurrentFraction(attemptID uint, slot int) (*float64, error)
	// Regrade recomputes the slot's fraction from the stored response
	// history. With finalize it also persists the recomputed value inside
	// the caller's transaction; tx may be nil otherwise.
	Regrade(tx *gorm.DB, attemptID uint, slot int, finalize bool) (*float64, error)
	MaxMark(quizID uint, slot int) (float64, error)
}

// DBQuestionEngine is the default engine: responses live in attempt steps
// and grading is an exact-answer comparison. Real deployments swap in a
// richer engine behind the same interface.
type DBQuestionEngine struct {
	AttemptRepo  *repository.AttemptRepository
	QuizRepo     *repository.QuizRepository
	QuestionRepo *repository.QuestionRepository
}

func NewDBQuestionEngine(attemptRepo *repository.AttemptRepository, quizRepo *repository.QuizRepository, questionRepo *repository.QuestionRepository) *DBQuestionEngine {
	return &DBQuestionEngine{
		AttemptRepo:  attemptRepo,
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
	}
}

func (e *DBQuestionEngine) StartSession(attemptID uint, slot int, questionID uint) error {
	return e.AttemptRepo.CreateSteps([]model.AttemptStep{{
		AttemptID: attemptID,
		Slot:      slot,
	}})
}

func (e *DBQuestionEngine) SubmitResponse(attemptID uint, slot int, response string) error {
	step, err := e.AttemptRepo.GetStep(attemptID, slot)
	if err != nil {
		return err
	}
	if step == nil {
		step = &model.AttemptStep{AttemptID: attemptID, Slot: slot}
	}
	step.Response = response
	fraction, err := e.gradeStep(attemptID, slot, response)
	if err != nil {
		return err
	}
	step.Fraction = fraction
	return e.AttemptRepo.SaveStep(e.AttemptRepo.DB, step)
}

func (e *DBQuestionEngine) CurrentFraction(attemptID uint, slot int) (*float64, error) {
	step, err := e.AttemptRepo.GetStep(attemptID, slot)
	if err != nil || step == nil {
		return nil, err
	}
	return step.Fraction, nil
}

func (e *DBQuestionEngine) Regrade(tx *gorm.DB, attemptID uint, slot int, finalize bool) (*float64, error) {
	step, err := e.AttemptRepo.GetStep(attemptID, slot)
	if err != nil || step == nil {
		return nil, err
	}
	if step.Response == "" {
		return nil, nil
	}
	fraction, err := e.gradeStep(attemptID, slot, step.Response)
	if err != nil {
		return nil, err
	}
	if finalize {
		step.Fraction = fraction
		step.Finalized = true
		if err := e.AttemptRepo.SaveStep(tx, step); err != nil {
			return nil, err
		}
	}
	return fraction, nil
}

func (e *DBQuestionEngine) MaxMark(quizID uint, slot int) (float64, error) {
	slots, err := e.QuizRepo.ListSlots(quizID)
	if err != nil {
		return 0, err
	}
	for _, s := range slots {
		if s.Slot == slot {
			return s.MaxMark, nil
		}
	}
	return 0, nil
}

func (e *DBQuestionEngine) gradeStep(attemptID uint, slot int, response string) (*float64, error) {
	attempt, err := e.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	slots, err := e.QuizRepo.ListSlots(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	var questionID uint
	for _, s := range slots {
		if s.Slot == slot {
			questionID = s.QuestionID
			break
		}
	}
	if questionID == 0 {
		return nil, nil
	}
	question, err := e.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, err
	}
	fraction := 0.0
	if response != "" && response == question.CorrectAnswer {
		fraction = 1.0
	}
	return &fraction, nil
}
