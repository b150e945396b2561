package service

import (
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"

	"gorm.io/gorm"
)

// GradeService maintains the denormalized per-user final grade: one value
// aggregated from all of the user's terminal non-preview attempts per the
// quiz's grading method.
type GradeService struct {
	AttemptRepo *repository.AttemptRepository
	GradeRepo   *repository.GradeRepository
	Notifier    Notifier
	DB          *gorm.DB
}

func NewGradeService(attemptRepo *repository.AttemptRepository, gradeRepo *repository.GradeRepository,
	notifier Notifier, db *gorm.DB) *GradeService {
	return &GradeService{
		AttemptRepo: attemptRepo,
		GradeRepo:   gradeRepo,
		Notifier:    notifier,
		DB:          db,
	}
}

// AggregateGrade derives the user's final grade from their attempts, already
// ordered by sequence number. The raw value of one attempt is its mark sum
// normalized by the quiz's total achievable marks; the result is rescaled to
// MaxGrade. Returns nil when no attempt yields a grade.
func AggregateGrade(quiz *model.Quiz, attempts []model.QuizAttempt) *float64 {
	var graded []model.QuizAttempt
	for _, a := range attempts {
		if a.CountsForGrading() {
			graded = append(graded, a)
		}
	}
	if len(graded) == 0 {
		return nil
	}

	fraction := func(a *model.QuizAttempt) *float64 {
		if a.SumGrades == nil {
			return nil
		}
		if quiz.SumGrades <= 0 {
			// Degenerate quiz structure; MaxGrade is forced to 0 elsewhere.
			zero := 0.0
			return &zero
		}
		f := *a.SumGrades / quiz.SumGrades
		return &f
	}

	var raw *float64
	switch quiz.GradeMethod {
	case model.GradeFirst:
		raw = fraction(&graded[0])
	case model.GradeLast:
		raw = fraction(&graded[len(graded)-1])
	case model.GradeAverage:
		sum, count := 0.0, 0
		for i := range graded {
			if f := fraction(&graded[i]); f != nil {
				sum += *f
				count++
			}
		}
		if count > 0 {
			mean := sum / float64(count)
			raw = &mean
		}
	default: // highest
		for i := range graded {
			f := fraction(&graded[i])
			if f == nil {
				continue
			}
			if raw == nil || *f > *raw {
				raw = f
			}
		}
	}

	if raw == nil {
		return nil
	}
	final := *raw * quiz.MaxGrade
	return &final
}

// ComputeFinalGrades aggregates a whole quiz in one pass over its terminal
// attempts (ordered by user then sequence), yielding exactly what calling
// AggregateGrade per user would.
func ComputeFinalGrades(quiz *model.Quiz, attempts []model.QuizAttempt) map[uint]*float64 {
	grades := make(map[uint]*float64)
	start := 0
	for i := 1; i <= len(attempts); i++ {
		if i == len(attempts) || attempts[i].UserID != attempts[start].UserID {
			grades[attempts[start].UserID] = AggregateGrade(quiz, attempts[start:i])
			start = i
		}
	}
	return grades
}

// saveBestGradeTx recomputes and stores the user's final grade inside the
// caller's transaction. A nil grade deletes any existing record instead of
// storing null. Idempotent: the same attempt set always produces the same
// stored grade. The caller decides whether to notify once its transaction
// commits.
func (s *GradeService) saveBestGradeTx(tx *gorm.DB, quiz *model.Quiz, userID uint) (*float64, error) {
	var attempts []model.QuizAttempt
	if err := tx.Where("quiz_id = ? AND user_id = ?", quiz.ID, userID).
		Order("attempt").Find(&attempts).Error; err != nil {
		return nil, err
	}
	grade := AggregateGrade(quiz, attempts)
	if grade == nil {
		return nil, s.GradeRepo.Delete(tx, quiz.ID, userID)
	}
	return grade, s.GradeRepo.Upsert(tx, &model.QuizGrade{
		QuizID:       quiz.ID,
		UserID:       userID,
		Grade:        *grade,
		TimeModified: time.Now().Unix(),
	})
}

// UpdateAllFinalGrades recomputes every user's final grade for the quiz in
// one aggregate pass. Produces the same stored values as looping
// the per-user recompute over every user.
func (s *GradeService) UpdateAllFinalGrades(quiz *model.Quiz) error {
	attempts, err := s.AttemptRepo.ListTerminalByQuiz(quiz.ID)
	if err != nil {
		return err
	}
	grades := ComputeFinalGrades(quiz, attempts)

	existing, err := s.GradeRepo.ListByQuiz(quiz.ID)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for userID, grade := range grades {
			if grade == nil {
				if err := s.GradeRepo.Delete(tx, quiz.ID, userID); err != nil {
					return err
				}
				continue
			}
			err := s.GradeRepo.Upsert(tx, &model.QuizGrade{
				QuizID:       quiz.ID,
				UserID:       userID,
				Grade:        *grade,
				TimeModified: now,
			})
			if err != nil {
				return err
			}
		}
		// Grade rows whose attempts have all gone away.
		for _, g := range existing {
			if _, ok := grades[g.UserID]; !ok {
				if err := s.GradeRepo.Delete(tx, quiz.ID, g.UserID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
