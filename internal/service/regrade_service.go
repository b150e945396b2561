package service

import (
	"math"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/logger"
	"quizhub_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// regradeEpsilon is the smallest fraction change worth recording.
const regradeEpsilon = 1e-7

// SlotRegrade is the outcome of regrading one slot.
type SlotRegrade struct {
	Slot        int      `json:"slot"`
	OldFraction *float64 `json:"oldFraction"`
	NewFraction *float64 `json:"newFraction"`
	MaxMark     float64  `json:"maxMark"`
	Changed     bool     `json:"changed"`
}

// RegradeSummary reports a batch regrade.
type RegradeSummary struct {
	AttemptsProcessed int  `json:"attemptsProcessed"`
	AttemptsFailed    int  `json:"attemptsFailed"`
	SlotsChanged      int  `json:"slotsChanged"`
	DryRun            bool `json:"dryRun"`
}

// RegradeService replays question-level grading over stored responses, e.g.
// after a question bug fix, with dry-run and committed modes.
type RegradeService struct {
	AttemptRepo *repository.AttemptRepository
	QuizRepo    *repository.QuizRepository
	RegradeRepo *repository.RegradeRepository
	Engine      QuestionEngine
	Grades      *GradeService
	DB          *gorm.DB
}

func NewRegradeService(attemptRepo *repository.AttemptRepository, quizRepo *repository.QuizRepository,
	regradeRepo *repository.RegradeRepository, engine QuestionEngine, grades *GradeService,
	db *gorm.DB) *RegradeService {
	return &RegradeService{
		AttemptRepo: attemptRepo,
		QuizRepo:    quizRepo,
		RegradeRepo: regradeRepo,
		Engine:      engine,
		Grades:      grades,
		DB:          db,
	}
}

// RegradeAttempt regrades the targeted slots of one attempt (all slots when
// slots is empty). Dry-run records marks but leaves the attempt, its sum and
// the gradebook untouched; committed mode updates them in one transaction.
func (s *RegradeService) RegradeAttempt(attemptID uint, dryRun bool, slots []int) ([]SlotRegrade, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	target := slots
	if len(target) == 0 {
		target = attempt.Layout.Slots()
	}

	// Evaluate every target slot first without touching storage: a failure
	// here leaves nothing behind in either mode.
	results, err := s.evaluateSlots(attempt, target)
	if err != nil {
		return nil, err
	}

	if dryRun {
		// Pending markers only; steps, the attempt sum and the gradebook
		// stay as they were.
		for _, r := range results {
			if !r.Changed {
				continue
			}
			if err := s.RegradeRepo.Upsert(s.DB, s.markOf(attempt, r, false)); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	// Committed: finalize the step fractions, record the marks, fold the
	// new fractions into the attempt sum and re-derive the user's final
	// grade, all in one per-attempt transaction.
	qslots, err := s.QuizRepo.ListSlots(quiz.ID)
	if err != nil {
		return nil, err
	}
	sum, err := s.recomputeSum(attempt, qslots, results)
	if err != nil {
		return nil, err
	}
	attempt.SumGrades = sum
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, r := range results {
			if !r.Changed {
				continue
			}
			if _, err := s.Engine.Regrade(tx, attempt.ID, r.Slot, true); err != nil {
				return err
			}
			if err := s.RegradeRepo.Upsert(tx, s.markOf(attempt, r, true)); err != nil {
				return err
			}
		}
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}
		_, err := s.Grades.saveBestGradeTx(tx, quiz, attempt.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// evaluateSlots recomputes each target slot's fraction without persisting
// anything, so dry-run and committed runs report identical outcomes.
func (s *RegradeService) evaluateSlots(attempt *model.QuizAttempt, target []int) ([]SlotRegrade, error) {
	var results []SlotRegrade
	for _, slot := range target {
		oldFraction, err := s.Engine.CurrentFraction(attempt.ID, slot)
		if err != nil {
			return nil, err
		}
		newFraction, err := s.Engine.Regrade(nil, attempt.ID, slot, false)
		if err != nil {
			return nil, err
		}
		maxMark, err := s.Engine.MaxMark(attempt.QuizID, slot)
		if err != nil {
			return nil, err
		}
		changed := fractionChanged(oldFraction, newFraction)
		if changed {
			monitoring.RegradeSlotsChanged.Inc()
		}
		results = append(results, SlotRegrade{
			Slot:        slot,
			OldFraction: oldFraction,
			NewFraction: newFraction,
			MaxMark:     maxMark,
			Changed:     changed,
		})
	}
	return results, nil
}

func (s *RegradeService) markOf(attempt *model.QuizAttempt, r SlotRegrade, committed bool) *model.RegradeMark {
	return &model.RegradeMark{
		AttemptID:   attempt.ID,
		QuizID:      attempt.QuizID,
		Slot:        r.Slot,
		OldFraction: deref(r.OldFraction),
		NewFraction: deref(r.NewFraction),
		MaxMark:     r.MaxMark,
		Committed:   committed,
	}
}

// recomputeSum derives the attempt sum from the regraded fractions, falling
// back to the stored fraction for untouched slots.
func (s *RegradeService) recomputeSum(attempt *model.QuizAttempt, qslots []model.QuizSlot, regraded []SlotRegrade) (*float64, error) {
	newFractions := make(map[int]*float64, len(regraded))
	for _, r := range regraded {
		newFractions[r.Slot] = r.NewFraction
	}
	sum := 0.0
	graded := false
	for _, slot := range qslots {
		fraction, ok := newFractions[slot.Slot]
		if !ok {
			var err error
			fraction, err = s.Engine.CurrentFraction(attempt.ID, slot.Slot)
			if err != nil {
				return nil, err
			}
		}
		if fraction == nil {
			continue
		}
		graded = true
		sum += *fraction * slot.MaxMark
	}
	if !graded {
		return nil, nil
	}
	return &sum, nil
}

// RegradeAll regrades every terminal attempt of the quiz. Each attempt is
// its own unit of work: one failing attempt is logged and skipped, the rest
// complete. A committed run ends with a bulk final-grade update.
func (s *RegradeService) RegradeAll(quizID uint, dryRun bool) (*RegradeSummary, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.AttemptRepo.ListTerminalByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	summary := &RegradeSummary{DryRun: dryRun}
	for i := range attempts {
		results, err := s.RegradeAttempt(attempts[i].ID, dryRun, nil)
		if err != nil {
			summary.AttemptsFailed++
			monitoring.RegradeFailures.Inc()
			logger.Log.Error("regrade failed",
				zap.Uint("attemptId", attempts[i].ID),
				zap.Uint("quizId", quizID),
				zap.Error(err))
			continue
		}
		summary.AttemptsProcessed++
		for _, r := range results {
			if r.Changed {
				summary.SlotsChanged++
			}
		}
	}

	if !dryRun {
		if err := s.Grades.UpdateAllFinalGrades(quiz); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// PendingMarks returns the quiz's dry-run marks still awaiting a committed
// regrade; a discoverability hook for operators.
func (s *RegradeService) PendingMarks(quizID uint) (int64, []model.RegradeMark, error) {
	count, err := s.RegradeRepo.CountUncommitted(quizID)
	if err != nil {
		return 0, nil, err
	}
	marks, err := s.RegradeRepo.ListByQuiz(quizID, false)
	if err != nil {
		return 0, nil, err
	}
	return count, marks, nil
}

func fractionChanged(oldFraction, newFraction *float64) bool {
	return math.Abs(deref(oldFraction)-deref(newFraction)) > regradeEpsilon
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
