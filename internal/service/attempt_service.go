package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExpiryOutcome is what a time-expiry check decided for one attempt.
type ExpiryOutcome int

const (
	ExpiryNone ExpiryOutcome = iota
	ExpiryOverdue
	ExpiryFinished
	ExpiryAbandoned
)

const attemptLockTTL = 30 * time.Second

// AttemptService owns the attempt lifecycle: creation, explicit submission,
// and the deadline-driven transitions.
type AttemptService struct {
	AttemptRepo *repository.AttemptRepository
	QuizRepo    *repository.QuizRepository
	Access      *AccessService
	Grades      *GradeService
	Engine      QuestionEngine
	Notifier    Notifier
	DB          *gorm.DB
	Redis       *redis.Client
}

func NewAttemptService(attemptRepo *repository.AttemptRepository, quizRepo *repository.QuizRepository,
	access *AccessService, grades *GradeService, engine QuestionEngine, notifier Notifier,
	db *gorm.DB, rdb *redis.Client) *AttemptService {
	return &AttemptService{
		AttemptRepo: attemptRepo,
		QuizRepo:    quizRepo,
		Access:      access,
		Grades:      grades,
		Engine:      engine,
		Notifier:    notifier,
		DB:          db,
		Redis:       rdb,
	}
}

// StartAttempt begins (or resumes) an attempt. A non-empty reason list means
// the student is blocked; that is a normal outcome, not an error.
func (s *AttemptService) StartAttempt(quizID, userID uint, password string, isPreview bool) (*model.QuizAttempt, []string, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, nil, err
	}
	// Unpublished quizzes are only reachable as previews.
	if !quiz.IsPublished && !isPreview {
		return nil, nil, util.ErrQuizNotPublished
	}

	// Resume rather than stack a second live attempt.
	existing, err := s.AttemptRepo.FindInProgress(quizID, userID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return existing, nil, nil
	}

	access, err := s.Access.Resolve(quiz, userID)
	if err != nil {
		return nil, nil, err
	}
	used, err := s.AttemptRepo.CountByQuizUser(quizID, userID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().Unix()
	reasons := s.Access.EvaluateRules(&AccessContext{
		Quiz:             quiz,
		Access:           access,
		Now:              now,
		AttemptsUsed:     int(used),
		SuppliedPassword: password,
		IsPreview:        isPreview,
	})
	if len(reasons) > 0 {
		return nil, reasons, nil
	}

	seq, err := s.AttemptRepo.MaxAttemptNumber(quizID, userID)
	if err != nil {
		return nil, nil, err
	}

	var layout model.QuizLayout
	if quiz.EachAttemptBuildsOnLast && seq > 0 {
		last, err := s.lastFinishedAttempt(quizID, userID)
		if err != nil {
			return nil, nil, err
		}
		if last == nil {
			// Precondition failure in the caller, not a user condition.
			return nil, nil, util.ErrNoPreviousAttempt
		}
		layout = last.Layout
	} else {
		layout, err = s.buildLayout(quiz)
		if err != nil {
			return nil, nil, err
		}
	}

	attempt := &model.QuizAttempt{
		QuizID:       quizID,
		UserID:       userID,
		Attempt:      seq + 1,
		State:        model.AttemptInProgress,
		TimeStart:    now,
		TimeModified: now,
		IsPreview:    isPreview,
		Layout:       layout,
	}
	if !isPreview {
		attempt.TimeCheckState = ComputeTimeCheckState(access, now)
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, nil, err
	}

	slots, err := s.QuizRepo.ListSlots(quizID)
	if err != nil {
		return nil, nil, err
	}
	for _, slot := range slots {
		if err := s.Engine.StartSession(attempt.ID, slot.Slot, slot.QuestionID); err != nil {
			return nil, nil, err
		}
	}
	return attempt, nil, nil
}

func (s *AttemptService) lastFinishedAttempt(quizID, userID uint) (*model.QuizAttempt, error) {
	attempts, err := s.AttemptRepo.ListByQuizUser(quizID, userID)
	if err != nil {
		return nil, err
	}
	return lastFinishedReal(attempts), nil
}

// lastFinishedReal picks the newest finished non-preview attempt. Preview
// attempts never seed a builds-on-last layout.
func lastFinishedReal(attempts []model.QuizAttempt) *model.QuizAttempt {
	for i := len(attempts) - 1; i >= 0; i-- {
		if attempts[i].IsPreview {
			continue
		}
		if attempts[i].State == model.AttemptFinished {
			return &attempts[i]
		}
	}
	return nil
}

func (s *AttemptService) buildLayout(quiz *model.Quiz) (model.QuizLayout, error) {
	slots, err := s.QuizRepo.ListSlots(quiz.ID)
	if err != nil {
		return nil, err
	}
	order := make([]int, len(slots))
	for i, slot := range slots {
		order[i] = slot.Slot
	}
	if quiz.ShuffleQuestions {
		rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return model.BuildLayout(order, quiz.QuestionsPerPage), nil
}

func (s *AttemptService) findAttempt(attemptID uint) (*model.QuizAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrAttemptNotFound
	}
	return attempt, err
}

// SaveResponse records an answer for one slot of a live attempt.
func (s *AttemptService) SaveResponse(attemptID, userID uint, slot int, response string) error {
	attempt, err := s.findAttempt(attemptID)
	if err != nil {
		return err
	}
	if attempt.UserID != userID {
		return util.ErrPermissionDenied
	}
	if attempt.State.IsTerminal() {
		return util.ErrAttemptFinished
	}
	if err := s.Engine.SubmitResponse(attemptID, slot, response); err != nil {
		return err
	}
	attempt.TimeModified = time.Now().Unix()
	return s.AttemptRepo.Update(attempt)
}

// SubmitAttempt finishes an attempt on the student's explicit request,
// regardless of the overdue-handling policy. Submitting an attempt already
// in a terminal state is a no-op.
func (s *AttemptService) SubmitAttempt(attemptID, userID uint) (*model.QuizAttempt, error) {
	unlock, err := s.lockAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	attempt, err := s.findAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.State.IsTerminal() {
		return attempt, nil
	}

	quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	attempt.State = model.AttemptFinished
	attempt.TimeFinish = now
	attempt.TimeModified = now
	attempt.TimeCheckState = nil
	if err := s.finalizeAttempt(quiz, attempt); err != nil {
		return nil, err
	}
	s.Notifier.AttemptSubmitted(quiz, attempt)
	return attempt, nil
}

// TimeExpiryCheck runs the deadline transition for one attempt, resolving
// the effective access afresh. Safe to call from a page load or from the
// scheduler; a terminal attempt is left alone.
func (s *AttemptService) TimeExpiryCheck(attemptID uint, now int64) (ExpiryOutcome, error) {
	attempt, err := s.findAttempt(attemptID)
	if err != nil {
		return ExpiryNone, err
	}
	quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
	if err != nil {
		return ExpiryNone, err
	}
	access, err := s.Access.Resolve(quiz, attempt.UserID)
	if err != nil {
		return ExpiryNone, err
	}
	return s.ProcessDueAttempt(quiz, access, attempt, now)
}

// ProcessDueAttempt applies the time-expiry transition with an already
// resolved access (the scheduler path, which caches resolution per quiz).
func (s *AttemptService) ProcessDueAttempt(quiz *model.Quiz, access EffectiveAccess, attempt *model.QuizAttempt, now int64) (ExpiryOutcome, error) {
	unlock, err := s.lockAttempt(attempt.ID)
	if err != nil {
		return ExpiryNone, err
	}
	defer unlock()

	// Reload under the lock: a racing explicit submit may have won.
	attempt, err = s.AttemptRepo.FindByID(attempt.ID)
	if err != nil {
		return ExpiryNone, err
	}

	outcome := ApplyTimeExpiry(quiz, access, attempt, now)
	switch outcome {
	case ExpiryNone:
		// The recomputed deadline may still have moved.
		return ExpiryNone, s.AttemptRepo.Update(attempt)
	case ExpiryOverdue:
		if err := s.AttemptRepo.Update(attempt); err != nil {
			return ExpiryNone, err
		}
		s.Notifier.AttemptOverdue(quiz, attempt)
		return outcome, nil
	case ExpiryFinished:
		if err := s.finalizeAttempt(quiz, attempt); err != nil {
			return ExpiryNone, err
		}
		s.Notifier.AttemptSubmitted(quiz, attempt)
		return outcome, nil
	case ExpiryAbandoned:
		if err := s.finalizeAttempt(quiz, attempt); err != nil {
			return ExpiryNone, err
		}
		return outcome, nil
	}
	return ExpiryNone, nil
}

// ApplyTimeExpiry is the transition table of the attempt state machine. It
// mutates the attempt in memory only; persistence and grading are the
// caller's business.
//
// The effective deadline is recomputed from access rather than trusted from
// the stored check time, so an override or membership change that moved the
// deadline since the attempt started is honored.
func ApplyTimeExpiry(quiz *model.Quiz, access EffectiveAccess, attempt *model.QuizAttempt, now int64) ExpiryOutcome {
	if attempt.State.IsTerminal() || attempt.IsPreview {
		return ExpiryNone
	}

	deadline := ComputeTimeCheckState(access, attempt.TimeStart)
	if deadline == nil {
		attempt.TimeCheckState = nil
		return ExpiryNone
	}

	check := *deadline
	if attempt.State == model.AttemptOverdue {
		check += int64(quiz.GracePeriod)
	}
	attempt.TimeCheckState = &check

	if now < check {
		return ExpiryNone
	}

	attempt.TimeModified = now
	switch quiz.OverdueHandling {
	case model.OverdueAutoAbandon:
		attempt.State = model.AttemptAbandoned
		// The student is deemed to have stopped at the deadline, not now.
		attempt.TimeFinish = check
		attempt.TimeCheckState = nil
		return ExpiryAbandoned
	case model.OverdueGracePeriod:
		if attempt.State == model.AttemptInProgress {
			attempt.State = model.AttemptOverdue
			graceEnd := check + int64(quiz.GracePeriod)
			attempt.TimeCheckState = &graceEnd
			return ExpiryOverdue
		}
		// Grace period spent. TimeFinish is the pre-grace deadline.
		attempt.State = model.AttemptFinished
		attempt.TimeFinish = check - int64(quiz.GracePeriod)
		attempt.TimeCheckState = nil
		return ExpiryFinished
	default: // autosubmit
		attempt.State = model.AttemptFinished
		attempt.TimeFinish = check
		attempt.TimeCheckState = nil
		return ExpiryFinished
	}
}

// RecomputeTimeCheckState refreshes an unfinished attempt's next-check time
// after an access-changing event, without waiting for the next full scan.
func RecomputeTimeCheckState(quiz *model.Quiz, access EffectiveAccess, attempt *model.QuizAttempt) {
	if attempt.State.IsTerminal() || attempt.IsPreview {
		attempt.TimeCheckState = nil
		return
	}
	deadline := ComputeTimeCheckState(access, attempt.TimeStart)
	if deadline == nil {
		attempt.TimeCheckState = nil
		return
	}
	check := *deadline
	if attempt.State == model.AttemptOverdue {
		check += int64(quiz.GracePeriod)
	}
	attempt.TimeCheckState = &check
}

// finalizeAttempt persists a terminal transition as one unit: sum the marks,
// save the attempt, recompute the user's aggregated grade. The grade push
// notification fires only after the transaction commits.
func (s *AttemptService) finalizeAttempt(quiz *model.Quiz, attempt *model.QuizAttempt) error {
	if attempt.State == model.AttemptFinished {
		sum, err := s.sumGrades(quiz, attempt)
		if err != nil {
			return err
		}
		attempt.SumGrades = sum
	}
	var grade *float64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}
		var err error
		grade, err = s.Grades.saveBestGradeTx(tx, quiz, attempt.UserID)
		return err
	})
	if err != nil {
		return err
	}
	if grade != nil {
		s.Notifier.GradePushed(quiz, attempt.UserID, *grade)
	}
	return nil
}

func (s *AttemptService) sumGrades(quiz *model.Quiz, attempt *model.QuizAttempt) (*float64, error) {
	slots, err := s.QuizRepo.ListSlots(quiz.ID)
	if err != nil {
		return nil, err
	}
	sum := 0.0
	graded := false
	for _, slot := range slots {
		fraction, err := s.Engine.CurrentFraction(attempt.ID, slot.Slot)
		if err != nil {
			return nil, err
		}
		if fraction == nil {
			continue
		}
		graded = true
		sum += *fraction * slot.MaxMark
	}
	if !graded {
		zero := 0.0
		return &zero, nil
	}
	return &sum, nil
}

// DeleteAttempt removes an attempt on explicit teacher/admin action and
// recomputes the owner's grade.
func (s *AttemptService) DeleteAttempt(attemptID uint) error {
	attempt, err := s.findAttempt(attemptID)
	if err != nil {
		return err
	}
	quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.AttemptRepo.Delete(tx, attemptID); err != nil {
			return err
		}
		_, err := s.Grades.saveBestGradeTx(tx, quiz, attempt.UserID)
		return err
	})
}

// lockAttempt serializes conflicting transitions on the same attempt (an
// autosubmit racing an explicit submit). Cross-attempt operations never
// contend.
func (s *AttemptService) lockAttempt(attemptID uint) (func(), error) {
	if s.Redis == nil {
		return func() {}, nil
	}
	ctx := context.Background()
	key := fmt.Sprintf("quizhub:attempt:lock:%d", attemptID)
	ok, err := s.Redis.SetNX(ctx, key, 1, attemptLockTTL).Result()
	if err != nil {
		// Redis being down must not take attempts with it.
		logger.Log.Warn("attempt lock unavailable", zap.Uint("attemptId", attemptID), zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		return nil, util.ErrAttemptActive
	}
	return func() {
		if err := s.Redis.Del(ctx, key).Err(); err != nil {
			logger.Log.Warn("attempt unlock failed", zap.Uint("attemptId", attemptID), zap.Error(err))
		}
	}, nil
}
