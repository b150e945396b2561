package service

import (
	"context"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/pkg/logger"
	"quizhub_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// ScanSummary reports one overdue reconciliation pass.
type ScanSummary struct {
	Due         int `json:"due"`
	Processed   int `json:"processed"`
	Transitions int `json:"transitions"`
	Failed      int `json:"failed"`
	Skipped     int `json:"skipped"`
}

// OverdueService is the batch scheduler that drives deadline transitions for
// every attempt whose next-check time has passed, and keeps check times
// honest when memberships or overrides change.
type OverdueService struct {
	AttemptRepo *repository.AttemptRepository
	QuizRepo    *repository.QuizRepository
	GroupRepo   *repository.GroupRepository
	Overrides   *repository.OverrideRepository
	Access      *AccessService
	Attempts    *AttemptService

	// MinGraceBuffer keeps the scan off attempts due only seconds ago, so a
	// student submitting right at the deadline is not raced needlessly.
	MinGraceBuffer int64
	BatchLimit     int
}

func NewOverdueService(attemptRepo *repository.AttemptRepository, quizRepo *repository.QuizRepository,
	groupRepo *repository.GroupRepository, overrides *repository.OverrideRepository,
	access *AccessService, attempts *AttemptService, minGraceBuffer int64, batchLimit int) *OverdueService {
	return &OverdueService{
		AttemptRepo:    attemptRepo,
		QuizRepo:       quizRepo,
		GroupRepo:      groupRepo,
		Overrides:      overrides,
		Access:         access,
		Attempts:       attempts,
		MinGraceBuffer: minGraceBuffer,
		BatchLimit:     batchLimit,
	}
}

// scanCache is a read-through cache scoped to one scan. Due attempts arrive
// ordered by (course, quiz), so consecutive rows mostly hit it. It dies with
// the scan; nothing here is process-wide.
type scanCache struct {
	quizRepo *repository.QuizRepository
	access   *AccessService
	quizzes  map[uint]*model.Quiz
	resolved map[[2]uint]EffectiveAccess
}

func newScanCache(quizRepo *repository.QuizRepository, access *AccessService) *scanCache {
	return &scanCache{
		quizRepo: quizRepo,
		access:   access,
		quizzes:  make(map[uint]*model.Quiz),
		resolved: make(map[[2]uint]EffectiveAccess),
	}
}

func (c *scanCache) quiz(id uint) (*model.Quiz, error) {
	if q, ok := c.quizzes[id]; ok {
		return q, nil
	}
	q, err := c.quizRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	c.quizzes[id] = q
	return q, nil
}

func (c *scanCache) effectiveAccess(quiz *model.Quiz, userID uint) (EffectiveAccess, error) {
	key := [2]uint{quiz.ID, userID}
	if a, ok := c.resolved[key]; ok {
		return a, nil
	}
	a, err := c.access.Resolve(quiz, userID)
	if err != nil {
		return EffectiveAccess{}, err
	}
	c.resolved[key] = a
	return a, nil
}

// ScanDue processes every attempt due at now-MinGraceBuffer. Access is
// resolved afresh per (quiz, user) since group membership may have changed
// since the attempt started. A failing attempt is logged and skipped; the
// batch always runs on. Cancelling the context stops the scan between
// attempts with all committed progress kept, the rest waiting for the next
// run.
func (s *OverdueService) ScanDue(ctx context.Context, now int64) (*ScanSummary, error) {
	cutoff := now - s.MinGraceBuffer
	due, err := s.AttemptRepo.ListDue(cutoff, s.BatchLimit)
	if err != nil {
		return nil, err
	}

	summary := &ScanSummary{Due: len(due)}
	cache := newScanCache(s.QuizRepo, s.Access)

	for i := range due {
		select {
		case <-ctx.Done():
			summary.Skipped = len(due) - i
			logger.Log.Info("overdue scan stopped early",
				zap.Int("processed", summary.Processed),
				zap.Int("skipped", summary.Skipped))
			return summary, nil
		default:
		}

		attempt := &due[i]
		outcome, err := s.processOne(cache, attempt, now)
		if err != nil {
			summary.Failed++
			monitoring.OverdueFailures.Inc()
			logger.Log.Error("overdue check failed",
				zap.Uint("attemptId", attempt.ID),
				zap.Uint("quizId", attempt.QuizID),
				zap.Error(err))
			continue
		}
		summary.Processed++
		monitoring.OverdueProcessed.Inc()
		if outcome != ExpiryNone {
			summary.Transitions++
		}
	}
	return summary, nil
}

func (s *OverdueService) processOne(cache *scanCache, attempt *model.QuizAttempt, now int64) (ExpiryOutcome, error) {
	quiz, err := cache.quiz(attempt.QuizID)
	if err != nil {
		return ExpiryNone, err
	}
	access, err := cache.effectiveAccess(quiz, attempt.UserID)
	if err != nil {
		return ExpiryNone, err
	}
	return s.Attempts.ProcessDueAttempt(quiz, access, attempt, now)
}

// --- event subscriptions -------------------------------------------------
//
// A deadline must snap back the moment the override or membership behind it
// goes away, not at the next scan. Each handler re-resolves only the
// affected (quiz, user) scope.

func (s *OverdueService) HandleMembershipAdded(e MembershipAdded) {
	s.recomputeForGroupQuizzes(e.GroupID, []uint{e.UserID})
}

func (s *OverdueService) HandleMembershipRemoved(e MembershipRemoved) {
	s.recomputeForGroupQuizzes(e.GroupID, []uint{e.UserID})
}

func (s *OverdueService) HandleGroupDeleted(e GroupDeleted) {
	// The group's overrides are already cascaded away; the event carries the
	// quizzes they covered.
	for _, quizID := range e.QuizIDs {
		s.recomputeQuizUsers(quizID, e.MemberIDs)
	}
}

func (s *OverdueService) HandleOverrideChanged(e OverrideChanged) {
	switch {
	case e.UserID != nil:
		s.recomputeQuizUsers(e.QuizID, []uint{*e.UserID})
	case e.GroupID != nil:
		members, err := s.GroupRepo.UserIDsOfGroup(*e.GroupID)
		if err != nil {
			logger.Log.Error("override change: members lookup failed",
				zap.Uint("groupId", *e.GroupID), zap.Error(err))
			return
		}
		s.recomputeQuizUsers(e.QuizID, members)
	}
}

// recomputeForGroupQuizzes refreshes the given users' attempts at every quiz
// that carries an override for the group.
func (s *OverdueService) recomputeForGroupQuizzes(groupID uint, userIDs []uint) {
	overrides, err := s.Overrides.ListByGroup(groupID)
	if err != nil {
		logger.Log.Error("membership change: override lookup failed",
			zap.Uint("groupId", groupID), zap.Error(err))
		return
	}
	seen := make(map[uint]bool)
	for _, o := range overrides {
		if seen[o.QuizID] {
			continue
		}
		seen[o.QuizID] = true
		s.recomputeQuizUsers(o.QuizID, userIDs)
	}
}

// recomputeQuizUsers re-resolves access for each user's unfinished attempts
// at the quiz and rewrites their next-check times.
func (s *OverdueService) recomputeQuizUsers(quizID uint, userIDs []uint) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		logger.Log.Error("deadline recompute: quiz lookup failed",
			zap.Uint("quizId", quizID), zap.Error(err))
		return
	}
	attempts, err := s.AttemptRepo.ListActiveForUsers(quizID, userIDs)
	if err != nil {
		logger.Log.Error("deadline recompute: attempt lookup failed",
			zap.Uint("quizId", quizID), zap.Error(err))
		return
	}
	for i := range attempts {
		attempt := &attempts[i]
		access, err := s.Access.Resolve(quiz, attempt.UserID)
		if err != nil {
			logger.Log.Error("deadline recompute: resolve failed",
				zap.Uint("attemptId", attempt.ID), zap.Error(err))
			continue
		}
		RecomputeTimeCheckState(quiz, access, attempt)
		if err := s.AttemptRepo.Update(attempt); err != nil {
			logger.Log.Error("deadline recompute: save failed",
				zap.Uint("attemptId", attempt.ID), zap.Error(err))
		}
	}
}
