package service

import (
	"testing"

	"quizhub_backend/internal/model"
)

func liveAttempt(start int64) *model.QuizAttempt {
	return &model.QuizAttempt{
		State:     model.AttemptInProgress,
		TimeStart: start,
	}
}

func TestApplyTimeExpiryBeforeDeadline(t *testing.T) {
	quiz := &model.Quiz{OverdueHandling: model.OverdueAutoSubmit}
	access := EffectiveAccess{TimeLimit: 600}
	attempt := liveAttempt(100)

	outcome := ApplyTimeExpiry(quiz, access, attempt, 699)
	if outcome != ExpiryNone {
		t.Fatalf("expected no transition, got %v", outcome)
	}
	if attempt.State != model.AttemptInProgress {
		t.Fatalf("state changed: %v", attempt.State)
	}
	if attempt.TimeCheckState == nil || *attempt.TimeCheckState != 700 {
		t.Fatalf("check time should be the deadline: %v", attempt.TimeCheckState)
	}
}

func TestApplyTimeExpiryAutoSubmit(t *testing.T) {
	quiz := &model.Quiz{OverdueHandling: model.OverdueAutoSubmit}
	access := EffectiveAccess{TimeLimit: 600}
	attempt := liveAttempt(100)

	// Well past the deadline: the attempt finishes at the deadline, not at
	// the time the check happened to run.
	outcome := ApplyTimeExpiry(quiz, access, attempt, 1500)
	if outcome != ExpiryFinished {
		t.Fatalf("expected finish, got %v", outcome)
	}
	if attempt.State != model.AttemptFinished {
		t.Fatalf("state: %v", attempt.State)
	}
	if attempt.TimeFinish != 700 {
		t.Fatalf("finish time should be the deadline 700, got %d", attempt.TimeFinish)
	}
	if attempt.TimeCheckState != nil {
		t.Fatal("terminal attempt keeps no check time")
	}
}

func TestApplyTimeExpiryGracePeriod(t *testing.T) {
	quiz := &model.Quiz{OverdueHandling: model.OverdueGracePeriod, GracePeriod: 300}
	access := EffectiveAccess{TimeLimit: 600}
	attempt := liveAttempt(100)

	// Deadline passes: the attempt goes overdue and the next check is the
	// end of the grace window.
	outcome := ApplyTimeExpiry(quiz, access, attempt, 700)
	if outcome != ExpiryOverdue {
		t.Fatalf("expected overdue, got %v", outcome)
	}
	if attempt.State != model.AttemptOverdue {
		t.Fatalf("state: %v", attempt.State)
	}
	if attempt.TimeCheckState == nil || *attempt.TimeCheckState != 1000 {
		t.Fatalf("grace end should be 1000, got %v", attempt.TimeCheckState)
	}

	// Still inside the grace window: nothing happens.
	if outcome = ApplyTimeExpiry(quiz, access, attempt, 999); outcome != ExpiryNone {
		t.Fatalf("inside grace window: got %v", outcome)
	}

	// Grace spent: finished, with the finish time backdated to the original
	// deadline rather than the end of grace.
	outcome = ApplyTimeExpiry(quiz, access, attempt, 1000)
	if outcome != ExpiryFinished {
		t.Fatalf("expected finish after grace, got %v", outcome)
	}
	if attempt.TimeFinish != 700 {
		t.Fatalf("finish time should be the pre-grace deadline 700, got %d", attempt.TimeFinish)
	}
}

func TestApplyTimeExpiryAutoAbandon(t *testing.T) {
	quiz := &model.Quiz{OverdueHandling: model.OverdueAutoAbandon}
	access := EffectiveAccess{TimeClose: 2000}
	attempt := liveAttempt(100)

	outcome := ApplyTimeExpiry(quiz, access, attempt, 2000)
	if outcome != ExpiryAbandoned {
		t.Fatalf("expected abandon, got %v", outcome)
	}
	if attempt.State != model.AttemptAbandoned {
		t.Fatalf("state: %v", attempt.State)
	}
	if attempt.TimeFinish != 2000 {
		t.Fatalf("finish time should be the deadline, got %d", attempt.TimeFinish)
	}
}

func TestApplyTimeExpiryTerminalNoOp(t *testing.T) {
	quiz := &model.Quiz{OverdueHandling: model.OverdueAutoSubmit}
	access := EffectiveAccess{TimeLimit: 600}

	for _, state := range []model.AttemptState{model.AttemptFinished, model.AttemptAbandoned} {
		attempt := &model.QuizAttempt{State: state, TimeStart: 100, TimeFinish: 700}
		if outcome := ApplyTimeExpiry(quiz, access, attempt, 99999); outcome != ExpiryNone {
			t.Errorf("%s attempt must not transition: got %v", state, outcome)
		}
		if attempt.TimeFinish != 700 {
			t.Errorf("%s attempt mutated: finish %d", state, attempt.TimeFinish)
		}
	}
}

func TestApplyTimeExpiryPreviewNoOp(t *testing.T) {
	quiz := &model.Quiz{OverdueHandling: model.OverdueAutoSubmit}
	access := EffectiveAccess{TimeLimit: 600}
	attempt := liveAttempt(100)
	attempt.IsPreview = true

	if outcome := ApplyTimeExpiry(quiz, access, attempt, 99999); outcome != ExpiryNone {
		t.Fatalf("preview must never expire: got %v", outcome)
	}
}

func TestApplyTimeExpiryNoDeadline(t *testing.T) {
	quiz := &model.Quiz{OverdueHandling: model.OverdueAutoSubmit}
	stale := int64(700)
	attempt := liveAttempt(100)
	attempt.TimeCheckState = &stale

	// An override removed every deadline since the attempt started: the
	// stale check time gets cleared instead of firing.
	if outcome := ApplyTimeExpiry(quiz, EffectiveAccess{}, attempt, 99999); outcome != ExpiryNone {
		t.Fatalf("no deadline: got %v", outcome)
	}
	if attempt.TimeCheckState != nil {
		t.Fatal("stale check time should be cleared")
	}
}

func TestApplyTimeExpiryHonorsMovedDeadline(t *testing.T) {
	quiz := &model.Quiz{OverdueHandling: model.OverdueAutoSubmit}
	stale := int64(700)
	attempt := liveAttempt(100)
	attempt.TimeCheckState = &stale

	// The deadline moved later (say, an extension override). The stored
	// check time says due, the recomputed one says not yet.
	access := EffectiveAccess{TimeClose: 1500}
	if outcome := ApplyTimeExpiry(quiz, access, attempt, 800); outcome != ExpiryNone {
		t.Fatalf("moved deadline must be honored: got %v", outcome)
	}
	if attempt.TimeCheckState == nil || *attempt.TimeCheckState != 1500 {
		t.Fatalf("check time should track the new deadline: %v", attempt.TimeCheckState)
	}
}

func TestRecomputeTimeCheckState(t *testing.T) {
	quiz := &model.Quiz{OverdueHandling: model.OverdueGracePeriod, GracePeriod: 300}
	access := EffectiveAccess{TimeLimit: 600}

	attempt := liveAttempt(100)
	RecomputeTimeCheckState(quiz, access, attempt)
	if attempt.TimeCheckState == nil || *attempt.TimeCheckState != 700 {
		t.Fatalf("in-progress check time: %v", attempt.TimeCheckState)
	}

	// An overdue attempt is next checked at the end of its grace window.
	attempt.State = model.AttemptOverdue
	RecomputeTimeCheckState(quiz, access, attempt)
	if attempt.TimeCheckState == nil || *attempt.TimeCheckState != 1000 {
		t.Fatalf("overdue check time: %v", attempt.TimeCheckState)
	}

	attempt.State = model.AttemptFinished
	RecomputeTimeCheckState(quiz, access, attempt)
	if attempt.TimeCheckState != nil {
		t.Fatal("terminal attempts carry no check time")
	}
}

func TestLastFinishedRealSkipsPreviews(t *testing.T) {
	finished := func(seq int, preview bool) model.QuizAttempt {
		return model.QuizAttempt{
			Attempt:   seq,
			State:     model.AttemptFinished,
			IsPreview: preview,
		}
	}

	attempts := []model.QuizAttempt{
		finished(1, false),
		{Attempt: 2, State: model.AttemptAbandoned},
		finished(3, true),
	}
	got := lastFinishedReal(attempts)
	if got == nil || got.Attempt != 1 {
		t.Fatalf("expected the finished real attempt 1, got %+v", got)
	}

	onlyPreviews := []model.QuizAttempt{finished(1, true), finished(2, true)}
	if got := lastFinishedReal(onlyPreviews); got != nil {
		t.Fatalf("preview attempts must not seed a layout, got %+v", got)
	}

	if got := lastFinishedReal(nil); got != nil {
		t.Fatalf("expected nil for no attempts, got %+v", got)
	}
}
