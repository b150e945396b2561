package service

import (
	"testing"

	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

func f64(v float64) *float64 { return &v }

// recordingEngine serves canned fractions and records which slots it was
// asked to persist.
type recordingEngine struct {
	current    map[int]*float64
	recomputed map[int]*float64
	maxMarks   map[int]float64
	finalized  []int
}

func (e *recordingEngine) StartSession(attemptID uint, slot int, questionID uint) error {
	return nil
}

func (e *recordingEngine) SubmitResponse(attemptID uint, slot int, response string) error {
	return nil
}

func (e *recordingEngine) CurrentFraction(attemptID uint, slot int) (*float64, error) {
	return e.current[slot], nil
}

func (e *recordingEngine) Regrade(tx *gorm.DB, attemptID uint, slot int, finalize bool) (*float64, error) {
	if finalize {
		e.finalized = append(e.finalized, slot)
	}
	return e.recomputed[slot], nil
}

func (e *recordingEngine) MaxMark(quizID uint, slot int) (float64, error) {
	return e.maxMarks[slot], nil
}

func regradeFixture() (*RegradeService, *recordingEngine, *model.QuizAttempt) {
	engine := &recordingEngine{
		current:    map[int]*float64{1: f64(0.5), 2: f64(1.0), 3: nil},
		recomputed: map[int]*float64{1: f64(0.75), 2: f64(1.0), 3: nil},
		maxMarks:   map[int]float64{1: 10, 2: 5, 3: 5},
	}
	attempt := &model.QuizAttempt{QuizID: 7, UserID: 3, State: model.AttemptFinished}
	attempt.ID = 42
	return &RegradeService{Engine: engine}, engine, attempt
}

func TestEvaluateSlotsReportsWithoutPersisting(t *testing.T) {
	s, engine, attempt := regradeFixture()

	results, err := s.evaluateSlots(attempt, []int{1, 2, 3})
	if err != nil {
		t.Fatalf("evaluateSlots: %v", err)
	}
	if len(engine.finalized) != 0 {
		t.Fatalf("evaluation persisted slots %v", engine.finalized)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Changed || *results[0].NewFraction != 0.75 || results[0].MaxMark != 10 {
		t.Errorf("slot 1: want changed 0.5->0.75 at mark 10, got %+v", results[0])
	}
	if results[1].Changed {
		t.Errorf("slot 2: identical fractions reported as changed")
	}
	if results[2].Changed || results[2].NewFraction != nil {
		t.Errorf("slot 3: ungraded slot reported as changed: %+v", results[2])
	}
}

func TestRecomputeSumFoldsRegradedFractions(t *testing.T) {
	s, _, attempt := regradeFixture()
	qslots := []model.QuizSlot{
		{QuizID: 7, Slot: 1, MaxMark: 10},
		{QuizID: 7, Slot: 2, MaxMark: 5},
		{QuizID: 7, Slot: 3, MaxMark: 5},
	}
	results, err := s.evaluateSlots(attempt, []int{1, 2, 3})
	if err != nil {
		t.Fatalf("evaluateSlots: %v", err)
	}

	sum, err := s.recomputeSum(attempt, qslots, results)
	if err != nil {
		t.Fatalf("recomputeSum: %v", err)
	}
	if sum == nil {
		t.Fatal("expected a sum, got nil")
	}
	// 0.75*10 + 1.0*5; slot 3 has no gradable response.
	if !almostEqual(*sum, 12.5) {
		t.Errorf("want sum 12.5, got %v", *sum)
	}
}

func TestRecomputeSumFallsBackToStoredFractions(t *testing.T) {
	s, _, attempt := regradeFixture()
	qslots := []model.QuizSlot{
		{QuizID: 7, Slot: 1, MaxMark: 10},
		{QuizID: 7, Slot: 2, MaxMark: 5},
	}
	// Only slot 1 was regraded; slot 2 keeps its stored fraction.
	results, err := s.evaluateSlots(attempt, []int{1})
	if err != nil {
		t.Fatalf("evaluateSlots: %v", err)
	}

	sum, err := s.recomputeSum(attempt, qslots, results)
	if err != nil {
		t.Fatalf("recomputeSum: %v", err)
	}
	if sum == nil {
		t.Fatal("expected a sum, got nil")
	}
	if !almostEqual(*sum, 12.5) {
		t.Errorf("want sum 12.5, got %v", *sum)
	}
}

func TestRecomputeSumNilWhenNothingGraded(t *testing.T) {
	s, _, attempt := regradeFixture()
	qslots := []model.QuizSlot{{QuizID: 7, Slot: 3, MaxMark: 5}}

	results, err := s.evaluateSlots(attempt, []int{3})
	if err != nil {
		t.Fatalf("evaluateSlots: %v", err)
	}
	sum, err := s.recomputeSum(attempt, qslots, results)
	if err != nil {
		t.Fatalf("recomputeSum: %v", err)
	}
	if sum != nil {
		t.Errorf("want nil sum for ungraded attempt, got %v", *sum)
	}
}

func TestFractionChanged(t *testing.T) {
	cases := []struct {
		name     string
		old, new *float64
		want     bool
	}{
		{"identical", f64(0.5), f64(0.5), false},
		{"both nil", nil, nil, false},
		{"real change", f64(0.5), f64(0.75), true},
		{"nil to graded", nil, f64(0.5), true},
		{"graded to nil", f64(0.5), nil, true},
		// Sub-epsilon float noise from replaying the grader is not a change.
		{"below epsilon", f64(0.5), f64(0.5 + 1e-9), false},
		{"above epsilon", f64(0.5), f64(0.5 + 1e-6), true},
		{"nil vs zero", nil, f64(0.0), false},
	}
	for _, c := range cases {
		if got := fractionChanged(c.old, c.new); got != c.want {
			t.Errorf("%s: want %v, got %v", c.name, c.want, got)
		}
	}
}
