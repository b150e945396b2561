package service

import (
	"math"
	"testing"

	"quizhub_backend/internal/model"
)

func gradedQuiz(method model.GradeMethod) *model.Quiz {
	return &model.Quiz{
		GradeMethod: method,
		SumGrades:   10,
		MaxGrade:    10,
	}
}

func finished(userID uint, seq int, sum float64) model.QuizAttempt {
	return model.QuizAttempt{
		UserID:    userID,
		Attempt:   seq,
		State:     model.AttemptFinished,
		SumGrades: &sum,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateGradeHighest(t *testing.T) {
	quiz := gradedQuiz(model.GradeHighest)
	attempts := []model.QuizAttempt{
		finished(1, 1, 4),
		finished(1, 2, 9),
		finished(1, 3, 6),
	}

	got := AggregateGrade(quiz, attempts)
	if got == nil || !almostEqual(*got, 9.0) {
		t.Fatalf("highest of 4/9/6 over 10 rescaled to 10: got %v", got)
	}
}

func TestAggregateGradeMethods(t *testing.T) {
	attempts := []model.QuizAttempt{
		finished(1, 1, 4),
		finished(1, 2, 9),
		finished(1, 3, 6),
	}
	cases := []struct {
		method model.GradeMethod
		want   float64
	}{
		{model.GradeHighest, 9.0},
		{model.GradeAverage, 19.0 / 3.0},
		{model.GradeFirst, 4.0},
		{model.GradeLast, 6.0},
	}
	for _, c := range cases {
		got := AggregateGrade(gradedQuiz(c.method), attempts)
		if got == nil || !almostEqual(*got, c.want) {
			t.Errorf("%s: want %v, got %v", c.method, c.want, got)
		}
	}
}

func TestAggregateGradeRescalesToMaxGrade(t *testing.T) {
	quiz := gradedQuiz(model.GradeHighest)
	quiz.SumGrades = 20
	quiz.MaxGrade = 100

	got := AggregateGrade(quiz, []model.QuizAttempt{finished(1, 1, 15)})
	if got == nil || !almostEqual(*got, 75.0) {
		t.Fatalf("15/20 of 100: got %v", got)
	}
}

func TestAggregateGradeExcludesNonCounting(t *testing.T) {
	quiz := gradedQuiz(model.GradeHighest)
	high := 10.0
	attempts := []model.QuizAttempt{
		finished(1, 1, 4),
		// In progress and preview attempts never count, no matter the sum.
		{UserID: 1, Attempt: 2, State: model.AttemptInProgress, SumGrades: &high},
		{UserID: 1, Attempt: 3, State: model.AttemptFinished, IsPreview: true, SumGrades: &high},
	}

	got := AggregateGrade(quiz, attempts)
	if got == nil || !almostEqual(*got, 4.0) {
		t.Fatalf("only the terminal non-preview attempt counts: got %v", got)
	}
}

func TestAggregateGradeNilWhenNothingCounts(t *testing.T) {
	quiz := gradedQuiz(model.GradeHighest)

	if got := AggregateGrade(quiz, nil); got != nil {
		t.Fatalf("no attempts: got %v", got)
	}
	attempts := []model.QuizAttempt{
		{UserID: 1, Attempt: 1, State: model.AttemptInProgress},
	}
	if got := AggregateGrade(quiz, attempts); got != nil {
		t.Fatalf("no terminal attempts: got %v", got)
	}
}

func TestAggregateGradeAbandonedWithoutSum(t *testing.T) {
	quiz := gradedQuiz(model.GradeHighest)
	// An abandoned attempt is terminal but was never summed.
	attempts := []model.QuizAttempt{
		{UserID: 1, Attempt: 1, State: model.AttemptAbandoned},
	}
	if got := AggregateGrade(quiz, attempts); got != nil {
		t.Fatalf("ungraded attempts yield no grade: got %v", got)
	}
}

func TestAggregateGradeDegenerateQuiz(t *testing.T) {
	quiz := gradedQuiz(model.GradeHighest)
	quiz.SumGrades = 0

	got := AggregateGrade(quiz, []model.QuizAttempt{finished(1, 1, 5)})
	if got == nil || *got != 0 {
		t.Fatalf("zero total marks grade to zero, not NaN: got %v", got)
	}
}

func TestAggregateGradeIdempotent(t *testing.T) {
	quiz := gradedQuiz(model.GradeAverage)
	attempts := []model.QuizAttempt{
		finished(1, 1, 4),
		finished(1, 2, 9),
	}
	first := AggregateGrade(quiz, attempts)
	second := AggregateGrade(quiz, attempts)
	if first == nil || second == nil || *first != *second {
		t.Fatalf("same inputs must give the same grade: %v vs %v", first, second)
	}
}

func TestComputeFinalGradesMatchesPerUser(t *testing.T) {
	quiz := gradedQuiz(model.GradeHighest)
	// Ordered by user then sequence, as ListTerminalByQuiz returns them.
	attempts := []model.QuizAttempt{
		finished(1, 1, 4),
		finished(1, 2, 9),
		finished(2, 1, 6),
		{UserID: 3, Attempt: 1, State: model.AttemptAbandoned},
		finished(4, 1, 10),
		finished(4, 2, 2),
		finished(4, 3, 7),
	}

	bulk := ComputeFinalGrades(quiz, attempts)
	if len(bulk) != 4 {
		t.Fatalf("expected 4 users, got %d", len(bulk))
	}

	for userID := uint(1); userID <= 4; userID++ {
		var own []model.QuizAttempt
		for _, a := range attempts {
			if a.UserID == userID {
				own = append(own, a)
			}
		}
		want := AggregateGrade(quiz, own)
		got, ok := bulk[userID]
		if !ok {
			t.Errorf("user %d missing from bulk result", userID)
			continue
		}
		switch {
		case want == nil && got != nil:
			t.Errorf("user %d: want nil, got %v", userID, *got)
		case want != nil && got == nil:
			t.Errorf("user %d: want %v, got nil", userID, *want)
		case want != nil && got != nil && !almostEqual(*want, *got):
			t.Errorf("user %d: want %v, got %v", userID, *want, *got)
		}
	}
}
