package service

import (
	"testing"

	"quizhub_backend/internal/model"
)

func i64(v int64) *int64 { return &v }
func iptr(v int) *int    { return &v }
func sptr(v string) *string {
	return &v
}

func baseQuiz() *model.Quiz {
	return &model.Quiz{
		TimeOpen:        1000,
		TimeClose:       2000,
		TimeLimit:       600,
		AttemptsAllowed: 3,
		Password:        "default",
	}
}

func TestResolveOverridesNoOverrides(t *testing.T) {
	quiz := baseQuiz()
	access := ResolveOverrides(quiz, nil, nil)

	if access.TimeOpen != 1000 || access.TimeClose != 2000 {
		t.Fatalf("expected quiz defaults, got open=%d close=%d", access.TimeOpen, access.TimeClose)
	}
	if access.TimeLimit != 600 || access.MaxAttempts != 3 {
		t.Fatalf("expected quiz defaults, got limit=%d attempts=%d", access.TimeLimit, access.MaxAttempts)
	}
	if access.Password != "default" {
		t.Fatalf("expected quiz password, got %q", access.Password)
	}
}

func TestResolveOverridesUserWinsOverGroups(t *testing.T) {
	quiz := baseQuiz()
	user := &model.QuizOverride{
		TimeClose: i64(1300),
		TimeLimit: iptr(300),
	}
	groups := []model.QuizOverride{
		// More generous on every field, but the user override still wins
		// on the fields it sets.
		{TimeClose: i64(9000), TimeLimit: iptr(7200), Attempts: iptr(10)},
	}

	access := ResolveOverrides(quiz, user, groups)

	if access.TimeClose != 1300 {
		t.Errorf("user time close should win: got %d", access.TimeClose)
	}
	if access.TimeLimit != 300 {
		t.Errorf("user time limit should win: got %d", access.TimeLimit)
	}
	// Attempts was not set by the user override, so the group value applies.
	if access.MaxAttempts != 10 {
		t.Errorf("group attempts should apply: got %d", access.MaxAttempts)
	}
}

func TestResolveOverridesGroupDirections(t *testing.T) {
	quiz := baseQuiz()
	groups := []model.QuizOverride{
		{TimeOpen: i64(900), TimeClose: i64(2500), TimeLimit: iptr(900), Attempts: iptr(2)},
		{TimeOpen: i64(800), TimeClose: i64(3000), TimeLimit: iptr(1200), Attempts: iptr(5)},
	}

	access := ResolveOverrides(quiz, nil, groups)

	if access.TimeOpen != 800 {
		t.Errorf("time open resolves to the minimum: got %d", access.TimeOpen)
	}
	if access.TimeClose != 3000 {
		t.Errorf("time close resolves to the maximum: got %d", access.TimeClose)
	}
	if access.TimeLimit != 1200 {
		t.Errorf("time limit resolves to the maximum: got %d", access.TimeLimit)
	}
	if access.MaxAttempts != 5 {
		t.Errorf("attempts resolve to the maximum: got %d", access.MaxAttempts)
	}
}

func TestResolveOverridesZeroSupersedes(t *testing.T) {
	quiz := baseQuiz()
	groups := []model.QuizOverride{
		{TimeClose: i64(9999), TimeLimit: iptr(7200), Attempts: iptr(99)},
		// Explicit zero means unlimited and beats any nonzero value,
		// regardless of order.
		{TimeClose: i64(0), TimeLimit: iptr(0), Attempts: iptr(0)},
		{TimeClose: i64(5000)},
	}

	access := ResolveOverrides(quiz, nil, groups)

	if access.TimeClose != 0 {
		t.Errorf("zero close should supersede: got %d", access.TimeClose)
	}
	if access.TimeLimit != 0 {
		t.Errorf("zero limit should supersede: got %d", access.TimeLimit)
	}
	if access.MaxAttempts != 0 {
		t.Errorf("zero attempts should supersede: got %d", access.MaxAttempts)
	}
}

func TestResolveOverridesZeroDoesNotApplyToOpen(t *testing.T) {
	quiz := baseQuiz()
	groups := []model.QuizOverride{
		{TimeOpen: i64(0)},
		{TimeOpen: i64(500)},
	}

	access := ResolveOverrides(quiz, nil, groups)

	// Open resolves by plain minimum; 0 is simply the earliest value.
	if access.TimeOpen != 0 {
		t.Errorf("expected min open 0, got %d", access.TimeOpen)
	}
}

func TestResolveOverridesPasswords(t *testing.T) {
	quiz := baseQuiz()
	groups := []model.QuizOverride{
		{Password: sptr("alpha")},
		{Password: sptr("beta")},
		{Password: sptr("alpha")},
		{Password: sptr("gamma")},
	}

	access := ResolveOverrides(quiz, nil, groups)

	if access.Password != "alpha" {
		t.Fatalf("first group password should apply: got %q", access.Password)
	}
	if len(access.ExtraPasswords) != 2 {
		t.Fatalf("expected 2 distinct alternates, got %v", access.ExtraPasswords)
	}
	for _, p := range []string{"alpha", "beta", "gamma"} {
		if !access.AcceptsPassword(p) {
			t.Errorf("password %q should be accepted", p)
		}
	}
	if access.AcceptsPassword("default") {
		t.Errorf("quiz default password no longer applies once overridden")
	}
}

func TestAcceptsPasswordWhenNoneRequired(t *testing.T) {
	access := EffectiveAccess{}
	if !access.AcceptsPassword("") || !access.AcceptsPassword("anything") {
		t.Fatal("empty effective password must accept any input")
	}
}

func TestComputeTimeCheckState(t *testing.T) {
	// Close time only.
	got := ComputeTimeCheckState(EffectiveAccess{TimeClose: 2000}, 1000)
	if got == nil || *got != 2000 {
		t.Fatalf("close only: got %v", got)
	}

	// Time limit only.
	got = ComputeTimeCheckState(EffectiveAccess{TimeLimit: 600}, 1000)
	if got == nil || *got != 1600 {
		t.Fatalf("limit only: got %v", got)
	}

	// Both apply: the earlier wins.
	got = ComputeTimeCheckState(EffectiveAccess{TimeClose: 1300, TimeLimit: 600}, 1000)
	if got == nil || *got != 1300 {
		t.Fatalf("close before limit expiry: got %v", got)
	}
	got = ComputeTimeCheckState(EffectiveAccess{TimeClose: 5000, TimeLimit: 600}, 1000)
	if got == nil || *got != 1600 {
		t.Fatalf("limit expiry before close: got %v", got)
	}

	// Neither applies.
	if got = ComputeTimeCheckState(EffectiveAccess{}, 1000); got != nil {
		t.Fatalf("no deadline expected, got %v", got)
	}
}

func TestResolveOverridesUserExtensionScenario(t *testing.T) {
	// A student with extra time: the quiz closes at 1200 with a 600s limit,
	// their override moves the close to 1300. Starting at 1000, the limit
	// expiry (1600) no longer binds before the close does.
	quiz := &model.Quiz{TimeClose: 1200, TimeLimit: 600}
	user := &model.QuizOverride{TimeClose: i64(1300)}

	access := ResolveOverrides(quiz, user, nil)
	due := ComputeTimeCheckState(access, 1000)
	if due == nil || *due != 1300 {
		t.Fatalf("expected deadline 1300, got %v", due)
	}
}
