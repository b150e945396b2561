package service

import (
	"strings"
	"testing"

	"quizhub_backend/internal/model"
)

func rulesCtx(access EffectiveAccess) *AccessContext {
	return &AccessContext{
		Quiz:   &model.Quiz{},
		Access: access,
		Now:    1000,
	}
}

func TestEvaluateRulesAllows(t *testing.T) {
	svc := NewAccessService(nil, nil)
	ctx := rulesCtx(EffectiveAccess{TimeOpen: 500, TimeClose: 2000, MaxAttempts: 3})
	ctx.AttemptsUsed = 1

	if reasons := svc.EvaluateRules(ctx); len(reasons) != 0 {
		t.Fatalf("expected no blocking reasons, got %v", reasons)
	}
}

func TestEvaluateRulesWindow(t *testing.T) {
	svc := NewAccessService(nil, nil)

	ctx := rulesCtx(EffectiveAccess{TimeOpen: 1500})
	reasons := svc.EvaluateRules(ctx)
	if len(reasons) != 1 || !strings.Contains(reasons[0], "opens at") {
		t.Fatalf("not yet open: got %v", reasons)
	}

	ctx = rulesCtx(EffectiveAccess{TimeClose: 900})
	reasons = svc.EvaluateRules(ctx)
	if len(reasons) != 1 || reasons[0] != "this quiz has closed" {
		t.Fatalf("closed: got %v", reasons)
	}
}

func TestEvaluateRulesAttemptLimit(t *testing.T) {
	svc := NewAccessService(nil, nil)

	ctx := rulesCtx(EffectiveAccess{MaxAttempts: 2})
	ctx.AttemptsUsed = 2
	if reasons := svc.EvaluateRules(ctx); len(reasons) != 1 {
		t.Fatalf("limit reached: got %v", reasons)
	}

	// 0 means unlimited.
	ctx = rulesCtx(EffectiveAccess{MaxAttempts: 0})
	ctx.AttemptsUsed = 500
	if reasons := svc.EvaluateRules(ctx); len(reasons) != 0 {
		t.Fatalf("unlimited attempts: got %v", reasons)
	}
}

func TestEvaluateRulesPassword(t *testing.T) {
	svc := NewAccessService(nil, nil)

	ctx := rulesCtx(EffectiveAccess{Password: "secret"})
	if reasons := svc.EvaluateRules(ctx); len(reasons) != 1 ||
		reasons[0] != "a password is required to attempt this quiz" {
		t.Fatalf("missing password: got %v", reasons)
	}

	ctx.SuppliedPassword = "wrong"
	if reasons := svc.EvaluateRules(ctx); len(reasons) != 1 ||
		reasons[0] != "the quiz password was incorrect" {
		t.Fatalf("wrong password: got %v", reasons)
	}

	ctx.SuppliedPassword = "secret"
	if reasons := svc.EvaluateRules(ctx); len(reasons) != 0 {
		t.Fatalf("correct password: got %v", reasons)
	}

	// Group alternates are accepted too.
	ctx = rulesCtx(EffectiveAccess{Password: "secret", ExtraPasswords: []string{"alt"}})
	ctx.SuppliedPassword = "alt"
	if reasons := svc.EvaluateRules(ctx); len(reasons) != 0 {
		t.Fatalf("alternate password: got %v", reasons)
	}
}

func TestEvaluateRulesPreviewBypassesWindowAndLimit(t *testing.T) {
	svc := NewAccessService(nil, nil)

	ctx := rulesCtx(EffectiveAccess{TimeClose: 900, MaxAttempts: 1})
	ctx.AttemptsUsed = 1
	ctx.IsPreview = true

	// A preview ignores the window and the attempt limit, but not the
	// password rule.
	if reasons := svc.EvaluateRules(ctx); len(reasons) != 0 {
		t.Fatalf("preview: got %v", reasons)
	}

	ctx.Access.Password = "secret"
	if reasons := svc.EvaluateRules(ctx); len(reasons) != 1 {
		t.Fatalf("preview still needs the password: got %v", reasons)
	}
}
