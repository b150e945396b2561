package service

import (
	"fmt"
	"time"

	"quizhub_backend/internal/model"
)

// AccessContext carries everything a rule may look at when deciding whether a
// user may start a new attempt.
type AccessContext struct {
	Quiz             *model.Quiz
	Access           EffectiveAccess
	Now              int64
	AttemptsUsed     int
	SuppliedPassword string
	IsPreview        bool
}

// AccessRule evaluates one start-attempt precondition. A non-empty result is
// a list of human-readable blocking reasons; rules never return errors, a
// blocked student is not a system failure.
type AccessRule interface {
	Name() string
	Evaluate(ctx *AccessContext) []string
}

type openCloseWindowRule struct{}

func (openCloseWindowRule) Name() string { return "openclose" }

func (openCloseWindowRule) Evaluate(ctx *AccessContext) []string {
	if ctx.IsPreview {
		return nil
	}
	var reasons []string
	if ctx.Access.TimeOpen != 0 && ctx.Now < ctx.Access.TimeOpen {
		reasons = append(reasons, fmt.Sprintf("this quiz opens at %s",
			time.Unix(ctx.Access.TimeOpen, 0).UTC().Format(time.RFC1123)))
	}
	if ctx.Access.TimeClose != 0 && ctx.Now > ctx.Access.TimeClose {
		reasons = append(reasons, "this quiz has closed")
	}
	return reasons
}

type attemptLimitRule struct{}

func (attemptLimitRule) Name() string { return "attemptlimit" }

func (attemptLimitRule) Evaluate(ctx *AccessContext) []string {
	if ctx.IsPreview || ctx.Access.MaxAttempts == 0 {
		return nil
	}
	if ctx.AttemptsUsed >= ctx.Access.MaxAttempts {
		return []string{fmt.Sprintf("no more attempts allowed (%d of %d used)",
			ctx.AttemptsUsed, ctx.Access.MaxAttempts)}
	}
	return nil
}

type passwordRule struct{}

func (passwordRule) Name() string { return "password" }

func (passwordRule) Evaluate(ctx *AccessContext) []string {
	if ctx.Access.AcceptsPassword(ctx.SuppliedPassword) {
		return nil
	}
	if ctx.SuppliedPassword == "" {
		return []string{"a password is required to attempt this quiz"}
	}
	return []string{"the quiz password was incorrect"}
}

// EvaluateRules runs every registered rule and collects blocking reasons.
// An empty result means the attempt may start.
func (s *AccessService) EvaluateRules(ctx *AccessContext) []string {
	var reasons []string
	for _, rule := range s.rules {
		reasons = append(reasons, rule.Evaluate(ctx)...)
	}
	return reasons
}
