package service

import (
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
)

// EffectiveAccess is the access configuration that actually applies to one
// user's attempt after overrides are folded in. Zero values keep the usual
// meaning: no open time, no close time, no time limit, unlimited attempts.
type EffectiveAccess struct {
	TimeOpen       int64    `json:"timeOpen"`
	TimeClose      int64    `json:"timeClose"`
	TimeLimit      int      `json:"timeLimit"`
	MaxAttempts    int      `json:"maxAttempts"`
	Password       string   `json:"-"`
	ExtraPasswords []string `json:"-"`
}

// AccessService resolves effective access and evaluates the start-attempt
// access rules.
type AccessService struct {
	OverrideRepo *repository.OverrideRepository
	GroupRepo    *repository.GroupRepository
	rules        []AccessRule
}

func NewAccessService(overrideRepo *repository.OverrideRepository, groupRepo *repository.GroupRepository) *AccessService {
	return &AccessService{
		OverrideRepo: overrideRepo,
		GroupRepo:    groupRepo,
		rules: []AccessRule{
			&openCloseWindowRule{},
			&attemptLimitRule{},
			&passwordRule{},
		},
	}
}

// Resolve computes the effective access for (quiz, user) from the quiz
// defaults, the user's override, and the overrides of the user's current
// groups.
func (s *AccessService) Resolve(quiz *model.Quiz, userID uint) (EffectiveAccess, error) {
	userOverride, err := s.OverrideRepo.FindForUser(quiz.ID, userID)
	if err != nil {
		return EffectiveAccess{}, err
	}
	groupIDs, err := s.GroupRepo.GroupIDsOfUser(quiz.CourseID, userID)
	if err != nil {
		return EffectiveAccess{}, err
	}
	groupOverrides, err := s.OverrideRepo.ListForGroups(quiz.ID, groupIDs)
	if err != nil {
		return EffectiveAccess{}, err
	}
	return ResolveOverrides(quiz, userOverride, groupOverrides), nil
}

// ResolveOverrides folds overrides into the quiz defaults.
//
// Field precedence: a user override wins outright on every field it sets.
// Fields the user override leaves unset are resolved across the applicable
// group overrides, each field in the direction most generous to the student:
//
//   - time open: minimum (earliest opening)
//   - time close, time limit, attempts: an explicit 0 in any group override
//     means unlimited and beats every nonzero value; otherwise maximum.
//   - password: first group password applies, any further distinct group
//     passwords are kept as accepted alternates.
//
// The open/close asymmetry (min vs max) and the zero-supersedes rule are
// deliberate; do not symmetrize them.
func ResolveOverrides(quiz *model.Quiz, userOverride *model.QuizOverride, groupOverrides []model.QuizOverride) EffectiveAccess {
	access := EffectiveAccess{
		TimeOpen:    quiz.TimeOpen,
		TimeClose:   quiz.TimeClose,
		TimeLimit:   quiz.TimeLimit,
		MaxAttempts: quiz.AttemptsAllowed,
		Password:    quiz.Password,
	}

	var openSet, closeSet, limitSet, attemptsSet, passwordSet bool
	if userOverride != nil {
		if userOverride.TimeOpen != nil {
			access.TimeOpen = *userOverride.TimeOpen
			openSet = true
		}
		if userOverride.TimeClose != nil {
			access.TimeClose = *userOverride.TimeClose
			closeSet = true
		}
		if userOverride.TimeLimit != nil {
			access.TimeLimit = *userOverride.TimeLimit
			limitSet = true
		}
		if userOverride.Attempts != nil {
			access.MaxAttempts = *userOverride.Attempts
			attemptsSet = true
		}
		if userOverride.Password != nil {
			access.Password = *userOverride.Password
			passwordSet = true
		}
	}

	if !openSet {
		var open *int64
		for i := range groupOverrides {
			if v := groupOverrides[i].TimeOpen; v != nil {
				if open == nil || *v < *open {
					open = v
				}
			}
		}
		if open != nil {
			access.TimeOpen = *open
		}
	}

	if !closeSet {
		if v, ok := resolveUnlimitedMax64(groupOverrides, func(o *model.QuizOverride) *int64 { return o.TimeClose }); ok {
			access.TimeClose = v
		}
	}

	if !limitSet {
		if v, ok := resolveUnlimitedMax(groupOverrides, func(o *model.QuizOverride) *int { return o.TimeLimit }); ok {
			access.TimeLimit = v
		}
	}

	if !attemptsSet {
		if v, ok := resolveUnlimitedMax(groupOverrides, func(o *model.QuizOverride) *int { return o.Attempts }); ok {
			access.MaxAttempts = v
		}
	}

	if !passwordSet {
		var first *string
		for i := range groupOverrides {
			p := groupOverrides[i].Password
			if p == nil {
				continue
			}
			if first == nil {
				first = p
				access.Password = *p
				continue
			}
			if *p != *first && !containsString(access.ExtraPasswords, *p) {
				access.ExtraPasswords = append(access.ExtraPasswords, *p)
			}
		}
	}

	return access
}

// resolveUnlimitedMax64 folds a nullable int64 field across group overrides:
// any explicit 0 wins (unlimited), otherwise the maximum applies. The second
// return value is false when no override sets the field.
func resolveUnlimitedMax64(overrides []model.QuizOverride, field func(*model.QuizOverride) *int64) (int64, bool) {
	var best *int64
	for i := range overrides {
		v := field(&overrides[i])
		if v == nil {
			continue
		}
		if *v == 0 {
			return 0, true
		}
		if best == nil || *v > *best {
			best = v
		}
	}
	if best == nil {
		return 0, false
	}
	return *best, true
}

func resolveUnlimitedMax(overrides []model.QuizOverride, field func(*model.QuizOverride) *int) (int, bool) {
	var best *int
	for i := range overrides {
		v := field(&overrides[i])
		if v == nil {
			continue
		}
		if *v == 0 {
			return 0, true
		}
		if best == nil || *v > *best {
			best = v
		}
	}
	if best == nil {
		return 0, false
	}
	return *best, true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// AcceptsPassword reports whether the supplied quiz password matches the
// effective one or any accepted alternate.
func (a EffectiveAccess) AcceptsPassword(supplied string) bool {
	if a.Password == "" {
		return true
	}
	if supplied == a.Password {
		return true
	}
	return containsString(a.ExtraPasswords, supplied)
}

// ComputeTimeCheckState returns the instant at which an attempt started at
// timeStart must be re-examined: the earlier of the effective close time and
// the time-limit expiry, nil when neither applies.
func ComputeTimeCheckState(access EffectiveAccess, timeStart int64) *int64 {
	var due *int64
	if access.TimeClose != 0 {
		v := access.TimeClose
		due = &v
	}
	if access.TimeLimit != 0 {
		v := timeStart + int64(access.TimeLimit)
		if due == nil || v < *due {
			due = &v
		}
	}
	return due
}
