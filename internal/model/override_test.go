package model

import "testing"

func TestOverrideIsEmpty(t *testing.T) {
	o := &QuizOverride{QuizID: 1}
	if !o.IsEmpty() {
		t.Fatal("override with no value fields should be empty")
	}
	limit := 600
	o.TimeLimit = &limit
	if o.IsEmpty() {
		t.Fatal("override with a time limit is not empty")
	}
}

func TestOverrideMergeFrom(t *testing.T) {
	open := int64(100)
	closeOld := int64(200)
	closeNew := int64(300)
	attempts := 5

	existing := &QuizOverride{TimeOpen: &open, TimeClose: &closeOld}
	incoming := &QuizOverride{TimeClose: &closeNew, Attempts: &attempts}

	existing.MergeFrom(incoming)

	if existing.TimeOpen == nil || *existing.TimeOpen != 100 {
		t.Errorf("unset incoming field must not clobber: %v", existing.TimeOpen)
	}
	if existing.TimeClose == nil || *existing.TimeClose != 300 {
		t.Errorf("incoming field wins: %v", existing.TimeClose)
	}
	if existing.Attempts == nil || *existing.Attempts != 5 {
		t.Errorf("new field carried over: %v", existing.Attempts)
	}
}

func TestOverrideScopes(t *testing.T) {
	user := uint(7)
	group := uint(3)
	if o := (&QuizOverride{UserID: &user}); !o.IsUserScoped() {
		t.Error("user override should be user scoped")
	}
	if o := (&QuizOverride{GroupID: &group}); o.IsUserScoped() {
		t.Error("group override is not user scoped")
	}
}
