package util

import (
	"testing"
	"time"

	"quizhub_backend/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		Email: "teacher@example.com",
		Role:  model.Teacher,
	}
	user.ID = 12

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 12 || claims.Role != model.Teacher || claims.Email != user.Email {
		t.Errorf("claims do not match user: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("token issued without a jti")
	}
}

func TestJWTDistinctTokenIDs(t *testing.T) {
	user := &model.User{Email: "student@example.com", Role: model.Student}
	user.ID = 5

	first, err := GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	second, err := GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	a, err := ParseJWT(first, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	b, err := ParseJWT(second, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("two logins share the same jti %q", a.ID)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	user := &model.User{Email: "student@example.com", Role: model.Student}
	user.ID = 5

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Error("token verified with the wrong secret")
	}
}
