package logic

import (
	"net/http"
	"testing"

	"github.com/blues/fis/internal/model"
)

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	a := NewAuthLogic(db)

	user, err := a.Register(&RegisterInput{
		Name:     "Ravi",
		Email:    "Ravi@Example.COM",
		Password: "secret123",
		Role:     "investor",
	})
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	if user.Email != "ravi@example.com" {
		t.Errorf("Expected lowercased email, got %s", user.Email)
	}
	if user.PasswordHash == "secret123" || user.PasswordHash == "" {
		t.Error("Expected hashed password")
	}
	// 投资人默认KYC待认证
	if user.KycStatus != model.KycStatusPending {
		t.Errorf("Expected kyc pending for investor, got %s", user.KycStatus)
	}

	issuer, err := a.Register(&RegisterInput{
		Name:             "Metro",
		Email:            "metro@example.com",
		Password:         "secret123",
		Role:             "issuer",
		OrganizationName: "Metro Infra Pvt Ltd",
	})
	if err != nil {
		t.Fatalf("Failed to register issuer: %v", err)
	}
	if issuer.KycStatus != model.KycStatusVerified {
		t.Errorf("Expected kyc verified for issuer, got %s", issuer.KycStatus)
	}
	if issuer.OrganizationName != "Metro Infra Pvt Ltd" {
		t.Errorf("Expected organization name stored, got %s", issuer.OrganizationName)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	a := NewAuthLogic(db)

	tests := []struct {
		name string
		in   *RegisterInput
	}{
		{name: "short name", in: &RegisterInput{Name: "a", Email: "a@b.com", Password: "secret123", Role: "investor"}},
		{name: "bad email", in: &RegisterInput{Name: "Ravi", Email: "not-an-email", Password: "secret123", Role: "investor"}},
		{name: "short password", in: &RegisterInput{Name: "Ravi", Email: "a@b.com", Password: "12345", Role: "investor"}},
		{name: "bad role", in: &RegisterInput{Name: "Ravi", Email: "a@b.com", Password: "secret123", Role: "superuser"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(tt.in)
			if e := AsError(err); e == nil || e.Status != http.StatusBadRequest {
				t.Errorf("Expected 400, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	a := NewAuthLogic(db)

	in := &RegisterInput{Name: "Ravi", Email: "ravi@example.com", Password: "secret123", Role: "investor"}
	if _, err := a.Register(in); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	// 邮箱比较大小写不敏感
	in.Email = "RAVI@example.com"
	_, err := a.Register(in)
	if e := AsError(err); e == nil || e.Status != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate email, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	a := NewAuthLogic(db)

	if _, err := a.Register(&RegisterInput{Name: "Ravi", Email: "ravi@example.com", Password: "secret123", Role: "investor"}); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	user, err := a.Login("Ravi@Example.com", "secret123")
	if err != nil {
		t.Fatalf("Failed to login: %v", err)
	}
	if user.Email != "ravi@example.com" {
		t.Errorf("Unexpected user: %+v", user)
	}

	// 密码错误与用户不存在返回同样的401
	if _, err := a.Login("ravi@example.com", "wrong"); AsError(err) == nil || AsError(err).Status != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %v", err)
	}
	if _, err := a.Login("missing@example.com", "secret123"); AsError(err) == nil || AsError(err).Status != http.StatusUnauthorized {
		t.Errorf("Expected 401 for unknown email, got %v", err)
	}
}

func TestCompleteKyc(t *testing.T) {
	db := newTestDB(t)
	a := NewAuthLogic(db)

	user, err := a.Register(&RegisterInput{Name: "Ravi", Email: "ravi@example.com", Password: "secret123", Role: "investor"})
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	updated, err := a.CompleteKyc(user.Id)
	if err != nil {
		t.Fatalf("Failed to complete kyc: %v", err)
	}
	if updated.KycStatus != model.KycStatusVerified {
		t.Errorf("Expected kyc verified, got %s", updated.KycStatus)
	}
	if updated.KycCompletedAt == nil {
		t.Error("Expected kycCompletedAt to be set")
	}

	if _, err := a.CompleteKyc(99999); AsError(err) == nil || AsError(err).Status != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown user, got %v", err)
	}
}
