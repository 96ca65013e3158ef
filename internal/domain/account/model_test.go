package account_test

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fashionablylate/internal/domain/account"
)

func init() {
	account.BcryptCost = bcrypt.MinCost
}

// TestUser_Validate tests validation of User.
func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    account.User
		wantErr error
	}{
		{"valid", account.User{Name: "admin", Email: "admin@example.com"}, nil},
		{"empty name", account.User{Email: "admin@example.com"}, account.ErrEmptyName},
		{"long name", account.User{Name: strings.Repeat("名", 256), Email: "a@b.c"}, account.ErrNameTooLong},
		{"empty email", account.User{Name: "admin"}, account.ErrEmptyEmail},
		{"no at sign", account.User{Name: "admin", Email: "admin.example.com"}, account.ErrInvalidEmail},
		{"long email", account.User{Name: "admin", Email: strings.Repeat("a", 250) + "@b.com"}, account.ErrEmailTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.user.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestUser_SetPassword tests hashing and verification.
func TestUser_SetPassword(t *testing.T) {
	var u account.User
	if err := u.SetPassword(""); err != account.ErrEmptyPassword {
		t.Errorf("empty password: got %v", err)
	}
	if err := u.SetPassword("short"); err != account.ErrPasswordTooShort {
		t.Errorf("short password: got %v", err)
	}
	if err := u.SetPassword("password"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if u.PasswordHash == "" || u.PasswordHash == "password" {
		t.Fatalf("password not hashed: %q", u.PasswordHash)
	}
	if err := u.CheckPassword("password"); err != nil {
		t.Errorf("CheckPassword(correct) = %v", err)
	}
	if err := u.CheckPassword("wrong-password"); err != account.ErrWrongPassword {
		t.Errorf("CheckPassword(wrong) = %v", err)
	}
}

// TestUser_CheckPasswordWithoutHash tests a user with no hash.
func TestUser_CheckPasswordWithoutHash(t *testing.T) {
	u := account.User{}
	if err := u.CheckPassword("anything"); err != account.ErrWrongPassword {
		t.Errorf("got %v", err)
	}
}

// TestUser_Lockout tests lockout after repeated failures.
func TestUser_Lockout(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	u := account.User{}
	for i := 0; i < account.MaxFailedLogins-1; i++ {
		u.RecordFailedLogin(now)
	}
	if u.IsLocked(now) {
		t.Fatal("locked before reaching the limit")
	}
	u.RecordFailedLogin(now)
	if !u.IsLocked(now) {
		t.Fatal("not locked after reaching the limit")
	}
	if u.IsLocked(now.Add(account.LockoutDuration + time.Second)) {
		t.Error("still locked after the lockout window")
	}
	u.ResetFailedLogins()
	if u.FailedLogins != 0 || u.IsLocked(now) {
		t.Errorf("reset did not clear lock: %+v", u)
	}
}
