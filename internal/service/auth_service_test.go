package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reseller-hub/internal/config"
	"github.com/reseller-hub/internal/constants"
	"github.com/reseller-hub/internal/models"
	"github.com/reseller-hub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := setupServiceTestDB(t)
	cfg := &config.Config{JWT: config.JWTConfig{SecretKey: "test-secret", ExpireHours: 2}}
	return NewAuthService(cfg, repository.NewUserRepository(db), nil), db
}

func createAuthUser(t *testing.T, db *gorm.DB, email, password, role, status string) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Tester",
		Role:         role,
		Status:       status,
	}
	if err := repository.NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestLoginIssuesRoleClaims(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	created := createAuthUser(t, db, "ops@example.com", "s3cret!", constants.RoleAdmin, models.UserStatusActive)

	user, token, expiresAt, err := svc.Login(context.Background(), "OPS@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != created.ID || user.LastLoginAt == nil {
		t.Fatalf("unexpected user after login: %+v", user)
	}
	if time.Until(expiresAt) <= time.Hour {
		t.Fatalf("expected expiry about 2 hours out, got %v", expiresAt)
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != created.ID || claims.Role != constants.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	state, err := svc.ResolveAccountState(context.Background(), created.ID)
	if err != nil || state.Role != constants.RoleAdmin {
		t.Fatalf("resolve account state failed: %v %+v", err, state)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createAuthUser(t, db, "ops@example.com", "s3cret!", constants.RoleAdmin, models.UserStatusActive)
	createAuthUser(t, db, "gone@example.com", "s3cret!", constants.RoleReseller, "disabled")

	cases := []struct {
		email    string
		password string
		want     error
	}{
		{"ops@example.com", "wrong", ErrInvalidCredentials},
		{"nobody@example.com", "s3cret!", ErrInvalidCredentials},
		{"", "", ErrInvalidCredentials},
		{"gone@example.com", "s3cret!", ErrAccountDisabled},
	}
	for _, tc := range cases {
		_, _, _, err := svc.Login(context.Background(), tc.email, tc.password)
		if !errors.Is(err, tc.want) {
			t.Fatalf("login %q: expected %v, got %v", tc.email, tc.want, err)
		}
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("login %q: expected unauthorized kind, got %v", tc.email, err)
		}
	}
}

func TestParseJWTRejectsForeignTokens(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		UserID: 1,
		Role:   constants.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	if _, err := svc.ParseJWT(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err = expired.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	if _, err := svc.ParseJWT(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}
