package auth

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mercadito/internal/core/apperror"
	"mercadito/internal/domain"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secreto-de-prueba"))

	token, expiresAt, err := svc.GenerateToken("u-1", "admin@example.com", "admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if time.Until(expiresAt) < 7*time.Hour {
		t.Errorf("expiry too close: %s", expiresAt)
	}

	session, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if session.UserID != "u-1" || session.Email != "admin@example.com" || session.Rol != "admin" {
		t.Errorf("claims mismatch: %+v", session)
	}
}

func TestJWT_RejectsForeignSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secreto-a"))
	validator := NewJWTService(DefaultJWTConfig("secreto-b"))

	token, _, err := issuer.GenerateToken("u-1", "admin@example.com", "admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := validator.ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestJWT_RejectsGarbage(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secreto"))
	if _, err := svc.ValidateToken("no-es-un-token"); err == nil {
		t.Fatal("garbage token must be rejected")
	}
}

type userReaderStub struct {
	users map[string]domain.Record
}

func (s *userReaderStub) FindByEmail(ctx context.Context, correo string) (domain.Record, error) {
	if u, ok := s.users[correo]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFound("usuario", correo)
}

func newAuthService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Secreta1!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	users := &userReaderStub{users: map[string]domain.Record{
		"admin@example.com": {
			"id": "u-1", "correo_electronico": "admin@example.com",
			"contrasena": string(hash), "rol": "admin", "primer_nombre": "María",
		},
		"cliente@example.com": {
			"id": "u-2", "correo_electronico": "cliente@example.com",
			"contrasena": string(hash), "rol": "cliente", "primer_nombre": "Juan",
		},
	}}
	return NewService(users, NewJWTService(DefaultJWTConfig("secreto-de-prueba")))
}

func TestLogin_Success(t *testing.T) {
	svc := newAuthService(t)

	result, err := svc.Login(context.Background(), "admin@example.com", "Secreta1!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Token == "" {
		t.Error("missing session token")
	}
	if result.UserID != "u-1" || result.Rol != "admin" || result.Nombre != "María" {
		t.Errorf("result mismatch: %+v", result)
	}
}

func TestLogin_SameMessageForUnknownUserAndWrongPassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, errUnknown := svc.Login(ctx, "nadie@example.com", "Secreta1!")
	_, errWrongPass := svc.Login(ctx, "admin@example.com", "otra-clave")

	for _, err := range []error{errUnknown, errWrongPass} {
		appErr, ok := apperror.AsAppError(err)
		if !ok || appErr.Code != apperror.CodeUnauthorized {
			t.Fatalf("want unauthorized, got %v", err)
		}
		if appErr.Message != "Credenciales inválidas." {
			t.Errorf("message = %q; both failures must be indistinguishable", appErr.Message)
		}
	}
}

func TestLogin_RejectsClienteRole(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Login(context.Background(), "cliente@example.com", "Secreta1!")
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeForbidden {
		t.Fatalf("want forbidden for rol cliente, got %v", err)
	}
}
