package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mercadito/internal/core/apperror"
	"mercadito/internal/domain"
	"mercadito/pkg/logger"
)

// UserReader finds panel users for sign-in.
type UserReader interface {
	FindByEmail(ctx context.Context, correo string) (domain.Record, error)
}

// LoginResult is a successful sign-in.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Rol       string    `json:"rol"`
	Nombre    string    `json:"nombre"`
}

// Service authenticates panel users against their stored bcrypt hash.
type Service struct {
	users UserReader
	jwt   *JWTService
}

// NewService creates the auth service.
func NewService(users UserReader, jwt *JWTService) *Service {
	return &Service{users: users, jwt: jwt}
}

// Login verifies credentials and issues a session token. Clients (rol
// cliente) never get panel access; failures all map to the same
// message so the form cannot probe which emails exist.
func (s *Service) Login(ctx context.Context, correo, contrasena string) (*LoginResult, error) {
	invalid := apperror.NewUnauthorized("Credenciales inválidas.")

	user, err := s.users.FindByEmail(ctx, correo)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}

	hash := user.GetString("contrasena")
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(contrasena)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, invalid
		}
		return nil, apperror.NewInternal(err)
	}

	rol := user.GetString("rol")
	if rol == "cliente" {
		return nil, apperror.NewForbidden("El panel es solo para personal autorizado.")
	}

	userID := user.GetString("id")
	token, expiresAt, err := s.jwt.GenerateToken(userID, user.GetString("correo_electronico"), rol)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "inicio de sesión", "user_id", userID, "rol", rol)
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    userID,
		Email:     user.GetString("correo_electronico"),
		Rol:       rol,
		Nombre:    user.GetString("primer_nombre"),
	}, nil
}
