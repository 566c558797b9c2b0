package auth

import (
	"context"
	"os"
	"time"

	autherrors "github.com/Nahue18R/sistema-vacaciones/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 8 * time.Hour

// Credentials holds the single supervisor account. The password is a
// bcrypt hash, never the plain value; both come from the environment
// at startup.
type Credentials struct {
	Username     string
	PasswordHash string
}

func CredentialsFromEnv() Credentials {
	return Credentials{
		Username:     os.Getenv("SUPERVISOR_USER"),
		PasswordHash: os.Getenv("SUPERVISOR_PASSWORD_HASH"),
	}
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	// Login checks the supervisor credentials and issues a session
	// token. There is one role; the token carries only the actor name.
	Login(ctx context.Context, username, password string) (LoginResponse, error)
}

type service struct {
	creds  Credentials
	secret []byte
	logger *zap.Logger
}

func NewService(creds Credentials, secret []byte, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{creds: creds, secret: secret, logger: l}
}

func (s *service) Login(_ context.Context, username, password string) (LoginResponse, error) {
	if s.creds.Username == "" || username != s.creds.Username {
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login rejected", zap.String("username", username))
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	token, err := s.generateToken(username, sessionTTL)
	if err != nil {
		s.logger.Error("token generation failed", zap.Error(err))
		return LoginResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("login success", zap.String("actor", username))
	return LoginResponse{
		AccessToken: token,
		Actor:       username,
		ExpiresIn:   int64(sessionTTL.Seconds()),
	}, nil
}

func (s *service) generateToken(actor string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"actor": actor,
		"exp":   time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
