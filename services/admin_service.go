package services

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminSubject = "admin"

	// FailedLoginNotice is shown to anyone who types the wrong passcode.
	FailedLoginNotice = "Nem, menj vissza!"
)

var ErrWrongPasscode = errors.New("wrong admin passcode")

type AdminConfig struct {
	Passcode      string
	PasscodeHash  string
	SessionSecret string
	SessionTTL    time.Duration
}

// AdminService is the shared-secret gate in front of every mutation. A
// successful login yields a signed session token; nothing about the admin
// state is stored server side.
type AdminService struct {
	passcode     []byte
	passcodeHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAdminService(cfg AdminConfig) (*AdminService, error) {
	if cfg.Passcode == "" && cfg.PasscodeHash == "" {
		return nil, fmt.Errorf("admin passcode is not configured")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		// Sessions then end with the process, like the tab-scoped flag they replace.
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
	}

	return &AdminService{
		passcode:     []byte(cfg.Passcode),
		passcodeHash: []byte(cfg.PasscodeHash),
		secret:       secret,
		ttl:          cfg.SessionTTL,
		now:          time.Now,
	}, nil
}

func (s *AdminService) checkPasscode(input string) bool {
	if len(s.passcodeHash) > 0 {
		return bcrypt.CompareHashAndPassword(s.passcodeHash, []byte(input)) == nil
	}
	return subtle.ConstantTimeCompare(s.passcode, []byte(input)) == 1
}

// Login returns a session token when input matches the passcode.
func (s *AdminService) Login(input string) (string, error) {
	if !s.checkPasscode(input) {
		adminLoginsTotal.WithLabelValues("failed").Inc()
		return "", ErrWrongPasscode
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	adminLoginsTotal.WithLabelValues("ok").Inc()
	return token, nil
}

// Verify reports whether token is a live admin session issued by this service.
func (s *AdminService) Verify(token string) bool {
	if token == "" {
		return false
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	return err == nil && parsed.Valid
}

// SessionTTL is how long a token from Login stays valid.
func (s *AdminService) SessionTTL() time.Duration {
	return s.ttl
}
