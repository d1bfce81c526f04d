package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/inamate/vecpad/internal/typeid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginDisabled      = errors.New("operator login is not configured")
)

const (
	bcryptCost = 12
	tokenTTL   = 24 * time.Hour
)

// Service authenticates the single operator account configured at startup
// and issues bearer tokens for it.
type Service struct {
	username     string
	passwordHash []byte
	userID       string
	jwtSecret    []byte
}

// NewService builds a service for the operator. An empty passwordHash
// disables login; tokens signed with jwtSecret are still accepted.
func NewService(username, passwordHash, jwtSecret string) *Service {
	return &Service{
		username:     username,
		passwordHash: []byte(passwordHash),
		userID:       typeid.NewUserID(),
		jwtSecret:    []byte(jwtSecret),
	}
}

// Open reports whether the server runs without an operator password, in
// which case requests without a token are let through anonymously.
func (s *Service) Open() bool { return len(s.passwordHash) == 0 }

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HashPassword produces the value expected in OPERATOR_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) Login(username, password string) (*AuthResult, error) {
	if len(s.passwordHash) == 0 {
		return nil, ErrLoginDisabled
	}
	if username != s.username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(s.userID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token: token,
		User:  User{ID: s.userID, Name: s.username},
	}, nil
}

func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("missing subject claim")
	}
	return sub, nil
}

// DisplayName returns the operator name for the given subject, or "" for
// a subject this service did not issue.
func (s *Service) DisplayName(userID string) string {
	if userID == s.userID {
		return s.username
	}
	return ""
}

func (s *Service) issueToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"name": s.username,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
