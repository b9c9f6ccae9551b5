package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/liflo-ai/liflo/internal/model"
	"github.com/liflo-ai/liflo/internal/repository"
	"github.com/liflo-ai/liflo/internal/validation"
)

const (
	AuthModeDev = "dev"
	AuthModeJWT = "jwt"
)

// argon2id parameters for 4-digit PINs.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 2
	argonKeyLen  = 32
	argonSaltLen = 16
)

// Session is what signup and login hand back to the client.
type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type AuthService struct {
	users     repository.UserRepository
	mode      string
	jwtSecret []byte
	jwtExpiry time.Duration
	devUserID string
	now       func() time.Time
}

func NewAuthService(users repository.UserRepository, mode, jwtSecret string, jwtExpiry time.Duration, devUserID string) *AuthService {
	return &AuthService{
		users:     users,
		mode:      mode,
		jwtSecret: []byte(jwtSecret),
		jwtExpiry: jwtExpiry,
		devUserID: devUserID,
		now:       time.Now,
	}
}

func (s *AuthService) Mode() string {
	return s.mode
}

func (s *AuthService) Signup(ctx context.Context, nickname, pin string) (*Session, error) {
	nickname = strings.TrimSpace(nickname)
	if err := validation.ValidateNickname(nickname); err != nil {
		return nil, invalid("nickname", err)
	}
	if err := validation.ValidatePIN(pin); err != nil {
		return nil, invalid("pin", err)
	}

	hash, err := HashPIN(pin)
	if err != nil {
		return nil, fmt.Errorf("failed to hash pin: %w", err)
	}

	user := &model.User{
		ID:        "u_" + uuid.New().String(),
		Nickname:  nickname,
		PinHash:   hash,
		CreatedAt: s.now().UTC(),
	}

	err = s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrNicknameTaken) {
			return nil, ErrNicknameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user signed up", "userID", user.ID)
	return s.session(user)
}

// Login never tells which of nickname or pin was wrong.
func (s *AuthService) Login(ctx context.Context, nickname, pin string) (*Session, error) {
	nickname = strings.TrimSpace(nickname)
	if validation.ValidateNickname(nickname) != nil || validation.ValidatePIN(pin) != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.ByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !ComparePIN(pin, user.PinHash) {
		return nil, ErrInvalidCredentials
	}

	return s.session(user)
}

// User returns the stored user, or a bare user for dev-mode ids that
// never signed up.
func (s *AuthService) User(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.ByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) && s.mode == AuthModeDev {
		return &model.User{ID: userID}, nil
	}
	return user, err
}

func (s *AuthService) session(user *model.User) (*Session, error) {
	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// IssueToken returns the bearer token for userID. In dev mode the token
// is the user id itself.
func (s *AuthService) IssueToken(userID string) (string, error) {
	if s.mode != AuthModeJWT {
		return userID, nil
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves a bearer token to a user id. An empty token in
// dev mode falls back to the configured dev user.
func (s *AuthService) Authenticate(token string) (string, error) {
	token = strings.TrimSpace(token)

	if s.mode != AuthModeJWT {
		if token == "" {
			token = s.devUserID
		}
		if token == "" {
			return "", ErrInvalidToken
		}
		return token, nil
	}

	if token == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// HashPIN encodes an argon2id hash in the PHC string format.
func HashPIN(pin string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(pin), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// ComparePIN checks pin against a hash produced by HashPIN.
func ComparePIN(pin, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(pin), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
