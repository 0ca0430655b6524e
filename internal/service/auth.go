package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/usedgoods/marketplace/internal/model"
	"github.com/usedgoods/marketplace/internal/repository"
	"github.com/usedgoods/marketplace/internal/storage"
	"github.com/usedgoods/marketplace/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	userRepository repository.UserRepository
	storage        storage.Storage
	jwtSecret      string
	jwtExpiry      time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	storage storage.Storage,
	jwtSecret string,
	jwtExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		storage:        storage,
		jwtSecret:      jwtSecret,
		jwtExpiry:      jwtExpiry,
	}
}

// Registration is the input of Register. AvatarHandle is an optional staged upload.
type Registration struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Tel          string `json:"tel"`
	Password     string `json:"password"`
	AvatarHandle string `json:"-"`
}

// Register creates an account. A staged avatar is saved before the user row
// is written and deleted again if the row cannot be created.
func (s *AuthService) Register(ctx context.Context, in Registration) (*model.User, error) {
	user, err := s.newUser(in)
	if err != nil {
		s.discardAvatar(ctx, in.AvatarHandle)
		return nil, err
	}

	if in.AvatarHandle != "" {
		path, err := s.storage.Save(ctx, in.AvatarHandle)
		if err != nil {
			s.discardAvatar(ctx, in.AvatarHandle)
			return nil, &StorageError{Op: "save", Item: in.AvatarHandle, Err: err}
		}
		user.Avatar = &path
	}

	err = s.userRepository.Create(ctx, user)
	if err != nil {
		if user.Avatar != nil {
			delErr := s.storage.Delete(ctx, *user.Avatar)
			if delErr != nil {
				slog.Error("failed to delete avatar from storage during cleanup", "error", delErr, "path", *user.Avatar)
			}
		}
		if errors.Is(err, repository.ErrDuplicateEmail) || errors.Is(err, repository.ErrDuplicateTel) {
			return nil, validationError("%v", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) newUser(in Registration) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	tel := strings.TrimSpace(in.Tel)

	if name == "" {
		return nil, validationError("name is required")
	}
	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, validationError("%v", err)
	}
	err = validation.ValidateTel(tel)
	if err != nil {
		return nil, validationError("%v", err)
	}
	err = validation.ValidatePassword(in.Password)
	if err != nil {
		return nil, validationError("%v", err)
	}
	if in.AvatarHandle != "" {
		err = storage.ValidateHandle(in.AvatarHandle)
		if err != nil {
			return nil, validationError("%v", err)
		}
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Tel:          tel,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}, nil
}

func (s *AuthService) discardAvatar(ctx context.Context, handle string) {
	if handle == "" {
		return
	}
	err := s.storage.Discard(ctx, handle)
	if err != nil {
		slog.Error("failed to discard staged avatar", "error", err, "handle", handle)
	}
}

// Login checks the credentials and returns the user with a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidCredentials)
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidCredentials)
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	return user, token, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyJWT validates the token signature and expiry and returns the user id it was issued for.
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
