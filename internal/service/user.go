package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/repo"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/pkg/events"
	pkghash "github.com/Skotchmaster/ecommerce_api/pkg/hash"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
	"github.com/Skotchmaster/ecommerce_api/pkg/tokens"
)

type UserService struct {
	Repo       *repo.GormRepo
	Events     events.Publisher
	JWTSecret  []byte
	AccessTTL  time.Duration
	ConfirmTTL time.Duration
	Now        func() time.Time
}

type UserRegisteredEvent struct {
	Type            string `json:"type"`
	Email           string `json:"email"`
	ConfirmationURL string `json:"confirmation_url"`
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register stores an unconfirmed user and returns the URL that confirms it.
// baseURL ends with a slash.
func (s *UserService) Register(ctx context.Context, req transport.RegisterRequest, baseURL string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "user.register")

	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := req.Role
	if role == "" {
		role = models.RoleClient
	}
	if role != models.RoleClient && role != models.RoleSeller {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return "", fmt.Errorf("%w: user with that email already exists", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", classify(err)
	}

	pwHash, err := pkghash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return "", err
	}

	user := &models.User{Email: email, Password: pwHash, Role: role}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", fmt.Errorf("%w: user with that email already exists", ErrConflict)
		}
		return "", classify(err)
	}

	token, err := tokens.NewConfirmationToken(s.JWTSecret, user.Email, user.Role, s.now().Add(s.ConfirmTTL))
	if err != nil {
		return "", err
	}
	confirmURL := baseURL + "user/confirm/" + token

	publish(ctx, s.Events, events.TopicUser, user.Email, UserRegisteredEvent{
		Type:            "user_registered",
		Email:           user.Email,
		ConfirmationURL: confirmURL,
	})

	l.Info("register_success", "user_id", user.ID)
	return confirmURL, nil
}

// Login checks the credentials of a confirmed user and issues an access token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "user.login")

	user, err := s.Repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return "", classify(err)
	}
	if !pkghash.CheckPassword(user.Password, password) {
		l.Warn("login_error", "reason", "wrong password", "user_id", user.ID)
		return "", fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if !user.Confirmed {
		return "", fmt.Errorf("%w: user has not confirmed email", ErrUnauthorized)
	}

	token, err := tokens.NewAccessToken(s.JWTSecret, user.Email, user.Role, s.now().Add(s.AccessTTL))
	if err != nil {
		return "", err
	}
	l.Info("login_success", "user_id", user.ID)
	return token, nil
}

func (s *UserService) Confirm(ctx context.Context, token string) error {
	claims, err := tokens.ParseTyped(token, s.JWTSecret, tokens.TypeConfirmation)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if err := s.Repo.ConfirmUser(ctx, claims.Subject); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, claims.Subject)
		}
		return classify(err)
	}
	return nil
}

// Authenticate resolves the subject of a verified access token to a user.
func (s *UserService) Authenticate(ctx context.Context, email string) (*models.User, error) {
	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown user", ErrUnauthorized)
		}
		return nil, classify(err)
	}
	return user, nil
}
