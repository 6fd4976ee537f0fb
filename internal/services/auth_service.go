package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskboard.com/taskboard/internal/auth"
	"taskboard.com/taskboard/internal/constants"
	apperrors "taskboard.com/taskboard/internal/errors"
	model "taskboard.com/taskboard/internal/models"
	"taskboard.com/taskboard/internal/policy"
	repository "taskboard.com/taskboard/internal/repositories"
)

const (
	minPasswordLength = 6
	// bcrypt input limit, in bytes
	maxPasswordLength = 72
)

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type AuthService struct {
	store  repository.Store
	tokens *auth.TokenIssuer
	log    *logrus.Logger
	now    func() time.Time
}

func NewAuthService(store repository.Store, tokens *auth.TokenIssuer, log *logrus.Logger) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Signup registers a regular user and returns a token for them.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*model.User, string, error) {
	user, err := s.newUser(input, constants.RoleUser)
	if err != nil {
		return nil, "", err
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperrors.ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks the credentials. Unknown email and wrong password give the
// same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", apperrors.ErrCredentialsRequired
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ResolveIdentity turns a bearer token into the caller's identity. The user
// is reloaded so that role changes and deletions apply to existing tokens.
func (s *AuthService) ResolveIdentity(ctx context.Context, rawToken string) (policy.Identity, error) {
	userID, err := s.tokens.Parse(rawToken)
	if err != nil {
		return policy.Identity{}, apperrors.ErrUnauthorized
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return policy.Identity{}, apperrors.ErrUnauthorized
		}
		return policy.Identity{}, err
	}

	return policy.Identity{UserID: user.ID, Role: user.Role}, nil
}

// EnsureAdmin creates an admin account, or promotes the account that already
// uses the email. created reports which one happened.
func (s *AuthService) EnsureAdmin(ctx context.Context, input SignupInput) (user *model.User, created bool, err error) {
	existing, err := s.store.Users().FindByEmail(ctx, normalizeEmail(input.Email))
	switch {
	case err == nil:
		user, err = s.store.Users().UpdateRole(ctx, existing.ID, constants.RoleAdmin)
		if err != nil {
			return nil, false, err
		}
		s.log.WithField("user_id", user.ID).Info("existing user promoted to admin")
		return user, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, err
	}

	user, err = s.newUser(input, constants.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, false, apperrors.ErrEmailTaken
		}
		return nil, false, err
	}

	s.log.WithField("user_id", user.ID).Info("admin account created")
	return user, true, nil
}

func (s *AuthService) newUser(input SignupInput, role constants.Role) (*model.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.ErrNameRequired
	}
	email := normalizeEmail(input.Email)
	if !validEmail(email) {
		return nil, apperrors.ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.ErrPasswordTooShort
	}
	if len(input.Password) > maxPasswordLength {
		return nil, apperrors.ErrPasswordTooLong
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail accepts a bare address only, no display name.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
