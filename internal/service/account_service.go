package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_market/internal/auth"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Username        string `form:"username" json:"username" validate:"required,max=150"`
	FirstName       string `form:"first_name" json:"first_name" validate:"max=150"`
	LastName        string `form:"last_name" json:"last_name" validate:"max=150"`
	Email           string `form:"email" json:"email" validate:"omitempty,email,max=254"`
	Password        string `form:"password1" json:"password" validate:"required,min=8"`
	PasswordConfirm string `form:"password2" json:"password_confirm" validate:"required,eqfield=Password"`
}

type ProfileInput struct {
	FirstName string `form:"first_name" json:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" json:"last_name" validate:"max=150"`
	Email     string `form:"email" json:"email" validate:"omitempty,email,max=254"`
	Bio       string `form:"bio" json:"bio" validate:"max=2000"`
	Phone     string `form:"phone" json:"phone" validate:"max=20"`
}

type AccountService struct {
	userRepo UserStore
	issuer   *auth.Issuer
	logger   *zap.Logger
}

func NewAccountService(userRepo UserStore, issuer *auth.Issuer, logger *zap.Logger) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		issuer:   issuer,
		logger:   logger,
	}
}

// Register создаёт нового пользователя. Ошибки формы возвращаются как FieldErrors.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if existing != nil {
		return nil, FieldErrors{"username": ErrorMessage(ErrUsernameTaken)}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, FieldErrors{"username": ErrorMessage(ErrUsernameTaken)}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))

	return user, nil
}

// Authenticate проверяет логин и пароль
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates the user and issues a token pair
func (s *AccountService) Login(ctx context.Context, username, password string) (*model.User, *auth.TokenPair, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issuer.Issue(user.ID, user.IsStaff)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}
	return user, pair, nil
}

// Refresh exchanges a refresh token for a new pair
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	user, err := s.userFromToken(ctx, refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuer.Issue(user.ID, user.IsStaff)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}

// UserFromAccessToken resolves the user behind an access token
func (s *AccountService) UserFromAccessToken(ctx context.Context, token string) (*model.User, error) {
	return s.userFromToken(ctx, token, auth.TokenTypeAccess)
}

func (s *AccountService) userFromToken(ctx context.Context, token, typ string) (*model.User, error) {
	claims, err := s.issuer.Parse(token, typ)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AccountService) User(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile сохраняет редактируемые поля профиля
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Email = in.Email
	user.Bio = in.Bio
	user.Phone = in.Phone

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("Profile updated", zap.Int64("user_id", userID))
	return user, nil
}
