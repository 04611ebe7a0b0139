package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	autherrors "leavedesk/internal/auth/errors"
	"leavedesk/internal/mailer"
	"leavedesk/internal/user"
	usererrors "leavedesk/internal/user/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)

	// RegisterAdmin creates a pre-approved admin account. The caller is
	// trusted; the bootstrap secret check happens at the transport layer.
	RegisterAdmin(ctx context.Context, req RegisterRequest) (RegisterResponse, error)

	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)

	GetMe(ctx context.Context, userID string) (user.UserResponse, error)
}

type service struct {
	db       *gorm.DB
	userRepo user.Repository
	mail     mailer.Sender
	logger   *zap.Logger
}

func NewService(db *gorm.DB, userRepo user.Repository, mail mailer.Sender, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{db: db, userRepo: userRepo, mail: mail, logger: l}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	u, err := s.createAccount(ctx, req, user.RoleEmployee, false)
	if err != nil {
		return RegisterResponse{}, err
	}

	// Every registration starts unapproved; let the admins know someone is
	// waiting. Best-effort.
	admins, err := s.userRepo.FindByRole(ctx, user.RoleAdmin)
	if err != nil {
		s.logger.Warn("register admin lookup for notification failed", zap.Error(err))
	}
	for _, admin := range admins {
		if err := s.mail.Send(
			admin.Email,
			"New User Registration",
			fmt.Sprintf("New user %s has registered and needs approval.", u.Username),
		); err != nil {
			s.logger.Warn("register notification email failed",
				zap.String("admin_email", admin.Email),
				zap.Error(err),
			)
		}
	}

	return RegisterResponse{
		Message: "Registration successful, awaiting admin approval",
		User:    mapUserToResponse(*u),
	}, nil
}

func (s *service) RegisterAdmin(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	u, err := s.createAccount(ctx, req, user.RoleAdmin, true)
	if err != nil {
		return RegisterResponse{}, err
	}

	return RegisterResponse{
		Message: "Admin user created successfully",
		User:    mapUserToResponse(*u),
	}, nil
}

func (s *service) createAccount(ctx context.Context, req RegisterRequest, role string, approved bool) (*user.User, error) {
	s.logger.Debug("register requested",
		zap.String("username", req.Username),
		zap.String("role", role),
	)

	// Fail fast on taken identities; the unique constraints remain the
	// backstop for concurrent registrations.
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, usererrors.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("register username lookup failed", zap.Error(err))
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, usererrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("register email lookup failed", zap.Error(err))
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         role,
		IsApproved:   approved,
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("register begin tx failed", zap.Error(tx.Error))
		return nil, tx.Error
	}
	defer tx.Rollback()

	qtx := s.userRepo.WithTx(tx)
	if err := qtx.Create(ctx, u); err != nil {
		s.logger.Warn("register persist failed", zap.String("username", req.Username), zap.Error(err))
		return nil, user.MapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("register commit failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("register success",
		zap.String("user_id", u.ID.String()),
		zap.String("username", u.Username),
		zap.String("role", role),
	)

	return u, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	u, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		// Unknown username and bad password are indistinguishable to the
		// caller.
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	if !u.IsApproved {
		s.logger.Warn("login rejected, account not approved", zap.String("username", req.Username))
		return LoginResponse{}, autherrors.ErrAccountNotApproved
	}

	accessToken, err := s.generateToken(u.ID.String(), u.Role, tokenTTL)
	if err != nil {
		s.logger.Error("login token generation failed", zap.Error(err))
		return LoginResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("login success",
		zap.String("user_id", u.ID.String()),
		zap.String("role", u.Role),
	)

	return LoginResponse{
		AccessToken: accessToken,
		User:        mapUserToResponse(*u),
	}, nil
}

func (s *service) GetMe(ctx context.Context, userID string) (user.UserResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return user.UserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.UserResponse{}, usererrors.ErrUserNotFound
		}
		return user.UserResponse{}, err
	}

	return mapUserToResponse(*u), nil
}

// reusable token generator
func (s *service) generateToken(userID, role string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func mapUserToResponse(u user.User) user.UserResponse {
	return user.UserResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsApproved: u.IsApproved,
		CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
