package usecase

import (
	"context"
	"errors"
	"fmt"

	"jaggery-store/internal/data/repository"
	"jaggery-store/internal/dto/request"
	"jaggery-store/internal/dto/response"
	"jaggery-store/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.AdminUserResponse], error)
	DeleteUser(ctx context.Context, userID string) error
}

type userService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	log         *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		log:         log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.AdminUserResponse], error) {
	if req.Page < 1 {
		req.Page = 1
	}
	req.PerPage = req.Limit()

	users, err := us.userRepo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	total, err := us.userRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	userResponses := make([]response.AdminUserResponse, len(users))
	for i, user := range users {
		userResponses[i] = response.UserToAdminResponse(user)
	}

	us.log.Debug("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("per_page", req.PerPage),
		zap.Int("total_pages", utils.CalculateTotalPages(total, req.PerPage)),
	)

	return response.NewPaginatedResponse(userResponses, req.Page, req.PerPage, total), nil
}

func (us *userService) DeleteUser(ctx context.Context, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("%w: invalid user ID", ErrInvalidInput)
	}

	if err := us.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotUpdated) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	// A deleted account must not keep working sessions
	if err := us.sessionRepo.RevokeAllUserSessions(ctx, id); err != nil {
		us.log.Warn("Failed to revoke sessions of deleted user", zap.Error(err), zap.String("user_id", id.String()))
	}

	us.log.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}
