package wire

import (
	"jaggery-store/internal/adaptor"
	"jaggery-store/internal/data/repository"
	"jaggery-store/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures user management routes with role-based access control
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED USER ROUTES ====================
	r.With(middleware.AuthSession(repo.Session, log)).Get("/api/user/profile", userHandler.GetProfile)

	// ==================== ADMIN ROUTES ====================
	r.With(
		middleware.AuthSession(repo.Session, log),
		middleware.Admin(repo.User, log),
	).Route("/api/admin/users", func(r chi.Router) {
		r.Get("/", userHandler.GetAllUsers)       // GET /api/admin/users?page=1&per_page=10
		r.Delete("/{id}", userHandler.DeleteUser) // DELETE /api/admin/users/{user-id}
	})
}
