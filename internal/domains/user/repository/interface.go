package repository

import (
	"context"

	"datahub-backend/internal/domains/user/model"
)

// RepositoryInterface reads users together with their profile.
type RepositoryInterface interface {
	// GetByID returns model.ErrUserNotFound when no such user exists.
	GetByID(ctx context.Context, id int64) (*model.User, error)
}
