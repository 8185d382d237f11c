package repositories

import (
	"context"

	"agora/internal/domain/models"
)

// AdminRepository provides aggregate queries for the admin dashboard
type AdminRepository interface {
	Stats(ctx context.Context) (*models.AdminStats, error)
}
