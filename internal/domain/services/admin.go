package services

import (
	"context"

	"agora/internal/domain/models"
)

// AdminService defines the moderation operations of the admin panel.
// Content deletes, category management and verification go through the
// owning services with an admin Actor.
type AdminService interface {
	Stats(ctx context.Context) (*models.AdminStats, error)
	ListUsers(ctx context.Context, page models.Page) (*models.UserPage, error)

	// BanUser suspends sign-in and writes for hours
	BanUser(ctx context.Context, userID string, hours int) (*models.Profile, error)
	UnbanUser(ctx context.Context, userID string) (*models.Profile, error)
}
