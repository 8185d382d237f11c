package services

import (
	"context"
	"io"

	"agora/internal/domain/models"
)

// UpdateProfileRequest updates the caller's profile. The first update of a
// new account creates the profile row and requires a username.
type UpdateProfileRequest struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
}

// Upload is a media file received from a client
type Upload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// ProfileService defines business logic operations for profiles and follows
type ProfileService interface {
	// GetProfile returns the profile with stats, served from cache when possible
	GetProfile(ctx context.Context, userID, viewerID string) (*models.ProfileWithStats, error)

	// GetProfilePage loads profile, badges, recent posts and portfolios concurrently
	GetProfilePage(ctx context.Context, userID, viewerID string) (*models.ProfilePage, error)
	GetBadges(ctx context.Context, userID string) ([]models.Badge, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.Profile, error)
	UploadAvatar(ctx context.Context, userID string, upload Upload) (*models.Profile, error)

	// Follow and Unfollow are idempotent
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error

	// IsBanned reports whether the user is suspended right now
	IsBanned(ctx context.Context, userID string) (bool, error)
}
