package repositories

import (
	"context"
	"time"

	"agora/internal/domain/models"
)

// ProfileRepository defines data access operations for user profiles
type ProfileRepository interface {
	// Create inserts a profile row for an auth user
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)

	// List returns profiles ordered by created_at DESC, with the total count
	List(ctx context.Context, page models.Page) ([]models.Profile, int, error)

	// Update updates username, display name, bio and location
	Update(ctx context.Context, profile *models.Profile) error
	SetAvatarURL(ctx context.Context, id string, url string) error
	SetBannedUntil(ctx context.Context, id string, until *time.Time) error
}

// FollowRepository stores user-to-user and user-to-provider follows.
// All operations are idempotent.
type FollowRepository interface {
	FollowUser(ctx context.Context, followerID, followeeID string) error
	UnfollowUser(ctx context.Context, followerID, followeeID string) error
	FollowProvider(ctx context.Context, userID, providerID string) error
	UnfollowProvider(ctx context.Context, userID, providerID string) error
}

// RPCRepository calls the SQL functions installed with the schema
type RPCRepository interface {
	// ProfileWithStats calls get_user_profile_with_stats
	ProfileWithStats(ctx context.Context, userID, viewerID string) (*models.ProfileWithStats, error)

	// ProviderFullProfile calls get_provider_full_profile
	ProviderFullProfile(ctx context.Context, providerID, viewerID string) (*models.ProviderFullProfile, error)

	// CalculateUserBadges calls calculate_user_badges
	CalculateUserBadges(ctx context.Context, userID string) ([]models.EarnedBadge, error)

	// RecordPortfolioImpression calls record_portfolio_impression and returns the new count
	RecordPortfolioImpression(ctx context.Context, portfolioID, viewerID string) (int, error)
}
