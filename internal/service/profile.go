package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/internal/badges"
	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
	"agora/internal/domain/services"
	"agora/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"
)

const (
	profileRecentPosts = 5
	profilePortfolios  = 6
)

// profileService implements the ProfileService interface
type profileService struct {
	profileRepo   repositories.ProfileRepository
	followRepo    repositories.FollowRepository
	rpcRepo       repositories.RPCRepository
	postRepo      repositories.PostRepository
	portfolioRepo repositories.PortfolioRepository
	badges        *badges.Registry
	cache         cache.Cache
	media         MediaStore
	now           func() time.Time
	logger        *slog.Logger
}

// NewProfileService creates a new profile service. media may be nil when
// storage is not configured.
func NewProfileService(
	profileRepo repositories.ProfileRepository,
	followRepo repositories.FollowRepository,
	rpcRepo repositories.RPCRepository,
	postRepo repositories.PostRepository,
	portfolioRepo repositories.PortfolioRepository,
	badgeRegistry *badges.Registry,
	c cache.Cache,
	media MediaStore,
	logger *slog.Logger,
) services.ProfileService {
	return &profileService{
		profileRepo:   profileRepo,
		followRepo:    followRepo,
		rpcRepo:       rpcRepo,
		postRepo:      postRepo,
		portfolioRepo: portfolioRepo,
		badges:        badgeRegistry,
		cache:         c,
		media:         media,
		now:           time.Now,
		logger:        logger,
	}
}

// GetProfile returns the profile with stats as seen by viewerID
func (s *profileService) GetProfile(ctx context.Context, userID, viewerID string) (*models.ProfileWithStats, error) {
	key := cache.ProfileKey(userID, viewerID)

	var cached models.ProfileWithStats
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("profile cache read failed", "user_id", userID, "error", err)
	}

	profile, err := s.rpcRepo.ProfileWithStats(ctx, userID, viewerID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, profile); err != nil {
		s.logger.Warn("profile cache write failed", "user_id", userID, "error", err)
	}
	return profile, nil
}

// GetProfilePage loads the four parts of a profile page concurrently.
// Any failure fails the page.
func (s *profileService) GetProfilePage(ctx context.Context, userID, viewerID string) (*models.ProfilePage, error) {
	page := &models.ProfilePage{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		profile, err := s.GetProfile(gctx, userID, viewerID)
		page.Profile = profile
		return err
	})
	g.Go(func() error {
		b, err := s.GetBadges(gctx, userID)
		page.Badges = b
		return err
	})
	g.Go(func() error {
		posts, err := s.postRepo.List(gctx, repositories.PostFilter{
			AuthorID: userID,
			Page:     models.Page{Limit: profileRecentPosts},
		}, viewerID)
		page.RecentPosts = posts
		return err
	})
	g.Go(func() error {
		portfolios, err := s.portfolioRepo.List(gctx, repositories.PortfolioFilter{
			OwnerID: userID,
			Page:    models.Page{Limit: profilePortfolios},
		}, viewerID)
		page.Portfolios = portfolios
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}

// GetBadges computes the user's badges and decorates them from the catalogue
func (s *profileService) GetBadges(ctx context.Context, userID string) ([]models.Badge, error) {
	earned, err := s.rpcRepo.CalculateUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.badges.Decorate(earned), nil
}

// UpdateProfile updates the caller's profile, creating it on first use
func (s *profileService) UpdateProfile(ctx context.Context, userID string, req *services.UpdateProfileRequest) (*models.Profile, error) {
	req.Username = trimmed(req.Username)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Username,
			validation.NilOrNotEmpty,
			validation.Length(3, config.MaxUsernameLength),
			validation.Match(usernamePattern).Error("may contain only letters, digits and underscores"),
		),
		validation.Field(&req.DisplayName, validation.Length(0, config.MaxNameLength)),
		validation.Field(&req.Bio, validation.Length(0, config.MaxBioLength)),
		validation.Field(&req.Location, validation.Length(0, config.MaxNameLength)),
	); err != nil {
		return nil, invalid(err)
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	creating := errors.Is(err, domain.ErrNotFound)
	if err != nil && !creating {
		return nil, err
	}
	if creating {
		if req.Username == nil {
			return nil, &domain.ValidationError{Message: "username: is required for a new profile"}
		}
		profile = &models.Profile{ID: userID, Role: models.RoleUser}
	}

	if req.Username != nil {
		profile.Username = *req.Username
	}
	if req.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Location != nil {
		profile.Location = strings.TrimSpace(*req.Location)
	}

	if creating {
		err = s.profileRepo.Create(ctx, profile)
	} else {
		err = s.profileRepo.Update(ctx, profile)
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	s.logger.Info("profile saved",
		"user_id", userID,
		"username", profile.Username,
		"created", creating,
	)

	return profile, nil
}

// UploadAvatar stores a new avatar and removes the previous one
func (s *profileService) UploadAvatar(ctx context.Context, userID string, upload services.Upload) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := uploadMedia(ctx, s.media, storage.BucketAvatars, userID, upload, true)
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.SetAvatarURL(ctx, userID, url); err != nil {
		removeMedia(ctx, s.media, url, s.logger)
		return nil, err
	}

	if profile.AvatarURL != nil {
		removeMedia(ctx, s.media, *profile.AvatarURL, s.logger)
	}
	profile.AvatarURL = &url

	s.invalidate(ctx, userID)
	s.logger.Info("avatar updated", "user_id", userID, "url", url)

	return profile, nil
}

// Follow makes followerID follow followeeID
func (s *profileService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return &domain.ValidationError{Message: "cannot follow yourself"}
	}
	if err := s.followRepo.FollowUser(ctx, followerID, followeeID); err != nil {
		return err
	}

	s.invalidate(ctx, followerID, followeeID)
	s.logger.Info("user followed", "follower_id", followerID, "followee_id", followeeID)
	return nil
}

// Unfollow removes the follow, if any
func (s *profileService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	if err := s.followRepo.UnfollowUser(ctx, followerID, followeeID); err != nil {
		return err
	}

	s.invalidate(ctx, followerID, followeeID)
	s.logger.Info("user unfollowed", "follower_id", followerID, "followee_id", followeeID)
	return nil
}

// IsBanned reports whether the user's suspension is still running
func (s *profileService) IsBanned(ctx context.Context, userID string) (bool, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return profile.IsBanned(s.now()), nil
}

// invalidate drops the cached stats of users for every viewer
func (s *profileService) invalidate(ctx context.Context, userIDs ...string) {
	for _, id := range userIDs {
		if _, err := s.cache.DeletePrefix(ctx, cache.PrefixProfile+id+":"); err != nil {
			s.logger.Warn("profile cache invalidation failed", "user_id", id, "error", err)
		}
	}
}
