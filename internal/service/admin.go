package service

import (
	"context"
	"log/slog"
	"time"

	"agora/internal/auth"
	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
	"agora/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// maxBanHours caps a single ban at one year
const maxBanHours = 24 * 365

// adminService implements the AdminService interface
type adminService struct {
	adminRepo   repositories.AdminRepository
	profileRepo repositories.ProfileRepository
	users       auth.UserAdmin
	now         func() time.Time
	logger      *slog.Logger
}

// NewAdminService creates the admin panel service
func NewAdminService(
	adminRepo repositories.AdminRepository,
	profileRepo repositories.ProfileRepository,
	users auth.UserAdmin,
	logger *slog.Logger,
) services.AdminService {
	return &adminService{
		adminRepo:   adminRepo,
		profileRepo: profileRepo,
		users:       users,
		now:         time.Now,
		logger:      logger,
	}
}

// Stats returns dashboard counters
func (s *adminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	return s.adminRepo.Stats(ctx)
}

// ListUsers returns a page of profiles, newest first
func (s *adminService) ListUsers(ctx context.Context, page models.Page) (*models.UserPage, error) {
	page.ApplyDefaults()
	users, total, err := s.profileRepo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return &models.UserPage{Users: users, Total: total}, nil
}

// BanUser suspends the user in the auth service and on the profile.
// The auth ban stops new sessions; the profile ban blocks writes from
// tokens issued before it.
func (s *adminService) BanUser(ctx context.Context, userID string, hours int) (*models.Profile, error) {
	if err := validation.Validate(hours, validation.Required, validation.Min(1), validation.Max(maxBanHours)); err != nil {
		return nil, invalid(validation.Errors{"hours": err})
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := time.Duration(hours) * time.Hour
	if err := s.users.Ban(ctx, userID, d); err != nil {
		return nil, err
	}

	until := s.now().Add(d).UTC()
	if err := s.profileRepo.SetBannedUntil(ctx, userID, &until); err != nil {
		return nil, err
	}
	profile.BannedUntil = &until

	s.logger.Info("user banned", "user_id", userID, "hours", hours, "until", until)
	return profile, nil
}

// UnbanUser lifts a suspension in both places
func (s *adminService) UnbanUser(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.users.Unban(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.profileRepo.SetBannedUntil(ctx, userID, nil); err != nil {
		return nil, err
	}
	profile.BannedUntil = nil

	s.logger.Info("user unbanned", "user_id", userID)
	return profile, nil
}
