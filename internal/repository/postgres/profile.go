package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
	"agora/internal/mapper"
)

// PostgresProfileRepository implements the ProfileRepository interface
type PostgresProfileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(config *RepositoryConfig) repositories.ProfileRepository {
	return &PostgresProfileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const profileColumns = `id, username, display_name, avatar_url, bio, location, role, banned_until, created_at, updated_at`

// Create inserts a profile for an existing auth user. Re-running for the same id is a no-op.
func (r *PostgresProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, username, display_name, bio, location, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		profile.ID,
		profile.Username,
		profile.DisplayName,
		profile.Bio,
		profile.Location,
		string(profile.Role),
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return usernameTaken(profile.Username)
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *PostgresProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, profileColumns, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return collectOne(rows, mapper.ToProfile, "profile", id)
}

// List returns a page of profiles, newest first, with the total count
func (r *PostgresProfileRepository) List(ctx context.Context, page models.Page) ([]models.Profile, int, error) {
	page.ApplyDefaults()
	executor := GetExecutor(ctx, r.pool)

	var total int
	count := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.Profiles)
	if err := executor.QueryRow(ctx, count).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, profileColumns, r.tables.Profiles)
	rows, err := executor.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	profiles, err := collect(rows, mapper.ToProfile)
	if err != nil {
		return nil, 0, fmt.Errorf("scan profiles: %w", err)
	}
	return profiles, total, nil
}

// Update updates the editable profile fields
func (r *PostgresProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET username = $1, display_name = $2, bio = $3, location = $4, updated_at = $5
		WHERE id = $6
	`, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		profile.Username,
		profile.DisplayName,
		profile.Bio,
		profile.Location,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return usernameTaken(profile.Username)
		}
		return fmt.Errorf("update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", profile.ID, domain.ErrNotFound)
	}
	return nil
}

// SetAvatarURL stores the public URL of an uploaded avatar
func (r *PostgresProfileRepository) SetAvatarURL(ctx context.Context, id, url string) error {
	query := fmt.Sprintf(`UPDATE %s SET avatar_url = $1, updated_at = NOW() WHERE id = $2`, r.tables.Profiles)
	return execAffectingOne(ctx, GetExecutor(ctx, r.pool), query, "profile", id, url, id)
}

// SetBannedUntil bans a user until the given time; nil lifts the ban
func (r *PostgresProfileRepository) SetBannedUntil(ctx context.Context, id string, until *time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET banned_until = $1, updated_at = NOW() WHERE id = $2`, r.tables.Profiles)
	return execAffectingOne(ctx, GetExecutor(ctx, r.pool), query, "profile", id, until, id)
}

func usernameTaken(username string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("username '%s' is taken", username),
		Code:         domain.CodeUsernameTaken,
		ResourceType: "profile",
	}
}
