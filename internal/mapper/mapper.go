package mapper

import (
	"encoding/json"
	"fmt"

	"agora/internal/domain/models"
)

func ToProfile(r ProfileRow) models.Profile {
	role := models.Role(r.Role)
	if role == "" {
		role = models.RoleUser
	}
	return models.Profile{
		ID:          r.ID,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		AvatarURL:   r.AvatarURL,
		Bio:         r.Bio,
		Location:    r.Location,
		Role:        role,
		BannedUntil: r.BannedUntil,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func ToProfileSummary(r ProfileRow) models.ProfileSummary {
	return models.ProfileSummary{
		ID:          r.ID,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		AvatarURL:   r.AvatarURL,
	}
}

func ToProfileWithStats(r ProfileWithStatsRow) models.ProfileWithStats {
	return models.ProfileWithStats{
		Profile: ToProfile(r.ProfileRow),
		Stats: models.ProfileStats{
			PostCount:      r.PostCount,
			CommentCount:   r.CommentCount,
			FollowerCount:  r.FollowerCount,
			FollowingCount: r.FollowingCount,
			Reputation:     r.Reputation,
		},
		IsFollowing: r.IsFollowing,
	}
}

// author returns nil when the author row was not joined (deleted profile).
func author(id string, a AuthorColumns) *models.ProfileSummary {
	if a.AuthorUsername == nil {
		return nil
	}
	s := &models.ProfileSummary{ID: id, Username: *a.AuthorUsername, AvatarURL: a.AuthorAvatarURL}
	if a.AuthorDisplayName != nil {
		s.DisplayName = *a.AuthorDisplayName
	}
	return s
}

func ToPost(r PostRow) models.Post {
	return models.Post{
		ID:           r.ID,
		AuthorID:     r.AuthorID,
		CategoryID:   r.CategoryID,
		Title:        r.Title,
		Body:         r.Body,
		Upvotes:      r.Upvotes,
		Downvotes:    r.Downvotes,
		CommentCount: r.CommentCount,
		MyVote:       r.MyVote,
		Author:       author(r.AuthorID, r.AuthorColumns),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ToComment maps a comment row. Children starts empty; tree assembly fills it.
func ToComment(r CommentRow) models.Comment {
	return models.Comment{
		ID:        r.ID,
		PostID:    r.PostID,
		AuthorID:  r.AuthorID,
		ParentID:  r.ParentID,
		Body:      r.Body,
		Upvotes:   r.Upvotes,
		Downvotes: r.Downvotes,
		MyVote:    r.MyVote,
		Author:    author(r.AuthorID, r.AuthorColumns),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Children:  []*models.Comment{},
	}
}

func ToCategory(r CategoryRow) models.Category {
	return models.Category{
		ID:          r.ID,
		ParentID:    r.ParentID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		SortOrder:   r.SortOrder,
		PostCount:   r.PostCount,
		CreatedAt:   r.CreatedAt,
		Children:    []*models.Category{},
	}
}

func ToProviderType(r ProviderTypeRow) models.ProviderType {
	return models.ProviderType{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

func ToProvider(r ProviderRow) models.Provider {
	return models.Provider{
		ID:             r.ID,
		UserID:         r.UserID,
		ProviderTypeID: r.ProviderTypeID,
		DisplayName:    r.DisplayName,
		Headline:       r.Headline,
		Bio:            r.Bio,
		Location:       r.Location,
		Website:        r.Website,
		Verified:       r.Verified,
		FollowerCount:  r.FollowerCount,
		IsFollowing:    r.IsFollowing,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func ToProviderFullProfile(r ProviderFullProfileRow) models.ProviderFullProfile {
	return models.ProviderFullProfile{
		Provider:   ToProvider(r.ProviderRow),
		Type:       ToProviderType(r.Type),
		Owner:      ToProfileSummary(r.Owner),
		Portfolios: Map(r.Portfolios, ToPortfolio),
	}
}

func ToPortfolio(r PortfolioRow) models.Portfolio {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Portfolio{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		ProviderID:      r.ProviderID,
		Title:           r.Title,
		Description:     r.Description,
		CoverURL:        r.CoverURL,
		Tags:            tags,
		ImpressionCount: r.ImpressionCount,
		CollectCount:    r.CollectCount,
		IsCollected:     r.IsCollected,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func ToPortfolioMedia(r PortfolioMediaRow) models.PortfolioMedia {
	return models.PortfolioMedia{
		ID:          r.ID,
		PortfolioID: r.PortfolioID,
		URL:         r.URL,
		ContentType: r.ContentType,
		Position:    r.Position,
		CreatedAt:   r.CreatedAt,
	}
}

func ToEarnedBadge(r EarnedBadgeRow) models.EarnedBadge {
	return models.EarnedBadge{Code: r.Code, EarnedAt: r.EarnedAt}
}

// Map applies fn to every row. The result is never nil.
func Map[R, M any](rows []R, fn func(R) M) []M {
	out := make([]M, 0, len(rows))
	for _, r := range rows {
		out = append(out, fn(r))
	}
	return out
}

// Decode unmarshals a raw snake_case row and maps it.
func Decode[R, M any](raw []byte, fn func(R) M) (M, error) {
	var row R
	if err := json.Unmarshal(raw, &row); err != nil {
		var zero M
		return zero, fmt.Errorf("decode row: %w", err)
	}
	return fn(row), nil
}
