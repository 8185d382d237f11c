package mapper

import (
	"time"

	"github.com/tidwall/gjson"

	"agora/internal/domain/models"
)

// A field binds one snake_case column to a setter on the model.
type field[M any] struct {
	column string
	set    func(m *M, v gjson.Result)
}

// patch overwrites only the model fields whose columns are present in raw.
// It returns the number of fields applied.
func patch[M any](m *M, raw []byte, fields []field[M]) int {
	if !gjson.ValidBytes(raw) {
		return 0
	}
	doc := gjson.ParseBytes(raw)
	applied := 0
	for _, f := range fields {
		v := doc.Get(f.column)
		if !v.Exists() {
			continue
		}
		f.set(m, v)
		applied++
	}
	return applied
}

func optString(v gjson.Result) *string {
	if v.Type == gjson.Null {
		return nil
	}
	s := v.String()
	return &s
}

func timestamp(v gjson.Result) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v.String())
	if err != nil {
		return time.Time{}
	}
	return t
}

func optTimestamp(v gjson.Result) *time.Time {
	if v.Type == gjson.Null {
		return nil
	}
	t := timestamp(v)
	return &t
}

var postFields = []field[models.Post]{
	{"category_id", func(m *models.Post, v gjson.Result) { m.CategoryID = optString(v) }},
	{"title", func(m *models.Post, v gjson.Result) { m.Title = v.String() }},
	{"body", func(m *models.Post, v gjson.Result) { m.Body = v.String() }},
	{"upvotes", func(m *models.Post, v gjson.Result) { m.Upvotes = int(v.Int()) }},
	{"downvotes", func(m *models.Post, v gjson.Result) { m.Downvotes = int(v.Int()) }},
	{"comment_count", func(m *models.Post, v gjson.Result) { m.CommentCount = int(v.Int()) }},
	{"updated_at", func(m *models.Post, v gjson.Result) { m.UpdatedAt = timestamp(v) }},
}

// PatchPost merges a raw post record into p. Viewer state (MyVote) and the
// author card are never touched.
func PatchPost(p *models.Post, raw []byte) int { return patch(p, raw, postFields) }

var commentFields = []field[models.Comment]{
	{"body", func(m *models.Comment, v gjson.Result) { m.Body = v.String() }},
	{"upvotes", func(m *models.Comment, v gjson.Result) { m.Upvotes = int(v.Int()) }},
	{"downvotes", func(m *models.Comment, v gjson.Result) { m.Downvotes = int(v.Int()) }},
	{"updated_at", func(m *models.Comment, v gjson.Result) { m.UpdatedAt = timestamp(v) }},
}

// PatchComment merges a raw comment record into c. Parent and children are
// structural and are left alone.
func PatchComment(c *models.Comment, raw []byte) int { return patch(c, raw, commentFields) }

var categoryFields = []field[models.Category]{
	{"name", func(m *models.Category, v gjson.Result) { m.Name = v.String() }},
	{"slug", func(m *models.Category, v gjson.Result) { m.Slug = v.String() }},
	{"description", func(m *models.Category, v gjson.Result) { m.Description = v.String() }},
	{"sort_order", func(m *models.Category, v gjson.Result) { m.SortOrder = int(v.Int()) }},
	{"post_count", func(m *models.Category, v gjson.Result) { m.PostCount = int(v.Int()) }},
}

func PatchCategory(c *models.Category, raw []byte) int { return patch(c, raw, categoryFields) }

var profileFields = []field[models.Profile]{
	{"username", func(m *models.Profile, v gjson.Result) { m.Username = v.String() }},
	{"display_name", func(m *models.Profile, v gjson.Result) { m.DisplayName = v.String() }},
	{"avatar_url", func(m *models.Profile, v gjson.Result) { m.AvatarURL = optString(v) }},
	{"bio", func(m *models.Profile, v gjson.Result) { m.Bio = v.String() }},
	{"location", func(m *models.Profile, v gjson.Result) { m.Location = v.String() }},
	{"role", func(m *models.Profile, v gjson.Result) { m.Role = models.Role(v.String()) }},
	{"banned_until", func(m *models.Profile, v gjson.Result) { m.BannedUntil = optTimestamp(v) }},
	{"updated_at", func(m *models.Profile, v gjson.Result) { m.UpdatedAt = timestamp(v) }},
}

func PatchProfile(p *models.Profile, raw []byte) int { return patch(p, raw, profileFields) }

var providerFields = []field[models.Provider]{
	{"provider_type_id", func(m *models.Provider, v gjson.Result) { m.ProviderTypeID = v.String() }},
	{"display_name", func(m *models.Provider, v gjson.Result) { m.DisplayName = v.String() }},
	{"headline", func(m *models.Provider, v gjson.Result) { m.Headline = v.String() }},
	{"bio", func(m *models.Provider, v gjson.Result) { m.Bio = v.String() }},
	{"location", func(m *models.Provider, v gjson.Result) { m.Location = v.String() }},
	{"website", func(m *models.Provider, v gjson.Result) { m.Website = optString(v) }},
	{"verified", func(m *models.Provider, v gjson.Result) { m.Verified = v.Bool() }},
	{"follower_count", func(m *models.Provider, v gjson.Result) { m.FollowerCount = int(v.Int()) }},
	{"updated_at", func(m *models.Provider, v gjson.Result) { m.UpdatedAt = timestamp(v) }},
}

func PatchProvider(p *models.Provider, raw []byte) int { return patch(p, raw, providerFields) }

var portfolioFields = []field[models.Portfolio]{
	{"title", func(m *models.Portfolio, v gjson.Result) { m.Title = v.String() }},
	{"description", func(m *models.Portfolio, v gjson.Result) { m.Description = v.String() }},
	{"cover_url", func(m *models.Portfolio, v gjson.Result) { m.CoverURL = optString(v) }},
	{"tags", func(m *models.Portfolio, v gjson.Result) {
		tags := []string{}
		for _, t := range v.Array() {
			tags = append(tags, t.String())
		}
		m.Tags = tags
	}},
	{"impression_count", func(m *models.Portfolio, v gjson.Result) { m.ImpressionCount = int(v.Int()) }},
	{"collect_count", func(m *models.Portfolio, v gjson.Result) { m.CollectCount = int(v.Int()) }},
	{"updated_at", func(m *models.Portfolio, v gjson.Result) { m.UpdatedAt = timestamp(v) }},
}

func PatchPortfolio(p *models.Portfolio, raw []byte) int { return patch(p, raw, portfolioFields) }

// RecordID returns the id column of a raw record, or "" when absent.
func RecordID(raw []byte) string {
	return gjson.GetBytes(raw, "id").String()
}

// Column returns a column of a raw record as a string. Numbers are rendered
// in their JSON form, so filters compare "42" to 42 equally.
func Column(raw []byte, column string) (string, bool) {
	v := gjson.GetBytes(raw, column)
	if !v.Exists() {
		return "", false
	}
	if v.Type == gjson.Null {
		return "null", true
	}
	if v.Type == gjson.Number {
		return v.Raw, true
	}
	return v.String(), true
}
