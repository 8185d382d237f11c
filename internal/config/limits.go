package config

const (
	// MaxPostTitleLength is the maximum length for forum post titles.
	MaxPostTitleLength = 200

	// MaxPostBodyLength bounds post bodies. Long-form writing belongs in portfolios.
	MaxPostBodyLength = 40000

	// MaxCommentBodyLength is the maximum length for a single comment.
	MaxCommentBodyLength = 10000

	// MaxNameLength is shared by category, provider type, provider and portfolio names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxNameLength = 255

	// MaxUsernameLength is the maximum length for profile usernames.
	MaxUsernameLength = 40

	// MaxBioLength is the maximum length for profile and provider bios.
	MaxBioLength = 2000

	// MaxUploadBytes caps avatar and portfolio media uploads (10MB).
	MaxUploadBytes = 10 << 20

	// DefaultPageSize and MaxPageSize bound offset pagination.
	DefaultPageSize = 20
	MaxPageSize     = 100
)
