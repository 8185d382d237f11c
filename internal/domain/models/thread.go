package models

// CommentThread is the assembled comment tree of a post.
type CommentThread struct {
	PostID   string     `json:"postId"`
	Total    int        `json:"total"`
	Comments []*Comment `json:"comments"`
}

// ProviderPage is one page of directory results. Total is exact for text
// searches and the page length otherwise.
type ProviderPage struct {
	Providers []Provider `json:"providers"`
	Total     int        `json:"total"`
}

// UserPage is one page of the admin user list.
type UserPage struct {
	Users []Profile `json:"users"`
	Total int       `json:"total"`
}
