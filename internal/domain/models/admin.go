package models

// AdminStats is the dashboard summary of the admin panel.
type AdminStats struct {
	Users       int `json:"users"`
	BannedUsers int `json:"bannedUsers"`
	Posts       int `json:"posts"`
	Comments    int `json:"comments"`
	Providers   int `json:"providers"`
	Portfolios  int `json:"portfolios"`
}
