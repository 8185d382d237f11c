package models

import "time"

// EarnedBadge is a row returned by calculate_user_badges.
type EarnedBadge struct {
	Code     string    `json:"code"`
	EarnedAt time.Time `json:"earnedAt"`
}

// Badge is an earned badge decorated with its catalogue entry.
type Badge struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Tier        string    `json:"tier"`
	EarnedAt    time.Time `json:"earnedAt"`
}
