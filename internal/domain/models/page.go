package models

import "agora/internal/config"

// Page is an offset pagination window.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ApplyDefaults clamps the window into the allowed range.
func (p *Page) ApplyDefaults() {
	if p.Limit <= 0 {
		p.Limit = config.DefaultPageSize
	}
	if p.Limit > config.MaxPageSize {
		p.Limit = config.MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}
