// Package badges renders earned badge codes with their catalogue entries.
package badges

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"agora/internal/domain/models"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Tier orders badges for display
type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

func (t Tier) rank() int {
	switch t {
	case TierGold:
		return 0
	case TierSilver:
		return 1
	default:
		return 2
	}
}

// Definition is one catalogue entry
type Definition struct {
	Code        string `yaml:"-" json:"code"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
	Tier        Tier   `yaml:"tier" json:"tier"`
}

type catalogue struct {
	Badges map[string]Definition `yaml:"badges"`
}

// Registry holds the badge catalogue
type Registry struct {
	defs map[string]Definition
	mu   sync.RWMutex
}

// NewRegistry creates a badge registry from the embedded catalogue
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/badges.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read badge catalogue: %w", err)
	}
	return parseRegistry(data)
}

func parseRegistry(data []byte) (*Registry, error) {
	var c catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal badge catalogue: %w", err)
	}

	r := &Registry{defs: make(map[string]Definition, len(c.Badges))}
	for code, def := range c.Badges {
		if def.Name == "" {
			return nil, fmt.Errorf("badge %s: missing name", code)
		}
		switch def.Tier {
		case TierBronze, TierSilver, TierGold:
		default:
			return nil, fmt.Errorf("badge %s: unknown tier %q", code, def.Tier)
		}
		def.Code = code
		r.defs[code] = def
	}
	return r, nil
}

// Get returns the definition of code
func (r *Registry) Get(code string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[code]
	return def, ok
}

// Codes returns every catalogue code, sorted
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.defs))
	for code := range r.defs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Decorate joins earned codes with the catalogue. Unknown codes are skipped.
// The result is ordered by tier (gold first), then by earned time.
func (r *Registry) Decorate(earned []models.EarnedBadge) []models.Badge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Badge, 0, len(earned))
	for _, e := range earned {
		def, ok := r.defs[e.Code]
		if !ok {
			continue
		}
		out = append(out, models.Badge{
			Code:        e.Code,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Tier:        string(def.Tier),
			EarnedAt:    e.EarnedAt,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := Tier(out[i].Tier).rank(), Tier(out[j].Tier).rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].EarnedAt.Before(out[j].EarnedAt)
	})
	return out
}
