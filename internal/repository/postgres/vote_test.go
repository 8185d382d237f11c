package postgres

import "testing"

func TestTallyDelta(t *testing.T) {
	tests := []struct {
		name             string
		previous, next   int
		wantUp, wantDown int
	}{
		{"new upvote", 0, 1, 1, 0},
		{"new downvote", 0, -1, 0, 1},
		{"clear upvote", 1, 0, -1, 0},
		{"clear downvote", -1, 0, 0, -1},
		{"flip up to down", 1, -1, -1, 1},
		{"flip down to up", -1, 1, 1, -1},
		{"repeat upvote", 1, 1, 0, 0},
		{"repeat clear", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, down := tallyDelta(tt.previous, tt.next)
			if up != tt.wantUp || down != tt.wantDown {
				t.Errorf("tallyDelta(%d, %d) = (%d, %d), want (%d, %d)",
					tt.previous, tt.next, up, down, tt.wantUp, tt.wantDown)
			}
		})
	}
}

func TestTableNames(t *testing.T) {
	tables := NewTableNames("test_")

	if tables.Posts != "test_posts" {
		t.Errorf("Posts = %q, want test_posts", tables.Posts)
	}
	if got := tables.Unprefixed("test_portfolio_media"); got != "portfolio_media" {
		t.Errorf("Unprefixed() = %q, want portfolio_media", got)
	}
	if got := tables.Func("calculate_user_badges"); got != "test_calculate_user_badges" {
		t.Errorf("Func() = %q", got)
	}

	seen := map[string]bool{}
	for _, name := range tables.All() {
		if seen[name] {
			t.Errorf("duplicate table %s", name)
		}
		seen[name] = true
	}
	if len(seen) != 13 {
		t.Errorf("All() returned %d tables, want 13", len(seen))
	}
}
