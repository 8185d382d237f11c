package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/internal/domain"
	"agora/internal/domain/models"
)

func TestBanUser(t *testing.T) {
	tests := []struct {
		name    string
		hours   int
		wantErr error
	}{
		{name: "one day", hours: 24},
		{name: "one year", hours: maxBanHours},
		{name: "zero", hours: 0, wantErr: domain.ErrValidation},
		{name: "negative", hours: -3, wantErr: domain.ErrValidation},
		{name: "over a year", hours: maxBanHours + 1, wantErr: domain.ErrValidation},
	}

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := &fakeProfiles{profiles: map[string]*models.Profile{"u1": {ID: "u1"}}}
			users := &fakeUsers{banned: map[string]time.Duration{}}
			svc := NewAdminService(nil, profiles, users, discard()).(*adminService)
			svc.now = func() time.Time { return now }

			p, err := svc.BanUser(context.Background(), "u1", tt.hours)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				if len(users.banned) != 0 {
					t.Errorf("auth ban issued for invalid hours")
				}
				return
			}
			if err != nil {
				t.Fatalf("BanUser: %v", err)
			}
			want := now.Add(time.Duration(tt.hours) * time.Hour)
			if p.BannedUntil == nil || !p.BannedUntil.Equal(want) {
				t.Errorf("BannedUntil = %v, want %v", p.BannedUntil, want)
			}
			if users.banned["u1"] != time.Duration(tt.hours)*time.Hour {
				t.Errorf("auth ban = %v", users.banned["u1"])
			}
			if !profiles.profiles["u1"].IsBanned(now) {
				t.Errorf("stored profile not banned")
			}
		})
	}
}

func TestBanUser_AuthFailureLeavesProfile(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*models.Profile{"u1": {ID: "u1"}}}
	users := &fakeUsers{banned: map[string]time.Duration{}, err: errors.New("auth down")}
	svc := NewAdminService(nil, profiles, users, discard())

	if _, err := svc.BanUser(context.Background(), "u1", 1); err == nil {
		t.Fatalf("expected error")
	}
	if profiles.profiles["u1"].BannedUntil != nil {
		t.Errorf("profile banned although the auth ban failed")
	}
}

func TestUnbanUser(t *testing.T) {
	until := time.Now().Add(time.Hour)
	profiles := &fakeProfiles{profiles: map[string]*models.Profile{"u1": {ID: "u1", BannedUntil: &until}}}
	users := &fakeUsers{banned: map[string]time.Duration{"u1": time.Hour}}
	svc := NewAdminService(nil, profiles, users, discard())

	p, err := svc.UnbanUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("UnbanUser: %v", err)
	}
	if p.BannedUntil != nil || profiles.profiles["u1"].BannedUntil != nil {
		t.Errorf("profile still banned")
	}
	if _, ok := users.banned["u1"]; ok {
		t.Errorf("auth ban not lifted")
	}

	if _, err := svc.UnbanUser(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
