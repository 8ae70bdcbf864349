package config

import "testing"

func TestApplyTrackerDefaults(t *testing.T) {
	Tracker = TrackerConfig{}
	Economy = EconomyConfig{}
	applyTrackerDefaults()

	if Tracker.PollIntervalSeconds != 90 {
		t.Errorf("expected poll interval 90, got %d", Tracker.PollIntervalSeconds)
	}
	if Tracker.GroupWaitSeconds != 30 {
		t.Errorf("expected group wait 30, got %d", Tracker.GroupWaitSeconds)
	}
	if Tracker.BetWindowSeconds != 300 {
		t.Errorf("expected bet window 300, got %d", Tracker.BetWindowSeconds)
	}
	if len(Tracker.AllowedModes) != 1 || Tracker.AllowedModes[0] != "Competitive" {
		t.Errorf("expected Competitive-only default, got %v", Tracker.AllowedModes)
	}
	if Tracker.DefaultRegion != "na" {
		t.Errorf("expected default region na, got %s", Tracker.DefaultRegion)
	}
	if Economy.MinWager != 10 {
		t.Errorf("expected min wager 10, got %d", Economy.MinWager)
	}
}

func TestApplyTrackerDefaultsKeepsExplicitValues(t *testing.T) {
	Tracker = TrackerConfig{
		PollIntervalSeconds: 45,
		GroupWaitSeconds:    10,
		BetWindowSeconds:    120,
		AllowedModes:        []string{"Competitive", "Unrated"},
		DefaultRegion:       "eu",
	}
	Economy = EconomyConfig{MinWager: 25}
	applyTrackerDefaults()

	if Tracker.PollIntervalSeconds != 45 || Tracker.GroupWaitSeconds != 10 {
		t.Error("explicit durations should not be overwritten")
	}
	if len(Tracker.AllowedModes) != 2 || Tracker.DefaultRegion != "eu" {
		t.Error("explicit mode list and region should not be overwritten")
	}
	if Economy.MinWager != 25 {
		t.Error("explicit min wager should not be overwritten")
	}
}

func TestIsModeAllowed(t *testing.T) {
	cfg := TrackerConfig{AllowedModes: []string{"Competitive"}}

	if !cfg.IsModeAllowed("Competitive") {
		t.Error("expected Competitive to be allowed")
	}
	if !cfg.IsModeAllowed("competitive") {
		t.Error("mode check should be case-insensitive")
	}
	if cfg.IsModeAllowed("Deathmatch") {
		t.Error("Deathmatch should not be allowed")
	}
}

func TestIsChannelAllowed(t *testing.T) {
	open := GeneralConfig{}
	if !open.IsChannelAllowed("123") {
		t.Error("empty list should allow every channel")
	}

	restricted := GeneralConfig{AllowedChannels: []string{"111", "222"}}
	if !restricted.IsChannelAllowed("222") {
		t.Error("expected 222 to be allowed")
	}
	if restricted.IsChannelAllowed("333") {
		t.Error("expected 333 to be blocked")
	}
}
