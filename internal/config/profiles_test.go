package config

import (
	"path/filepath"
	"testing"
)

func TestProfileManagerLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	pm := NewProfileManager(path)

	if err := pm.Load(); err != nil {
		t.Fatalf("loading absent file should succeed: %v", err)
	}
	if len(pm.GetProfiles()) != 0 {
		t.Fatal("expected empty profile set")
	}

	profile := Profile{
		Name:       "night",
		Effect:     "static_color",
		Color:      "#112233",
		Brightness: 30,
	}
	if err := pm.AddProfile(profile); err != nil {
		t.Fatalf("adding profile: %v", err)
	}

	got, ok := pm.GetProfile("night")
	if !ok {
		t.Fatal("profile not found after add")
	}
	if got.Effect != "static_color" || got.Color != "#112233" || got.Brightness != 30 {
		t.Errorf("unexpected profile: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set on add")
	}

	// A fresh manager must see the persisted profile.
	pm2 := NewProfileManager(path)
	if err := pm2.Load(); err != nil {
		t.Fatalf("reloading: %v", err)
	}
	reloaded, ok := pm2.GetProfile("night")
	if !ok {
		t.Fatal("profile lost across reload")
	}
	if reloaded.Color != "#112233" {
		t.Errorf("expected #112233, got %q", reloaded.Color)
	}

	if err := pm2.RemoveProfile("night"); err != nil {
		t.Fatalf("removing: %v", err)
	}
	if _, ok := pm2.GetProfile("night"); ok {
		t.Error("profile still present after remove")
	}
}

func TestProfileManagerValidation(t *testing.T) {
	pm := NewProfileManager(filepath.Join(t.TempDir(), "profiles.toml"))

	if err := pm.AddProfile(Profile{Effect: "breathing"}); err == nil {
		t.Error("empty name must be rejected")
	}
	if err := pm.AddProfile(Profile{Name: "x"}); err == nil {
		t.Error("empty effect must be rejected")
	}
	if err := pm.RemoveProfile("ghost"); err == nil {
		t.Error("removing unknown profile must fail")
	}
}

func TestProfileManagerUpdate(t *testing.T) {
	pm := NewProfileManager(filepath.Join(t.TempDir(), "profiles.toml"))

	if err := pm.AddProfile(Profile{Name: "work", Effect: "wave", Speed: 3}); err != nil {
		t.Fatal(err)
	}
	created, _ := pm.GetProfile("work")

	if err := pm.UpdateProfile("work", Profile{Speed: 9}); err != nil {
		t.Fatalf("updating: %v", err)
	}

	updated, _ := pm.GetProfile("work")
	if updated.Speed != 9 {
		t.Errorf("expected speed 9, got %d", updated.Speed)
	}
	// Effect carries over when the update leaves it empty; creation
	// time is preserved.
	if updated.Effect != "wave" {
		t.Errorf("effect lost on update: %q", updated.Effect)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("creation time changed on update")
	}

	if err := pm.UpdateProfile("ghost", Profile{}); err == nil {
		t.Error("updating unknown profile must fail")
	}
}

func TestProfileManagerZoneColors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	pm := NewProfileManager(path)

	zones := []string{"#FF0000", "#00FF00", "#0000FF", "#FFFF00"}
	if err := pm.AddProfile(Profile{Name: "zones", Effect: "static_zones", ZoneColors: zones}); err != nil {
		t.Fatal(err)
	}

	pm2 := NewProfileManager(path)
	if err := pm2.Load(); err != nil {
		t.Fatal(err)
	}
	got, _ := pm2.GetProfile("zones")
	if len(got.ZoneColors) != len(zones) {
		t.Fatalf("expected %d zone colors, got %d", len(zones), len(got.ZoneColors))
	}
	for i, z := range zones {
		if got.ZoneColors[i] != z {
			t.Errorf("zone %d: expected %s, got %s", i, z, got.ZoneColors[i])
		}
	}
}
