package entities

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"bus", CategoryBus},
		{"auto", CategoryAuto},
		{"cab", CategoryCab},
		{"Bus", CategoryUnknown},
		{"ferry", CategoryUnknown},
		{"", CategoryUnknown},
	}
	for _, tt := range tests {
		if got := ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if CategoryUnknown.Known() {
		t.Error("CategoryUnknown must not be Known")
	}
}

func TestParseSortKey(t *testing.T) {
	if ParseSortKey("next_available") != SortByNextArrival {
		t.Error("Expected next_available alias")
	}
	if !ParseSortKey("").Known() || !ParseSortKey("price").Known() {
		t.Error("Expected empty and price to be known")
	}
	if ParseSortKey("rating").Known() {
		t.Error("Expected rating to be unknown")
	}
}

func TestQueryCriteriaBuildersDoNotShareState(t *testing.T) {
	base := QueryCriteria{}.WithMaxPrice(30)
	narrowed := base.WithCategory(CategoryBus).WithProximity(NewLocation(1, 2), 3)

	if base.Category != nil || base.Origin != nil {
		t.Error("Builder mutated the receiver")
	}
	if *narrowed.MaxPrice != 30 || *narrowed.RadiusKm != 3 || narrowed.Origin.Longitude != 2 {
		t.Errorf("Unexpected criteria %+v", narrowed)
	}
}

func TestVehicleCloneAndMove(t *testing.T) {
	v := Vehicle{ID: "1", Stands: []string{"A", "B"}}
	c := v.Clone()
	c.Stands[0] = "Z"
	if v.Stands[0] != "A" {
		t.Error("Clone shares the Stands backing array")
	}

	before := time.Now()
	v.MoveTo(NewLocation(12.9, 77.6))
	if v.Position.Latitude != 12.9 || v.UpdatedAt.Before(before) {
		t.Errorf("MoveTo did not update position and timestamp: %+v", v)
	}
}

func TestVehicleJSONUsesTableNames(t *testing.T) {
	b, err := json.Marshal(Vehicle{ID: "1", Category: CategoryCab, NextAvailable: "8 mins", Position: NewLocation(1, 2)})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	json.Unmarshal(b, &m)
	for _, key := range []string{"id", "type", "current_location", "next_available", "stands", "price", "duration"} {
		if _, ok := m[key]; !ok {
			t.Errorf("Expected key %q in %s", key, b)
		}
	}
}

func TestSessionExpiry(t *testing.T) {
	user := NewUser("u1", "a@b.com", nil)
	s := NewSession("tok", user, SessionPurposeAuth, time.Hour)
	if s.Expired(time.Now()) {
		t.Error("Fresh session reported expired")
	}
	if !s.Expired(s.ExpiresAt) {
		t.Error("Session must be expired at ExpiresAt")
	}
	if s.UserID != "u1" || s.Email != "a@b.com" {
		t.Errorf("Session not bound to user: %+v", s)
	}
}

func TestPreferencesApply(t *testing.T) {
	p := DefaultPreferences("u1")
	off := false
	on := true
	p.Apply(PreferencesPatch{Notifications: &off, PriceAlerts: &on})

	if p.Notifications || !p.PriceAlerts || !p.LocationServices || !p.RealTimeUpdates {
		t.Errorf("Unexpected preferences after patch: %+v", p)
	}
}
