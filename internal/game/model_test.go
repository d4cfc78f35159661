package game

import (
	"encoding/json"
	"testing"
)

func TestBuiltInScenarios_Valid(t *testing.T) {
	scenarios := BuiltInScenarios()
	if len(scenarios) != 3 {
		t.Fatalf("Expected 3 scenarios, got %d", len(scenarios))
	}
	seen := map[string]bool{}
	for _, s := range scenarios {
		if err := s.Validate(); err != nil {
			t.Errorf("Scenario %q invalid: %v", s.Name, err)
		}
		if seen[s.Name] {
			t.Errorf("Duplicate scenario %q", s.Name)
		}
		seen[s.Name] = true
	}
}

func TestCatalog_ExtrasAndLookup(t *testing.T) {
	extra := BuiltInScenarios()[0]
	extra.Name = "Salt Flats"
	extra.GridSize = 3

	c, err := NewCatalog(extra)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	if len(c.All()) != 4 {
		t.Errorf("Expected 4 scenarios, got %d", len(c.All()))
	}
	if s, ok := c.Get("salt flats"); !ok || s.GridSize != 3 {
		t.Errorf("Expected case-insensitive lookup, got %+v %v", s, ok)
	}
	if s := c.Resolve("Atlantis"); s.Name != "Frontier Boom" {
		t.Errorf("Expected unknown scenario to resolve to default, got %q", s.Name)
	}

	bad := extra
	bad.PriceMax = 1
	if _, err := NewCatalog(bad); err == nil {
		t.Error("Expected invalid scenario to be rejected")
	}
}

func TestCatalog_ExtraReplacesBuiltIn(t *testing.T) {
	override := BuiltInScenarios()[1]
	override.MaxDays = 10

	c, err := NewCatalog(override)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := c.Get("Desert Wildcat"); s.MaxDays != 10 || len(c.All()) != 3 {
		t.Errorf("Expected override in place, got %+v (%d scenarios)", s, len(c.All()))
	}
}

func TestBuyer_PriceFor(t *testing.T) {
	tests := []struct {
		multiplier float64
		reputation int
		market     int
		want       int
	}{
		{1.1, 0, 100, 110},
		{1.1, 5, 100, 121},
		{1.05, 2, 80, 87},
		{0.98, 0, 1, 1},
	}
	for _, tt := range tests {
		b := &Buyer{Multiplier: tt.multiplier, Reputation: tt.reputation}
		if got := b.PriceFor(tt.market); got != tt.want {
			t.Errorf("PriceFor(mult=%v rep=%d market=%d) = %d, want %d", tt.multiplier, tt.reputation, tt.market, got, tt.want)
		}
	}
}

func TestTransportHub_Bonuses(t *testing.T) {
	h := TransportHub{Level: 2}
	if got := h.DeliveryBonus().String(); got != "0.1" {
		t.Errorf("DeliveryBonus = %s, want 0.1", got)
	}
	if got := h.MaintenanceDiscount().String(); got != "0.06" {
		t.Errorf("MaintenanceDiscount = %s, want 0.06", got)
	}
}

func TestContract_Remaining(t *testing.T) {
	c := &Contract{Volume: 50, Delivered: 60}
	if c.Remaining() != 0 {
		t.Errorf("Expected remaining clamped to 0, got %d", c.Remaining())
	}
}

func TestOwner_JSONRoundTrip(t *testing.T) {
	for _, o := range []Owner{NoOwner, PlayerOwner(), RivalOwner(0), RivalOwner(2)} {
		data, err := json.Marshal(o)
		if err != nil {
			t.Fatalf("Marshal %v: %v", o, err)
		}
		var back Owner
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal %s: %v", data, err)
		}
		if back != o {
			t.Errorf("Round trip of %v produced %v", o, back)
		}
	}
}

func TestOwner_UnknownKindRejected(t *testing.T) {
	var o Owner
	if err := json.Unmarshal([]byte(`{"kind":"bank"}`), &o); err == nil {
		t.Error("Expected error for unknown owner kind")
	}
}

func TestSampleIndexes_Distinct(t *testing.T) {
	r := seededRNG(1, "test")
	for i := 0; i < 50; i++ {
		picked := sampleIndexes(r, 5, 3)
		seen := map[int]bool{}
		for _, p := range picked {
			if p < 0 || p >= 5 || seen[p] {
				t.Fatalf("Bad sample %v", picked)
			}
			seen[p] = true
		}
	}
	if got := sampleIndexes(r, 2, 3); len(got) != 2 {
		t.Errorf("Expected sample capped at population, got %v", got)
	}
}
