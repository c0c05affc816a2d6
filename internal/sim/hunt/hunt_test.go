package hunt

import "testing"

func TestTotalCount(t *testing.T) {
	d := EncounterDef{Groups: []HostileGroup{{Kind: "HUSK", Count: 4}, {Kind: "REVENANT", Count: 2}}}
	if got := d.TotalCount(); got != 6 {
		t.Fatalf("TotalCount=%d, want 6", got)
	}
}

func TestInstantiateDeepCopiesGroups(t *testing.T) {
	d := EncounterDef{ID: "E1", Name: "Camp", Tier: 1, Groups: []HostileGroup{{Kind: "HUSK", Count: 3}}}
	q := d.Instantiate("Q1")
	q.Groups[0].Count = 99
	if d.Groups[0].Count != 3 {
		t.Fatalf("template mutated through instance: %d", d.Groups[0].Count)
	}
	if q.TotalCount != 3 {
		t.Fatalf("TotalCount=%d, want 3", q.TotalCount)
	}
	if q.State != StatePending {
		t.Fatalf("State=%q, want PENDING", q.State)
	}
}

func TestCloneIsDeep(t *testing.T) {
	q := &QuestInstance{
		ID:     "Q1",
		Kind:   KindEncounter,
		Groups: []HostileGroup{{Kind: "HUSK", Count: 2}},
		Zone:   &Zone{CenterX: 10, CenterZ: -4, TriggerRadius: 30, Tier: 1},
		Spawn:  &SpawnRecord{Location: Vec3{X: 1, Y: 2, Z: 3}, Hostiles: []string{"H1"}},
	}
	cp := q.Clone()
	cp.Groups[0].Count = 7
	cp.Zone.CenterX = 0
	cp.Spawn.Hostiles[0] = "H9"
	if q.Groups[0].Count != 2 || q.Zone.CenterX != 10 || q.Spawn.Hostiles[0] != "H1" {
		t.Fatalf("clone shares state with original: %+v", q)
	}
}

func TestResetForPoolRetainsZone(t *testing.T) {
	q := &QuestInstance{
		Kind:       KindEncounter,
		Active:     true,
		Kills:      4,
		TotalCount: 6,
		State:      StateSpawned,
		Zone:       &Zone{CenterX: 77, CenterZ: -12, TriggerRadius: 30, Tier: 2},
		Spawn:      &SpawnRecord{Location: Vec3{X: 70, Y: 12, Z: -9}},
	}
	q.ResetForPool()
	if q.State != StatePending || q.Kills != 0 || q.Spawn != nil || q.Active {
		t.Fatalf("reset incomplete: %+v", q)
	}
	if q.Zone == nil || q.Zone.CenterX != 77 || q.Zone.CenterZ != -12 {
		t.Fatalf("zone lost on reset: %+v", q.Zone)
	}
}

func TestRemainingClamps(t *testing.T) {
	q := &QuestInstance{TotalCount: 6, Kills: 6}
	if q.Remaining() != 0 {
		t.Fatalf("Remaining=%d, want 0", q.Remaining())
	}
	q.Kills = 8
	if q.Remaining() != 0 {
		t.Fatalf("Remaining=%d, want 0 when over-counted", q.Remaining())
	}
}
