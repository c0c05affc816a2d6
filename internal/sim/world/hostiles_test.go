package world

import (
	"testing"

	"github.com/Jolva/SuperQuester-sub001/internal/sim/hunt"
)

func testInstance(t *testing.T, w *World, defID, id string) *hunt.QuestInstance {
	t.Helper()
	def, ok := w.catalogs.Encounters.ByID[defID]
	if !ok {
		t.Fatalf("catalog is missing %s", defID)
	}
	q := def.Instantiate(id)
	q.Active = true
	return q
}

func TestSpawnTagsEveryUnit(t *testing.T) {
	w := newTestWorld(t)
	loc := Vec3i{X: 100, Y: 31, Z: 100}
	paveGrass(w, loc.X, loc.Z, 10)

	q := testInstance(t, w, "HUSK_NEST", "q1")
	ids := w.spawnEncounterHostiles(q, loc)
	if len(ids) != q.TotalCount {
		t.Fatalf("spawned %d, want %d", len(ids), q.TotalCount)
	}
	sc := w.cfg.Encounter.ScatterRadius
	for _, id := range ids {
		h := w.hostiles[id]
		if h == nil {
			t.Fatalf("hostile %s not registered", id)
		}
		if !h.Encounter || h.QuestID != "q1" {
			t.Fatalf("hostile %s missing tag pair: encounter=%v quest=%q", id, h.Encounter, h.QuestID)
		}
		if dx := h.Pos.X - loc.X; dx < -sc || dx > sc {
			t.Fatalf("hostile %s scattered too far on x: %d", id, dx)
		}
		if dz := h.Pos.Z - loc.Z; dz < -sc || dz > sc {
			t.Fatalf("hostile %s scattered too far on z: %d", id, dz)
		}
	}
}

func TestSpawnAppliesNameOverride(t *testing.T) {
	w := newTestWorld(t)
	loc := Vec3i{X: 100, Y: 31, Z: 100}
	paveGrass(w, loc.X, loc.Z, 10)

	q := testInstance(t, w, "MARAUDER_CAMP", "q2")
	w.spawnEncounterHostiles(q, loc)

	overridden := 0
	for _, h := range w.queryHostilesByQuest("q2") {
		if h.Kind == "DIRE_WOLF" {
			if h.Name != "Camp Hound" {
				t.Fatalf("dire wolf name = %q, want override", h.Name)
			}
			overridden++
		}
	}
	if overridden == 0 {
		t.Fatalf("no overridden units spawned")
	}
}

func TestSpawnGrantsSunWardToBurningKinds(t *testing.T) {
	w := newTestWorld(t)
	loc := Vec3i{X: 100, Y: 31, Z: 100}
	paveGrass(w, loc.X, loc.Z, 10)

	q := testInstance(t, w, "HUSK_NEST", "q3")
	w.spawnEncounterHostiles(q, loc)

	for _, h := range w.queryHostilesByQuest("q3") {
		wantWard := w.kindBurnsInDaylight(h.Kind)
		if h.HasEffect(effectSunWard) != wantWard {
			t.Fatalf("kind %s: sun ward = %v, want %v", h.Kind, h.HasEffect(effectSunWard), wantWard)
		}
	}

	// Untagged debug spawns get no ward even for burning kinds.
	free := w.DebugSpawnHostile("HUSK", loc, "")
	if free == nil || free.HasEffect(effectSunWard) {
		t.Fatalf("free-roaming husk should not carry a ward")
	}
}

func TestSpawnSkipsUnknownKinds(t *testing.T) {
	w := newTestWorld(t)
	loc := Vec3i{X: 100, Y: 31, Z: 100}
	paveGrass(w, loc.X, loc.Z, 10)

	q := &hunt.QuestInstance{
		ID:   "q4",
		Kind: hunt.KindEncounter,
		Groups: []hunt.HostileGroup{
			{Kind: "NO_SUCH_KIND", Count: 3},
			{Kind: "HUSK", Count: 2},
		},
		TotalCount: 5,
		Active:     true,
	}
	ids := w.spawnEncounterHostiles(q, loc)
	if len(ids) != 2 {
		t.Fatalf("spawned %d, want the 2 known units", len(ids))
	}
}

func TestDespawnEncounterRemovesOnlyBoundUnits(t *testing.T) {
	w := newTestWorld(t)
	loc := Vec3i{X: 100, Y: 31, Z: 100}
	paveGrass(w, loc.X, loc.Z, 10)

	qa := testInstance(t, w, "HUSK_NEST", "qa")
	qb := testInstance(t, w, "HUSK_NEST", "qb")
	w.spawnEncounterHostiles(qa, loc)
	w.spawnEncounterHostiles(qb, loc)

	n := w.despawnEncounter("qa")
	if n != qa.TotalCount {
		t.Fatalf("despawned %d, want %d", n, qa.TotalCount)
	}
	if len(w.queryHostilesByQuest("qa")) != 0 {
		t.Fatalf("qa hostiles remain")
	}
	if len(w.queryHostilesByQuest("qb")) != qb.TotalCount {
		t.Fatalf("qb hostiles disturbed")
	}
	// Second despawn races with nothing; zero removed, no error.
	if n := w.despawnEncounter("qa"); n != 0 {
		t.Fatalf("second despawn removed %d", n)
	}
}

func TestRespawnDeficitWalksGroupsInOrder(t *testing.T) {
	w := newTestWorld(t)
	loc := Vec3i{X: 100, Y: 31, Z: 100}
	paveGrass(w, loc.X, loc.Z, 10)

	// HUSK_NEST is 4 HUSK then 2 BONE_ARCHER.
	q := testInstance(t, w, "HUSK_NEST", "q5")
	q.State = hunt.StateSpawned
	q.Kills = 3
	q.Spawn = &hunt.SpawnRecord{Location: hunt.Vec3{X: loc.X, Y: loc.Y, Z: loc.Z}}

	ids := w.respawnRemaining(q)
	if len(ids) != 3 {
		t.Fatalf("respawned %d, want remaining 3", len(ids))
	}
	kinds := map[string]int{}
	for _, id := range ids {
		kinds[w.hostiles[id].Kind]++
	}
	if kinds["HUSK"] != 3 || kinds["BONE_ARCHER"] != 0 {
		t.Fatalf("respawn did not walk groups in order: %v", kinds)
	}

	w.despawnEncounter("q5")
	ids = w.respawnMissing(q, 5)
	kinds = map[string]int{}
	for _, id := range ids {
		kinds[w.hostiles[id].Kind]++
	}
	if kinds["HUSK"] != 4 || kinds["BONE_ARCHER"] != 1 {
		t.Fatalf("explicit deficit walk wrong: %v", kinds)
	}
}

func TestRespawnWithoutRecordIsNoop(t *testing.T) {
	w := newTestWorld(t)
	q := testInstance(t, w, "HUSK_NEST", "q6")
	if ids := w.respawnRemaining(q); ids != nil {
		t.Fatalf("respawn without spawn record produced %d units", len(ids))
	}
}

func TestCleanupOrphanHostiles(t *testing.T) {
	w := newTestWorld(t)
	p := joinTestPlayer(t, w, "ana")
	loc := Vec3i{X: 100, Y: 31, Z: 100}
	paveGrass(w, loc.X, loc.Z, 10)

	// Live encounter owned by the connected player.
	q := testInstance(t, w, "HUSK_NEST", "live-q")
	q.State = hunt.StateSpawned
	p.Quest = q
	w.spawnEncounterHostiles(q, loc)

	// Orphans from an instance nobody owns, plus a free-roaming hostile.
	ghost := testInstance(t, w, "MARAUDER_CAMP", "ghost-q")
	w.spawnEncounterHostiles(ghost, loc)
	w.DebugSpawnHostile("HUSK", loc, "")

	removed := w.cleanupOrphanHostiles()
	if removed != ghost.TotalCount {
		t.Fatalf("removed %d, want %d orphans", removed, ghost.TotalCount)
	}
	if len(w.queryHostilesByQuest("live-q")) != q.TotalCount {
		t.Fatalf("live encounter swept")
	}
	if len(w.queryHostilesByQuest("ghost-q")) != 0 {
		t.Fatalf("ghost encounter survived")
	}
}
