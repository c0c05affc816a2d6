package world

import "github.com/Jolva/SuperQuester-sub001/internal/sim/hunt"

// ---- Debug/Test Helpers ----
//
// These helpers let black-box tests in sibling packages (internal/sim/worldtest)
// set up deterministic preconditions without reaching into world internals.
//
// They are NOT safe to call concurrently with Run(). Use them only in tests
// that drive the world via StepOnce(), from a single goroutine.

func (w *World) DebugSetPlayerPos(playerID string, pos Vec3i) bool {
	p := w.players[playerID]
	if p == nil {
		return false
	}
	p.Pos = pos
	return true
}

func (w *World) DebugPlayerQuest(playerID string) *hunt.QuestInstance {
	p := w.players[playerID]
	if p == nil {
		return nil
	}
	return p.Quest
}

func (w *World) DebugPlayerOffers(playerID string) map[string]*hunt.QuestInstance {
	p := w.players[playerID]
	if p == nil {
		return nil
	}
	return p.Offers
}

func (w *World) DebugPlayerInventory(playerID string) map[string]int {
	p := w.players[playerID]
	if p == nil {
		return nil
	}
	return p.Inventory
}

func (w *World) DebugHostilesByQuest(questID string) []*Hostile {
	return w.queryHostilesByQuest(questID)
}

func (w *World) DebugHostileCount() int { return len(w.hostiles) }

// DebugKillHostile applies lethal damage with the given cause, exercising
// the full damage pipeline including the fire guard.
func (w *World) DebugKillHostile(hostileID string, cause DamageCause, attackerID string) bool {
	h := w.hostiles[hostileID]
	if h == nil {
		return false
	}
	return w.damageHostile(h, cause, h.HP, attackerID)
}

// DebugSpawnHostile materializes one untagged (or tagged) hostile directly.
func (w *World) DebugSpawnHostile(kind string, pos Vec3i, questID string) *Hostile {
	h := w.materializeHostile(kind, pos, questID)
	if h != nil {
		h.Pos = pos
	}
	return h
}

// DebugSetColumn overrides a terrain column, loading its chunk.
func (w *World) DebugSetColumn(x, z, height int, surface uint16, waterTop int) {
	w.chunks.SetColumn(x, z, column{Height: height, Surface: surface, WaterTop: waterTop})
}

// DebugSetBlock layers a per-cell override on top of the heightmap.
func (w *World) DebugSetBlock(pos Vec3i, b uint16) { w.chunks.SetBlock(pos, b) }

func (w *World) DebugChunkLoaded(x, z int) bool { return w.chunks.Loaded(x, z) }

func (w *World) DebugPendingSpawn(playerID string) (pendingSpawn, bool) {
	ps, ok := w.pendingSpawns[playerID]
	return ps, ok
}
