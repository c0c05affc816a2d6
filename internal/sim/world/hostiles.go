package world

import (
	"fmt"

	"github.com/Jolva/SuperQuester-sub001/internal/sim/hunt"
)

// Hostile is one aggressive agent. The Encounter/QuestID tag pair is a
// property of the hostile itself, never of scheduler state: it is the sole
// mechanism for kill attribution, bulk despawn and orphan detection.
type Hostile struct {
	ID   string
	Kind string
	Name string

	Pos Vec3i
	HP  int

	// Encounter marks the hostile as encounter-spawned; QuestID binds it
	// to exactly one quest instance.
	Encounter bool
	QuestID   string

	// Effects are standing named effects, e.g. "SUN_WARD".
	Effects map[string]bool
}

func (h *Hostile) HasEffect(name string) bool { return h.Effects[name] }

func (w *World) newHostileID() string {
	return fmt.Sprintf("H%06d", w.nextHostileNum.Add(1))
}

// materializeHostile places one unit near base with a small planar offset so
// groups do not stack. Returns nil for unknown kinds.
func (w *World) materializeHostile(kind string, base Vec3i, questID string) *Hostile {
	def, ok := w.catalogs.Hostiles.ByID[kind]
	if !ok {
		return nil
	}
	sc := w.cfg.Encounter.ScatterRadius
	pos := base
	if sc > 0 {
		pos.X += w.rng.Intn(2*sc+1) - sc
		pos.Z += w.rng.Intn(2*sc+1) - sc
	}
	if gy, surf, ok := w.chunks.TopmostSurface(pos.X, pos.Z); ok && !disallowedSurface(surf) {
		pos.Y = gy + 1
	} else {
		pos.Y = base.Y
	}
	h := &Hostile{
		ID:        w.newHostileID(),
		Kind:      def.ID,
		Name:      def.Name,
		Pos:       pos,
		HP:        def.MaxHP,
		Encounter: questID != "",
		QuestID:   questID,
		Effects:   map[string]bool{},
	}
	if questID != "" && def.BurnsInDaylight {
		// Proactive grant. The reactive damage guard is a backstop; the
		// ward holds even if that guard is never installed.
		h.Effects[effectSunWard] = true
	}
	w.hostiles[h.ID] = h
	return h
}

// spawnEncounterHostiles materializes the instance's groups around loc.
// Per-unit failures are logged and skipped; the surviving subset is returned
// and later reconciled by the top-up check, not retried here.
func (w *World) spawnEncounterHostiles(q *hunt.QuestInstance, loc Vec3i) []string {
	var ids []string
	for _, g := range q.Groups {
		for i := 0; i < g.Count; i++ {
			h := w.materializeHostile(g.Kind, loc, q.ID)
			if h == nil {
				w.logf("spawn: unknown hostile kind %q for quest %s, skipping", g.Kind, q.ID)
				continue
			}
			if g.NameOverride != "" {
				h.Name = g.NameOverride
			}
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// despawnEncounter removes every hostile bound to the instance. Hostiles
// already gone (raced with a kill) are simply not counted.
func (w *World) despawnEncounter(questID string) int {
	n := 0
	for id, h := range w.hostiles {
		if h.Encounter && h.QuestID == questID {
			delete(w.hostiles, id)
			n++
		}
	}
	return n
}

func (w *World) queryHostilesByQuest(questID string) []*Hostile {
	var out []*Hostile
	for _, h := range w.hostiles {
		if h.Encounter && h.QuestID == questID {
			out = append(out, h)
		}
	}
	return out
}

// respawnDeficit spawns exactly deficit units at the recorded spawn location,
// walking the group list in order. Used by reconnect (deficit from kill
// progress) and by the consistency top-up (explicit count).
func (w *World) respawnDeficit(q *hunt.QuestInstance, deficit int) []string {
	if q.Spawn == nil || deficit <= 0 {
		return nil
	}
	loc := Vec3i{X: q.Spawn.Location.X, Y: q.Spawn.Location.Y, Z: q.Spawn.Location.Z}
	w.chunks.EnsureLoaded(loc.X, loc.Z)
	var ids []string
	for _, g := range q.Groups {
		for i := 0; i < g.Count && deficit > 0; i++ {
			h := w.materializeHostile(g.Kind, loc, q.ID)
			if h == nil {
				w.logf("respawn: unknown hostile kind %q for quest %s, skipping", g.Kind, q.ID)
				continue
			}
			if g.NameOverride != "" {
				h.Name = g.NameOverride
			}
			ids = append(ids, h.ID)
			deficit--
		}
		if deficit <= 0 {
			break
		}
	}
	return ids
}

func (w *World) respawnRemaining(q *hunt.QuestInstance) []string {
	return w.respawnDeficit(q, q.Remaining())
}

func (w *World) respawnMissing(q *hunt.QuestInstance, missing int) []string {
	return w.respawnDeficit(q, missing)
}

// cleanupOrphanHostiles removes encounter hostiles whose instance id no
// longer maps to a SPAWNED quest of a connected player. Recovers from a
// crash that skipped the normal despawn path.
func (w *World) cleanupOrphanHostiles() int {
	active := map[string]bool{}
	for id, p := range w.players {
		if w.clients[id] == nil {
			continue
		}
		q := p.Quest
		if q.IsEncounter() && q.Active && q.State == hunt.StateSpawned {
			active[q.ID] = true
		}
	}
	n := 0
	for id, h := range w.hostiles {
		if !h.Encounter {
			continue
		}
		if h.QuestID == "" || !active[h.QuestID] {
			delete(w.hostiles, id)
			n++
		}
	}
	if n > 0 {
		w.logf("orphan sweep removed %d encounter hostiles", n)
	}
	return n
}
