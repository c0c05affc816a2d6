package world

import (
	"fmt"

	"github.com/Jolva/SuperQuester-sub001/internal/protocol"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/hunt"
)

// systemEncounters advances each connected player's encounter quest through
// PENDING -> SPAWNED -> COMPLETE and renders the navigation cue and beacons.
// Rendering is a pure read of quest state; only the trigger check and the
// deferred spawn continuation mutate anything.
func (w *World) systemEncounters(nowTick uint64) {
	w.runPendingSpawns(nowTick)

	every := uint64(w.cfg.Encounter.MonitorEveryTicks)
	if every == 0 {
		every = 1
	}
	if nowTick%every != 0 {
		return
	}

	for id, p := range w.players {
		p.cue = ""
		p.beacons = p.beacons[:0]
		if w.clients[id] == nil {
			continue
		}
		q := p.Quest
		if !q.IsEncounter() || !q.Active {
			continue
		}

		var target Vec3i
		switch q.State {
		case hunt.StatePending:
			target = Vec3i{X: q.Zone.CenterX, Z: q.Zone.CenterZ}
			d := distXZ(p.Pos, target)
			p.cue = fmt.Sprintf("%s — %dm %s %s", q.Title, int(d), compassLabel(p.Pos, target), bearing16(p.Pos, float64(p.Yaw), target))
			if d <= float64(q.Zone.TriggerRadius) {
				w.beginSpawnSequence(p, q, nowTick)
			}
		case hunt.StateSpawned:
			target = Vec3i{X: q.Spawn.Location.X, Y: q.Spawn.Location.Y, Z: q.Spawn.Location.Z}
			d := distXZ(p.Pos, target)
			p.cue = fmt.Sprintf("%s — kills %d/%d — %dm %s %s", q.Title, q.Kills, q.TotalCount, int(d), compassLabel(p.Pos, target), bearing16(p.Pos, float64(p.Yaw), target))
		case hunt.StateComplete:
			target = w.cfg.Anchor
			d := distXZ(p.Pos, target)
			p.cue = fmt.Sprintf("%s — complete, return to turn in — %dm %s %s", q.Title, int(d), compassLabel(p.Pos, target), bearing16(p.Pos, float64(p.Yaw), target))
		default:
			continue
		}

		w.renderBeacons(p, target, nowTick)
	}
}

// renderBeacons gates the marker on distance and pulses it on a slower
// cadence than the tick loop to bound cost.
func (w *World) renderBeacons(p *Player, target Vec3i, nowTick uint64) {
	d := distXZ(p.Pos, target)
	enc := w.cfg.Encounter
	switch {
	case d <= float64(enc.BeaconNear):
		if enc.NearPulseTicks > 0 && nowTick%uint64(enc.NearPulseTicks) == 0 {
			p.beacons = append(p.beacons, protocol.Beacon{Pos: target.ToArray(), Intensity: "NEAR"})
		}
	case d <= float64(enc.BeaconFar):
		if enc.FarPulseTicks > 0 && nowTick%uint64(enc.FarPulseTicks) == 0 {
			p.beacons = append(p.beacons, protocol.Beacon{Pos: target.ToArray(), Intensity: "FAR"})
		}
	}
}

// beginSpawnSequence schedules the deferred spawn continuation. The map
// entry is the in-flight guard: while present, repeated trigger hits are
// no-ops.
func (w *World) beginSpawnSequence(p *Player, q *hunt.QuestInstance, nowTick uint64) {
	if _, inflight := w.pendingSpawns[p.ID]; inflight {
		return
	}
	w.pendingSpawns[p.ID] = pendingSpawn{
		QuestID: q.ID,
		DueTick: nowTick + uint64(w.cfg.Encounter.SpawnDelayTicks),
	}
	p.AddEvent(protocol.Event{
		"type":     "ENCOUNTER_ALERT",
		"tick":     nowTick,
		"quest_id": q.ID,
		"text":     "The air grows cold. Something is coming...",
	})
}

func (w *World) cancelPendingSpawn(playerID string) {
	delete(w.pendingSpawns, playerID)
}

// runPendingSpawns fires due continuations. The world may have changed
// during the delay, so the quest is re-validated before spawning.
func (w *World) runPendingSpawns(nowTick uint64) {
	for playerID, ps := range w.pendingSpawns {
		if ps.DueTick > nowTick {
			continue
		}
		delete(w.pendingSpawns, playerID)

		p := w.players[playerID]
		if p == nil || w.clients[playerID] == nil {
			continue
		}
		q := p.Quest
		if !q.IsEncounter() || !q.Active || q.ID != ps.QuestID || q.State != hunt.StatePending {
			continue
		}
		w.executeSpawn(p, q, nowTick)
	}
}

func (w *World) executeSpawn(p *Player, q *hunt.QuestInstance, nowTick uint64) {
	loc, ok := w.findSpawnPointNear(p.Pos)
	if !ok {
		loc = w.fallbackLocation(q.Tier)
		w.logf("spawn point search exhausted for quest %s, using tier %d fallback", q.ID, q.Tier)
	}
	ids := w.spawnEncounterHostiles(q, loc)

	key := chunkKeyFor(loc.X, loc.Z)
	q.Spawn = &hunt.SpawnRecord{
		Location: hunt.Vec3{X: loc.X, Y: loc.Y, Z: loc.Z},
		RegionCX: key.CX,
		RegionCZ: key.CZ,
		Hostiles: ids,
	}
	q.State = hunt.StateSpawned
	w.persistQuest(p)

	p.AddEvent(protocol.Event{
		"type":     "ENCOUNTER_SPAWNED",
		"tick":     nowTick,
		"quest_id": q.ID,
		"count":    len(ids),
		"distance": int(distXZ(p.Pos, loc)),
		"text":     "They are here!",
	})
	w.audit(AuditEntry{Tick: nowTick, Player: p.ID, Action: "SPAWN", QuestID: q.ID, Detail: fmt.Sprintf("%d hostiles at (%d,%d,%d)", len(ids), loc.X, loc.Y, loc.Z)})
}

// systemQuestConsistency is the periodic top-up: recorded kill progress is
// authoritative, so if the live hostile count drifts below total-kills the
// deficit is respawned at the original location.
func (w *World) systemQuestConsistency(nowTick uint64) {
	every := uint64(w.cfg.Encounter.TopUpEveryTicks)
	if every == 0 || nowTick%every != 0 || nowTick == 0 {
		return
	}
	for id, p := range w.players {
		if w.clients[id] == nil {
			continue
		}
		q := p.Quest
		if !q.IsEncounter() || !q.Active || q.State != hunt.StateSpawned {
			continue
		}
		live := len(w.queryHostilesByQuest(q.ID))
		if missing := q.Remaining() - live; missing > 0 {
			ids := w.respawnMissing(q, missing)
			w.logf("top-up respawned %d/%d hostiles for quest %s", len(ids), missing, q.ID)
		}
	}
}
