package world

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Jolva/SuperQuester-sub001/internal/protocol"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/hunt"
)

const cullOfferPrefix = "CULL_"
const cullRequired = 5

// persistQuest writes the player's quest row: the active quest when there is
// one, else the pooled encounter instance whose zone must survive a restart,
// else no row at all. Store failures are logged and swallowed; the live
// state stays authoritative for the session.
func (w *World) persistQuest(p *Player) {
	if w.questStore == nil {
		return
	}
	q := p.Quest
	if q == nil {
		for _, o := range p.Offers {
			if o.IsEncounter() && o.Zone != nil {
				q = o
				break
			}
		}
	}
	var err error
	if q == nil {
		err = w.questStore.Delete(p.ID)
	} else {
		err = w.questStore.Save(p.ID, q)
	}
	if err != nil {
		w.logf("quest store write for %s failed: %v", p.ID, err)
	}
}

// ensureOffers fills the player's available pool: every catalog encounter
// plus a simple cull contract per hostile kind. Pooled instances (abandoned
// quests) are never overwritten.
func (w *World) ensureOffers(p *Player) {
	for _, defID := range w.catalogs.Encounters.Ordered {
		if _, ok := p.Offers[defID]; ok {
			continue
		}
		if p.Quest != nil && p.Quest.DefID == defID {
			continue
		}
		p.Offers[defID] = nil // nil means "fresh from catalog"
	}
	for _, kindID := range w.catalogs.Hostiles.SortedHostileKinds() {
		offerID := cullOfferPrefix + kindID
		if _, ok := p.Offers[offerID]; ok {
			continue
		}
		if p.Quest != nil && p.Quest.DefID == offerID {
			continue
		}
		p.Offers[offerID] = nil
	}
}

func (w *World) offerView(p *Player) []protocol.OfferView {
	var out []protocol.OfferView
	for _, defID := range w.catalogs.Encounters.Ordered {
		if _, ok := p.Offers[defID]; !ok {
			continue
		}
		def := w.catalogs.Encounters.ByID[defID]
		out = append(out, protocol.OfferView{DefID: defID, Title: def.Name, Tier: def.Tier})
	}
	for _, kindID := range w.catalogs.Hostiles.SortedHostileKinds() {
		offerID := cullOfferPrefix + kindID
		if _, ok := p.Offers[offerID]; !ok {
			continue
		}
		kind := w.catalogs.Hostiles.ByID[kindID]
		out = append(out, protocol.OfferView{DefID: offerID, Title: "Cull: " + kind.Name, Tier: 1})
	}
	return out
}

func (w *World) instantiateOffer(defID string) (*hunt.QuestInstance, string) {
	if def, ok := w.catalogs.Encounters.ByID[defID]; ok {
		q := def.Instantiate(uuid.NewString())
		zone := w.selectTargetArea(def.Tier)
		if zone == nil {
			return nil, protocol.ErrConfig
		}
		q.Zone = zone
		return q, ""
	}
	if kindID, ok := strings.CutPrefix(defID, cullOfferPrefix); ok {
		kind, known := w.catalogs.Hostiles.ByID[kindID]
		if !known {
			return nil, protocol.ErrInvalidTarget
		}
		return &hunt.QuestInstance{
			ID:         uuid.NewString(),
			DefID:      defID,
			Title:      "Cull: " + kind.Name,
			Tier:       1,
			Kind:       hunt.KindStandard,
			Reward:     []hunt.ItemCount{{Item: "COIN", Count: 10}},
			TargetKind: kindID,
			Required:   cullRequired,
		}, ""
	}
	return nil, protocol.ErrInvalidTarget
}

// acceptQuest activates one offer. A pooled instance is reused as-is, which
// is how an abandoned encounter keeps its zone; a fresh encounter rolls a
// new zone from the tier ring.
func (w *World) acceptQuest(p *Player, defID string, nowTick uint64) (string, string) {
	if p.Quest != nil {
		return protocol.ErrConflict, "a quest is already active"
	}
	pooled, known := p.Offers[defID]
	if !known {
		return protocol.ErrInvalidTarget, "no such offer"
	}

	var q *hunt.QuestInstance
	if pooled != nil {
		q = pooled
		if q.IsEncounter() && q.Zone == nil {
			zone := w.selectTargetArea(q.Tier)
			if zone == nil {
				return protocol.ErrConfig, fmt.Sprintf("no ring configured for tier %d", q.Tier)
			}
			q.Zone = zone
		}
	} else {
		var code string
		q, code = w.instantiateOffer(defID)
		if q == nil {
			if code == protocol.ErrConfig {
				return code, "encounter tier has no configured ring"
			}
			return code, "no such offer"
		}
	}

	q.Active = true
	delete(p.Offers, defID)
	p.Quest = q
	w.persistQuest(p)

	ev := protocol.Event{
		"type":     "QUEST_ACCEPTED",
		"tick":     nowTick,
		"quest_id": q.ID,
		"title":    q.Title,
	}
	if q.IsEncounter() {
		// One-time heading so the player knows where to start walking.
		target := Vec3i{X: q.Zone.CenterX, Z: q.Zone.CenterZ}
		ev["text"] = fmt.Sprintf("Your mark is roughly %dm to the %s.", int(distXZ(p.Pos, target)), compassLabel(p.Pos, target))
	}
	p.AddEvent(ev)
	w.audit(AuditEntry{Tick: nowTick, Player: p.ID, Action: "ACCEPT", QuestID: q.ID, Detail: defID})
	return "", ""
}

// abandonQuest returns the instance to the pool. For encounters the zone
// survives, spawned hostiles are despawned and progress resets.
func (w *World) abandonQuest(p *Player, nowTick uint64) (string, string) {
	q := p.Quest
	if q == nil {
		return protocol.ErrBadRequest, "no active quest"
	}
	w.cancelPendingSpawn(p.ID)
	removed := 0
	if q.IsEncounter() {
		removed = w.despawnEncounter(q.ID)
	}
	q.ResetForPool()
	q.Progress = 0
	p.Quest = nil
	// Pool a copy; events and views built this tick may still hold the
	// retired pointer.
	p.Offers[q.DefID] = q.Clone()
	w.persistQuest(p)

	p.AddEvent(protocol.Event{
		"type":     "QUEST_ABANDONED",
		"tick":     nowTick,
		"quest_id": q.ID,
	})
	w.audit(AuditEntry{Tick: nowTick, Player: p.ID, Action: "ABANDON", QuestID: q.ID, Detail: fmt.Sprintf("despawned %d", removed)})
	return "", ""
}

// turnInQuest pays out a finished quest and retires the instance. The next
// accept of the same encounter is a fresh instance with a fresh zone.
func (w *World) turnInQuest(p *Player, nowTick uint64) (string, string) {
	q := p.Quest
	if q == nil {
		return protocol.ErrBadRequest, "no active quest"
	}
	switch {
	case q.IsEncounter():
		if q.State != hunt.StateComplete {
			return protocol.ErrNotComplete, fmt.Sprintf("kills %d/%d", q.Kills, q.TotalCount)
		}
	default:
		if q.Progress < q.Required {
			return protocol.ErrNotComplete, fmt.Sprintf("progress %d/%d", q.Progress, q.Required)
		}
	}

	if q.IsEncounter() {
		// Normally a no-op; covers a straggler that never received a kill.
		w.despawnEncounter(q.ID)
	}
	w.payReward(p, q.Reward)
	p.Quest = nil
	delete(p.Offers, q.DefID) // retired; ensureOffers re-lists it fresh
	w.persistQuest(p)
	w.ensureOffers(p)

	p.AddEvent(protocol.Event{
		"type":     "QUEST_TURNED_IN",
		"tick":     nowTick,
		"quest_id": q.ID,
		"reward":   q.Reward,
	})
	w.audit(AuditEntry{Tick: nowTick, Player: p.ID, Action: "TURN_IN", QuestID: q.ID})
	return "", ""
}

func (w *World) payReward(p *Player, reward []hunt.ItemCount) {
	if w.rewardSink != nil {
		w.rewardSink.PayReward(p.ID, reward)
		return
	}
	for _, rc := range reward {
		p.Inventory[rc.Item] += rc.Count
	}
}

// onHostileKilled attributes a kill. Encounter credit goes through the tag
// pair to the bound instance regardless of who or what landed the blow;
// standard cull credit goes to the attacking player only.
func (w *World) onHostileKilled(h *Hostile, cause DamageCause, attackerID string) {
	nowTick := w.tick.Load()

	if h.Encounter && h.QuestID != "" {
		for _, p := range w.players {
			q := p.Quest
			if !q.IsEncounter() || !q.Active || q.ID != h.QuestID {
				continue
			}
			if q.Kills < q.TotalCount {
				q.Kills++
			}
			p.AddEvent(protocol.Event{
				"type":     "ENCOUNTER_KILL",
				"tick":     nowTick,
				"quest_id": q.ID,
				"kills":    q.Kills,
				"total":    q.TotalCount,
				"cause":    string(cause),
			})
			if q.Kills >= q.TotalCount && q.State == hunt.StateSpawned {
				q.State = hunt.StateComplete
				p.AddEvent(protocol.Event{
					"type":     "ENCOUNTER_COMPLETE",
					"tick":     nowTick,
					"quest_id": q.ID,
					"text":     "The last of them falls. Return to turn in.",
				})
				w.audit(AuditEntry{Tick: nowTick, Player: p.ID, Action: "COMPLETE", QuestID: q.ID})
			}
			w.persistQuest(p)
			break
		}
		return
	}

	if attackerID == "" {
		return
	}
	p := w.players[attackerID]
	if p == nil {
		return
	}
	q := p.Quest
	if q == nil || q.Kind != hunt.KindStandard || q.TargetKind != h.Kind {
		return
	}
	if q.Progress < q.Required {
		q.Progress++
		w.persistQuest(p)
	}
	p.AddEvent(protocol.Event{
		"type":     "QUEST_PROGRESS",
		"tick":     nowTick,
		"quest_id": q.ID,
		"progress": q.Progress,
		"required": q.Required,
	})
}

// onPlayerDisconnect despawns the player's encounter hostiles but keeps the
// quest state intact; kill progress is preserved for the reconnect.
func (w *World) onPlayerDisconnect(p *Player) {
	w.cancelPendingSpawn(p.ID)
	q := p.Quest
	if q.IsEncounter() && q.Active && q.State == hunt.StateSpawned {
		w.despawnEncounter(q.ID)
	}
	w.persistQuest(p)
}

// onPlayerReconnect restores the live side of a persisted encounter. The
// recorded kill progress is authoritative: only the deficit respawns, at the
// original location.
func (w *World) onPlayerReconnect(p *Player, nowTick uint64) {
	q := p.Quest
	if !q.IsEncounter() || !q.Active || q.State != hunt.StateSpawned {
		return
	}
	if q.Remaining() == 0 {
		// Every kill was recorded but the completion transition was lost.
		q.State = hunt.StateComplete
		w.persistQuest(p)
		return
	}
	ids := w.respawnRemaining(q)
	w.audit(AuditEntry{Tick: nowTick, Player: p.ID, Action: "RESPAWN", QuestID: q.ID, Detail: fmt.Sprintf("%d hostiles", len(ids))})
}
