package world

import (
	"errors"
	"fmt"
	"time"

	"github.com/Jolva/SuperQuester-sub001/internal/protocol"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/hunt"
)

func (w *World) buildWelcome(p *Player) protocol.WelcomeMsg {
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        p.ID,
		ResumeToken:     p.ResumeToken,
		WorldParams: protocol.WorldParams{
			TickRateHz: w.cfg.TickRateHz,
			DayTicks:   w.cfg.DayTicks,
			Seed:       w.cfg.Seed,
			Anchor:     w.cfg.Anchor.ToArray(),
		},
		EncounterDigest: w.catalogs.Encounters.Digest,
		HostileDigest:   w.catalogs.Hostiles.Digest,
	}
}

// joinPlayer admits a player by name. The id is the normalized name, so a
// returning player (same name, new connection, possibly a new process) gets
// their persisted quest back.
func (w *World) joinPlayer(name string, out chan []byte) JoinResponse {
	id := normalizePlayerName(name)
	nowTick := w.tick.Load()

	p := w.players[id]
	fresh := p == nil
	if fresh {
		p = &Player{ID: id, Name: name}
		p.initDefaults()
		p.Pos = w.spawnPos()
		w.players[id] = p
		w.restoreQuestRow(p)
	}
	reconnect := !fresh && w.clients[id] == nil

	if old := w.clients[id]; old != nil {
		// The same name joined twice; the newer connection wins.
		close(old.Out)
	}
	p.ResumeToken = fmt.Sprintf("resume_%s_%d", id, time.Now().UnixNano())
	if out != nil {
		w.clients[id] = &clientState{Out: out}
	}
	w.ensureOffers(p)

	if fresh || reconnect {
		w.onPlayerReconnect(p, nowTick)
	}
	return JoinResponse{Welcome: w.buildWelcome(p)}
}

// restoreQuestRow rehydrates the persisted quest: active rows become the
// active quest, pooled rows rejoin the offer pool with their zone intact.
func (w *World) restoreQuestRow(p *Player) {
	if w.questStore == nil {
		return
	}
	q, err := w.questStore.Load(p.ID)
	if err != nil {
		w.logf("quest store read for %s failed: %v", p.ID, err)
		return
	}
	if q == nil {
		return
	}
	if q.Active {
		p.Quest = q
	} else {
		p.Offers[q.DefID] = q
	}
}

func (w *World) spawnPos() Vec3i {
	x := w.cfg.Anchor.X + w.rng.Intn(9) - 4
	z := w.cfg.Anchor.Z + w.rng.Intn(9) - 4
	w.chunks.EnsureLoaded(x, z)
	gy, _, _ := w.chunks.TopmostSurface(x, z)
	return Vec3i{X: x, Y: gy + 1, Z: z}
}

// handleAttach resumes a live session by token. Runs outside step because it
// never mutates tick-ordered state beyond swapping the client channel.
func (w *World) handleAttach(req AttachRequest) {
	for id, p := range w.players {
		if p.ResumeToken == "" || p.ResumeToken != req.ResumeToken {
			continue
		}
		wasDetached := w.clients[id] == nil
		if old := w.clients[id]; old != nil {
			close(old.Out)
		}
		w.clients[id] = &clientState{Out: req.Out}
		if wasDetached {
			w.onPlayerReconnect(p, w.tick.Load())
		}
		if req.Resp != nil {
			req.Resp <- JoinResponse{Welcome: w.buildWelcome(p)}
		}
		return
	}
	if req.Resp != nil {
		req.Resp <- JoinResponse{Err: errors.New("unknown resume token")}
	}
}

// handleLeave detaches the transport. The player object stays resident with
// its quest; hostiles despawn so nothing fights an empty room. A leave whose
// Out does not match the resident client is stale (the name was taken over
// by a newer connection while this one's reader was still winding down) and
// is dropped without touching the live session.
func (w *World) handleLeave(req LeaveRequest) {
	cl := w.clients[req.PlayerID]
	if cl == nil {
		return
	}
	if req.Out != nil && cl.Out != req.Out {
		return
	}
	close(cl.Out)
	delete(w.clients, req.PlayerID)
	if p := w.players[req.PlayerID]; p != nil {
		w.onPlayerDisconnect(p)
	}
}

// ensureLoadedAroundPlayers keeps a chunk radius resident around every
// connected player. This is the load guarantee findSpawnPointNear relies on.
func (w *World) ensureLoadedAroundPlayers() {
	r := w.cfg.LoadRadius
	if r <= 0 {
		r = 2
	}
	for id, p := range w.players {
		if w.clients[id] == nil {
			continue
		}
		key := chunkKeyFor(p.Pos.X, p.Pos.Z)
		for cz := key.CZ - r; cz <= key.CZ+r; cz++ {
			for cx := key.CX - r; cx <= key.CX+r; cx++ {
				w.chunks.EnsureLoaded(cx*16, cz*16)
			}
		}
	}
}

func (w *World) questView(q *hunt.QuestInstance) *protocol.QuestView {
	if q == nil {
		return nil
	}
	v := &protocol.QuestView{
		ID:    q.ID,
		Title: q.Title,
		Tier:  q.Tier,
		Kind:  string(q.Kind),
	}
	if q.IsEncounter() {
		v.State = string(q.State)
		v.Kills = q.Kills
		v.Total = q.TotalCount
	} else {
		v.Progress = q.Progress
		v.Required = q.Required
	}
	return v
}

func (w *World) buildObs(p *Player, nowTick uint64) protocol.ObsMsg {
	obs := protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		PlayerID:        p.ID,
		Pos:             p.Pos.ToArray(),
		Yaw:             p.Yaw,
		HP:              p.HP,
		Cue:             p.cue,
		Quest:           w.questView(p.Quest),
		Offers:          w.offerView(p),
		Events:          p.drainEvents(),
	}
	if len(p.beacons) > 0 {
		obs.Beacons = append([]protocol.Beacon(nil), p.beacons...)
	}
	return obs
}
