package world

import (
	"github.com/Jolva/SuperQuester-sub001/internal/protocol"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/world/logic/mathx"
)

func actionResult(tick uint64, ref string, ok bool, code, msg string) protocol.Event {
	ev := protocol.Event{
		"type": "ACTION_RESULT",
		"tick": tick,
		"ref":  ref,
		"ok":   ok,
	}
	if code != "" {
		ev["code"] = code
	}
	if msg != "" {
		ev["msg"] = msg
	}
	return ev
}

// applyAct handles one ACT envelope. Instants run in request order; each
// gets its own result event keyed by the request id.
func (w *World) applyAct(p *Player, act protocol.ActMsg, nowTick uint64) {
	for _, req := range act.Instants {
		code, msg := w.applyInstant(p, req, nowTick)
		p.AddEvent(actionResult(nowTick, req.ID, code == "", code, msg))
	}
}

func (w *World) applyInstant(p *Player, req protocol.InstantReq, nowTick uint64) (string, string) {
	switch req.Type {
	case "MOVE":
		return w.instantMove(p, req)
	case "ATTACK":
		return w.instantAttack(p, req)
	case "ACCEPT_QUEST":
		return w.acceptQuest(p, req.QuestDef, nowTick)
	case "ABANDON_QUEST":
		return w.abandonQuest(p, nowTick)
	case "TURN_IN_QUEST":
		return w.turnInQuest(p, nowTick)
	default:
		return protocol.ErrBadRequest, "unknown instant type"
	}
}

// instantMove teleport-steps the player a bounded planar delta and snaps
// them to the surface. Movement is not the point of this server; it only
// needs to be good enough to walk to a zone.
func (w *World) instantMove(p *Player, req protocol.InstantReq) (string, string) {
	const maxStep = 5
	if req.DX == 0 && req.DZ == 0 {
		return protocol.ErrBadRequest, "zero move"
	}
	if mathx.AbsInt(req.DX) > maxStep || mathx.AbsInt(req.DZ) > maxStep {
		return protocol.ErrBadRequest, "step too large"
	}
	nx, nz := p.Pos.X+req.DX, p.Pos.Z+req.DZ
	if w.cfg.BoundaryR > 0 {
		if nx < -w.cfg.BoundaryR || nx > w.cfg.BoundaryR || nz < -w.cfg.BoundaryR || nz > w.cfg.BoundaryR {
			return protocol.ErrBlocked, "world boundary"
		}
	}
	w.chunks.EnsureLoaded(nx, nz)
	gy, _, _ := w.chunks.TopmostSurface(nx, nz)
	p.Pos = Vec3i{X: nx, Y: gy + 1, Z: nz}
	if req.DX != 0 || req.DZ != 0 {
		p.Yaw = int(headingDeg(req.DX, req.DZ))
	}
	return "", ""
}

const attackRange = 6
const attackDamage = 5

func (w *World) instantAttack(p *Player, req protocol.InstantReq) (string, string) {
	h := w.hostiles[req.Target]
	if h == nil {
		return protocol.ErrInvalidTarget, "no such hostile"
	}
	if distXZ(p.Pos, h.Pos) > attackRange {
		return protocol.ErrBlocked, "out of range"
	}
	w.damageHostile(h, CauseAttack, attackDamage, p.ID)
	return "", ""
}
