package world

import "encoding/json"

// StepOnce runs exactly one tick. Test harness entry point; the production
// loop in Run calls step on the ticker cadence.
func (w *World) StepOnce(joins []JoinRequest, leaves []LeaveRequest, actions []ActionEnvelope) {
	w.step(joins, leaves, actions)
}

func (w *World) step(joins []JoinRequest, leaves []LeaveRequest, actions []ActionEnvelope) {
	nowTick := w.tick.Load()

	for _, req := range leaves {
		w.handleLeave(req)
	}
	for _, req := range joins {
		resp := w.joinPlayer(req.Name, req.Out)
		if req.Resp != nil {
			req.Resp <- resp
		}
	}
	// One-time orphan sweep on the first tick, after initial joins have
	// restored their quest rows.
	if !w.orphansSwept {
		w.orphansSwept = true
		w.cleanupOrphanHostiles()
	}

	// Actions in server receive order.
	for _, env := range actions {
		p := w.players[env.PlayerID]
		if p == nil {
			continue
		}
		w.applyAct(p, env.Act, nowTick)
	}

	w.ensureLoadedAroundPlayers()
	w.systemEnvironment(nowTick)
	w.systemEncounters(nowTick)
	w.systemQuestConsistency(nowTick)

	// Build and send OBS for every connected player.
	for id, p := range w.players {
		cl := w.clients[id]
		if cl == nil {
			continue
		}
		obs := w.buildObs(p, nowTick)
		b, err := json.Marshal(obs)
		if err != nil {
			continue
		}
		sendLatest(cl.Out, b)
	}

	w.tick.Add(1)
}
