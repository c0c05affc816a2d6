package worldtest

import (
	"encoding/json"
	"testing"

	"github.com/Jolva/SuperQuester-sub001/internal/protocol"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/catalogs"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/tuning"
	world "github.com/Jolva/SuperQuester-sub001/internal/sim/world"
)

// Harness drives a world through its exported surface, the way a transport
// would: joins and acts go through StepOnce, OBS JSON comes back over the
// per-player channels. Debug* helpers are used only to pin preconditions.
type Harness struct {
	T    *testing.T
	Cats *catalogs.Catalogs
	W    *world.World

	DefaultPlayerID string

	sessions map[string]*session
}

type session struct {
	PlayerID string
	Out      chan []byte
	closed   bool
	lastObs  protocol.ObsMsg
}

func DefaultConfig() world.WorldConfig {
	tun := tuning.Defaults()
	return world.WorldConfig{
		TickRateHz: tun.TickRateHz,
		DayTicks:   tun.DayTicks,
		Seed:       42,
		BoundaryR:  tun.BoundaryR,
		LoadRadius: tun.LoadRadius,
		Encounter:  tun.Encounter,
	}
}

func LoadCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

func NewHarness(t *testing.T, cfg world.WorldConfig, cats *catalogs.Catalogs, playerName string) *Harness {
	t.Helper()
	w, err := world.New(cfg, cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return NewHarnessWithWorld(t, w, cats, playerName)
}

// NewHarnessWithWorld wraps an already-constructed world, e.g. one with a
// quest store attached for restart tests.
func NewHarnessWithWorld(t *testing.T, w *world.World, cats *catalogs.Catalogs, playerName string) *Harness {
	t.Helper()
	h := &Harness{
		T:        t,
		Cats:     cats,
		W:        w,
		sessions: map[string]*session{},
	}
	if playerName != "" {
		h.DefaultPlayerID = h.Join(playerName)
	}
	return h
}

func (h *Harness) Join(playerName string) string {
	h.T.Helper()
	out := make(chan []byte, 16)
	resp := make(chan world.JoinResponse, 1)
	h.W.StepOnce([]world.JoinRequest{{Name: playerName, Out: out, Resp: resp}}, nil, nil)
	jr := <-resp
	if jr.Err != nil {
		h.T.Fatalf("join: %v", jr.Err)
	}
	if jr.Welcome.PlayerID == "" {
		h.T.Fatalf("join returned empty player id")
	}
	s := &session{PlayerID: jr.Welcome.PlayerID, Out: out}
	h.sessions[s.PlayerID] = s
	h.drainAllObs()
	return s.PlayerID
}

// Leave detaches the player's transport, as a dropped connection would.
func (h *Harness) Leave(playerID string) {
	h.T.Helper()
	s := h.sessions[playerID]
	var out chan []byte
	if s != nil {
		out = s.Out
	}
	h.W.StepOnce(nil, []world.LeaveRequest{{PlayerID: playerID, Out: out}}, nil)
	if s != nil {
		s.closed = true
	}
	h.drainAllObs()
}

func (h *Harness) Step(instants []protocol.InstantReq) protocol.ObsMsg {
	return h.StepFor(h.DefaultPlayerID, instants)
}

func (h *Harness) StepFor(playerID string, instants []protocol.InstantReq) protocol.ObsMsg {
	h.T.Helper()
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            h.W.CurrentTick(),
		PlayerID:        playerID,
		Instants:        instants,
	}
	h.W.StepOnce(nil, nil, []world.ActionEnvelope{{PlayerID: playerID, Act: act}})
	h.drainAllObs()
	return h.LastObsFor(playerID)
}

func (h *Harness) StepNoop() protocol.ObsMsg {
	h.T.Helper()
	h.W.StepOnce(nil, nil, nil)
	h.drainAllObs()
	return h.LastObsFor(h.DefaultPlayerID)
}

func (h *Harness) StepTicks(n int) {
	h.T.Helper()
	for i := 0; i < n; i++ {
		h.W.StepOnce(nil, nil, nil)
	}
	h.drainAllObs()
}

func (h *Harness) LastObs() protocol.ObsMsg { return h.LastObsFor(h.DefaultPlayerID) }

func (h *Harness) LastObsFor(playerID string) protocol.ObsMsg {
	h.T.Helper()
	s := h.sessions[playerID]
	if s == nil {
		h.T.Fatalf("unknown player id: %q", playerID)
	}
	return s.lastObs
}

func (h *Harness) SetPlayerPos(pos world.Vec3i) { h.SetPlayerPosFor(h.DefaultPlayerID, pos) }

func (h *Harness) SetPlayerPosFor(playerID string, pos world.Vec3i) {
	h.T.Helper()
	if !h.W.DebugSetPlayerPos(playerID, pos) {
		h.T.Fatalf("DebugSetPlayerPos returned false for %q", playerID)
	}
}

// PaveGrass flattens a square of dry grass so spawn validation is
// deterministic inside it.
func (h *Harness) PaveGrass(cx, cz, radius int) {
	for z := cz - radius; z <= cz+radius; z++ {
		for x := cx - radius; x <= cx+radius; x++ {
			h.W.DebugSetColumn(x, z, 30, world.BlockGrass, 0)
		}
	}
}

func (h *Harness) drainAllObs() {
	h.T.Helper()
	for _, s := range h.sessions {
		h.drainOneObs(s)
	}
}

func (h *Harness) drainOneObs(s *session) {
	h.T.Helper()
	if s.closed {
		return
	}
	var last []byte
	for {
		select {
		case b, ok := <-s.Out:
			if !ok {
				s.closed = true
			} else {
				last = b
				continue
			}
		default:
		}
		break
	}
	if len(last) == 0 {
		return
	}
	var obs protocol.ObsMsg
	if err := json.Unmarshal(last, &obs); err != nil {
		h.T.Fatalf("unmarshal OBS: %v", err)
	}
	s.lastObs = obs
}
