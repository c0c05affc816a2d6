package world

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/Jolva/SuperQuester-sub001/internal/protocol"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/catalogs"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/hunt"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/tuning"
)

type WorldConfig struct {
	TickRateHz int
	DayTicks   int
	Seed       int64
	BoundaryR  int
	LoadRadius int // chunks around each player kept loaded
	Anchor     Vec3i
	Encounter  tuning.Encounter
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type AttachRequest struct {
	ResumeToken string
	Out         chan []byte
	Resp        chan JoinResponse
}

// LeaveRequest detaches one connection. Out names the connection that is
// leaving; players are keyed by name, so a leave whose Out no longer matches
// the resident client belongs to a connection that was already replaced by a
// same-name takeover and must not touch the live session.
type LeaveRequest struct {
	PlayerID string
	Out      chan []byte
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	Err     error
}

type ActionEnvelope struct {
	PlayerID string
	Act      protocol.ActMsg
}

// QuestStore persists one quest row per player. Load returns (nil, nil)
// when the player has no row.
type QuestStore interface {
	Load(playerID string) (*hunt.QuestInstance, error)
	Save(playerID string, q *hunt.QuestInstance) error
	Delete(playerID string) error
}

// RewardSink receives turn-in payouts. The default sink credits the player
// inventory; tests swap in a recorder.
type RewardSink interface {
	PayReward(playerID string, reward []hunt.ItemCount)
}

// AuditLogger records quest lifecycle entries, best effort.
type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type AuditEntry struct {
	Tick    uint64 `json:"tick"`
	Player  string `json:"player"`
	Action  string `json:"action"` // e.g. "ACCEPT", "SPAWN", "KILL"
	QuestID string `json:"quest_id,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// pendingSpawn is a deferred spawn continuation. One per player at most,
// which doubles as the in-flight guard against double triggering.
type pendingSpawn struct {
	QuestID string
	DueTick uint64
}

type clientState struct {
	Out chan []byte
}

// World is a single-threaded authoritative simulation. All state is owned
// by the loop goroutine; everything else talks to it over channels.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs

	tick atomic.Uint64

	chunks *ChunkStore

	players map[string]*Player
	clients map[string]*clientState

	hostiles map[string]*Hostile

	pendingSpawns map[string]pendingSpawn

	inbox  chan ActionEnvelope
	join   chan JoinRequest
	attach chan AttachRequest
	leave  chan LeaveRequest
	stop   chan struct{}

	nextHostileNum atomic.Uint64

	rng *rand.Rand

	questStore  QuestStore
	rewardSink  RewardSink
	auditLogger AuditLogger

	damageHooks        []damageHook
	fireGuardInstalled bool
	orphansSwept       bool

	logf func(format string, args ...any)
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cfg.TickRateHz <= 0 {
		return nil, fmt.Errorf("tick rate must be positive, got %d", cfg.TickRateHz)
	}
	if cfg.Encounter.SpawnAttempts <= 0 || cfg.Encounter.SpawnRingOuter <= cfg.Encounter.SpawnRingInner {
		return nil, fmt.Errorf("invalid spawn ring config")
	}
	gen := WorldGen{
		Seed:      cfg.Seed,
		SeaLevel:  20,
		BoundaryR: cfg.BoundaryR,
	}
	w := &World{
		cfg:           cfg,
		catalogs:      cats,
		chunks:        NewChunkStore(gen),
		players:       map[string]*Player{},
		clients:       map[string]*clientState{},
		hostiles:      map[string]*Hostile{},
		pendingSpawns: map[string]pendingSpawn{},
		inbox:         make(chan ActionEnvelope, 1024),
		join:          make(chan JoinRequest, 64),
		attach:        make(chan AttachRequest, 64),
		leave:         make(chan LeaveRequest, 64),
		stop:          make(chan struct{}),
		rng:           rand.New(rand.NewSource(cfg.Seed ^ 0x5eed)),
		logf:          func(string, ...any) {},
	}
	w.installEncounterFireGuard()
	return w, nil
}

func (w *World) SetQuestStore(s QuestStore)   { w.questStore = s }
func (w *World) SetRewardSink(s RewardSink)   { w.rewardSink = s }
func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }

func (w *World) SetLogf(f func(string, ...any)) {
	if f != nil {
		w.logf = f
	}
}

func (w *World) Inbox() chan<- ActionEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest     { return w.join }
func (w *World) Attach() chan<- AttachRequest { return w.attach }
func (w *World) Leave() chan<- LeaveRequest   { return w.leave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) audit(e AuditEntry) {
	if w.auditLogger == nil {
		return
	}
	if err := w.auditLogger.WriteAudit(e); err != nil {
		w.logf("audit write failed: %v", err)
	}
}

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingActions []ActionEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []LeaveRequest

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case req := <-w.attach:
			w.handleAttach(req)
		case req := <-w.leave:
			pendingLeaves = append(pendingLeaves, req)
		case env := <-w.inbox:
			pendingActions = append(pendingActions, env)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingActions)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingActions = pendingActions[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// sendLatest delivers b without blocking; if the client buffer is full the
// oldest frame is dropped in favor of the new one.
func sendLatest(ch chan []byte, b []byte) {
	for {
		select {
		case ch <- b:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
