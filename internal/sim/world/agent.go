package world

import (
	"strings"

	"github.com/Jolva/SuperQuester-sub001/internal/protocol"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/hunt"
)

type Player struct {
	// ID is the normalized player name. Name-derived so quest rows keyed by
	// it survive process restarts.
	ID   string
	Name string

	// ResumeToken is a transport-level token used for reconnects of a live
	// session. Never persisted.
	ResumeToken string

	Pos Vec3i
	Yaw int // degrees, 0 faces north (-Z)

	HP        int
	Inventory map[string]int

	// Quest is the single active quest, nil when none.
	Quest *hunt.QuestInstance

	// Offers is the player's available pool, keyed by def id. Abandoned
	// encounter instances return here with their zone intact.
	Offers map[string]*hunt.QuestInstance

	Events []protocol.Event

	// Rendered by the encounter monitor on its cadence, read by the OBS
	// builder every tick.
	cue     string
	beacons []protocol.Beacon
}

func normalizePlayerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "player"
	}
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}

func (p *Player) initDefaults() {
	if p.Inventory == nil {
		p.Inventory = map[string]int{}
	}
	if p.HP == 0 {
		p.HP = 20
	}
	if p.Offers == nil {
		p.Offers = map[string]*hunt.QuestInstance{}
	}
}

func (p *Player) AddEvent(ev protocol.Event) {
	// Bound the buffer; a slow reader loses the oldest events first.
	if len(p.Events) >= 64 {
		p.Events = p.Events[1:]
	}
	p.Events = append(p.Events, ev)
}

func (p *Player) drainEvents() []protocol.Event {
	if len(p.Events) == 0 {
		return nil
	}
	out := p.Events
	p.Events = nil
	return out
}
