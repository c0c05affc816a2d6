package hunt

// Quest state machine. Transitions are strictly forward
// (PENDING -> SPAWNED -> COMPLETE); only an explicit abandon resets.
type State string

const (
	StatePending  State = "PENDING"
	StateSpawned  State = "SPAWNED"
	StateComplete State = "COMPLETE"
)

type Kind string

const (
	KindStandard  Kind = "STANDARD"
	KindEncounter Kind = "ENCOUNTER"
)

// Vec3 is duplicated here to avoid import cycles (hunt is used by world).
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// HostileGroup is one entry of an encounter's ordered spawn list.
type HostileGroup struct {
	Kind         string `json:"kind"`
	Count        int    `json:"count"`
	NameOverride string `json:"name_override,omitempty"`
}

type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// EncounterDef is the immutable catalog template. Instances deep-copy the
// group list so runtime mutation never touches the template.
type EncounterDef struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Flavor string         `json:"flavor,omitempty"`
	Tier   int            `json:"tier"`
	Groups []HostileGroup `json:"groups"`
	Reward []ItemCount    `json:"reward,omitempty"`
}

func (d EncounterDef) TotalCount() int {
	n := 0
	for _, g := range d.Groups {
		if g.Count > 0 {
			n += g.Count
		}
	}
	return n
}

// Zone is the approximate target area assigned once at accept time.
// It survives abandon/re-accept and is cleared only on a hard reset.
type Zone struct {
	CenterX       int `json:"center_x"`
	CenterZ       int `json:"center_z"`
	TriggerRadius int `json:"trigger_radius"`
	Tier          int `json:"tier"`
}

// SpawnRecord is written exactly once per PENDING -> SPAWNED transition.
type SpawnRecord struct {
	Location Vec3     `json:"location"`
	RegionCX int      `json:"region_cx"`
	RegionCZ int      `json:"region_cz"`
	Hostiles []string `json:"hostiles"`
}

// QuestInstance is one player's quest. Standard quests use Progress/Required;
// encounter quests use the Zone/State/Spawn/Kills fields (nil/zero otherwise).
type QuestInstance struct {
	ID          string      `json:"id"`
	DefID       string      `json:"def_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Tier        int         `json:"tier"`
	Reward      []ItemCount `json:"reward,omitempty"`
	Kind        Kind        `json:"kind"`

	// Active is false while the instance sits in the player's offer pool
	// (after an abandon). Pooled instances keep their Zone.
	Active bool `json:"active"`

	// Standard quests only.
	TargetKind string `json:"target_kind,omitempty"`
	Progress   int    `json:"progress,omitempty"`
	Required   int    `json:"required,omitempty"`

	// Encounter quests only.
	Groups     []HostileGroup `json:"groups,omitempty"`
	TotalCount int            `json:"total_count,omitempty"`
	Kills      int            `json:"kills,omitempty"`
	Zone       *Zone          `json:"zone,omitempty"`
	State      State          `json:"state,omitempty"`
	Spawn      *SpawnRecord   `json:"spawn,omitempty"`
}

func (q *QuestInstance) IsEncounter() bool {
	return q != nil && q.Kind == KindEncounter
}

// Remaining is the number of hostiles still owed to the player.
func (q *QuestInstance) Remaining() int {
	r := q.TotalCount - q.Kills
	if r < 0 {
		return 0
	}
	return r
}

// Clone deep-copies the instance (groups, zone, spawn record).
func (q *QuestInstance) Clone() *QuestInstance {
	if q == nil {
		return nil
	}
	cp := *q
	if q.Groups != nil {
		cp.Groups = make([]HostileGroup, len(q.Groups))
		copy(cp.Groups, q.Groups)
	}
	if q.Reward != nil {
		cp.Reward = make([]ItemCount, len(q.Reward))
		copy(cp.Reward, q.Reward)
	}
	if q.Zone != nil {
		z := *q.Zone
		cp.Zone = &z
	}
	if q.Spawn != nil {
		s := *q.Spawn
		s.Hostiles = make([]string, len(q.Spawn.Hostiles))
		copy(s.Hostiles, q.Spawn.Hostiles)
		cp.Spawn = &s
	}
	return &cp
}

// ResetForPool rolls the instance back to a fresh PENDING quest while
// retaining the zone, per the abandon contract.
func (q *QuestInstance) ResetForPool() {
	q.Active = false
	q.Kills = 0
	q.State = StatePending
	q.Spawn = nil
}

// Instantiate builds a runtime instance from the template with a deep copy
// of the group list.
func (d EncounterDef) Instantiate(id string) *QuestInstance {
	groups := make([]HostileGroup, len(d.Groups))
	copy(groups, d.Groups)
	reward := make([]ItemCount, len(d.Reward))
	copy(reward, d.Reward)
	return &QuestInstance{
		ID:          id,
		DefID:       d.ID,
		Title:       d.Name,
		Description: d.Flavor,
		Tier:        d.Tier,
		Reward:      reward,
		Kind:        KindEncounter,
		Groups:      groups,
		TotalCount:  d.TotalCount(),
		State:       StatePending,
	}
}
