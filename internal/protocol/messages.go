package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	PlayerName      string     `json:"player_name"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloAuth struct {
	// ResumeToken reattaches a live session after a transport drop.
	ResumeToken string `json:"resume_token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	PlayerID        string      `json:"player_id"`
	ResumeToken     string      `json:"resume_token"`
	WorldParams     WorldParams `json:"world_params"`
	EncounterDigest string      `json:"encounter_digest"`
	HostileDigest   string      `json:"hostile_digest"`
}

type WorldParams struct {
	TickRateHz int    `json:"tick_rate_hz"`
	DayTicks   int    `json:"day_ticks"`
	Seed       int64  `json:"seed"`
	Anchor     [3]int `json:"anchor"`
}

// ACT (client -> server)
type ActMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Tick            uint64       `json:"tick"`
	PlayerID        string       `json:"player_id,omitempty"`
	Instants        []InstantReq `json:"instants,omitempty"`
}

// InstantReq carries one immediate action. Type selects which fields apply:
// MOVE (dx/dz), ATTACK (target), ACCEPT_QUEST (quest_def), ABANDON_QUEST,
// TURN_IN_QUEST.
type InstantReq struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	DX       int    `json:"dx,omitempty"`
	DZ       int    `json:"dz,omitempty"`
	Target   string `json:"target,omitempty"`
	QuestDef string `json:"quest_def,omitempty"`
}

// OBS (server -> client), one per tick per connected player.
type ObsMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Tick            uint64      `json:"tick"`
	PlayerID        string      `json:"player_id"`
	Pos             [3]int      `json:"pos"`
	Yaw             int         `json:"yaw"`
	HP              int         `json:"hp"`
	Cue             string      `json:"cue,omitempty"`
	Beacons         []Beacon    `json:"beacons,omitempty"`
	Quest           *QuestView  `json:"quest,omitempty"`
	Offers          []OfferView `json:"offers,omitempty"`
	Events          []Event     `json:"events,omitempty"`
}

// Beacon is a spatial marker with a distance-gated intensity tier.
type Beacon struct {
	Pos       [3]int `json:"pos"`
	Intensity string `json:"intensity"` // "FAR" or "NEAR"
}

type QuestView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Tier     int    `json:"tier"`
	Kind     string `json:"kind"`
	State    string `json:"state,omitempty"`
	Kills    int    `json:"kills,omitempty"`
	Total    int    `json:"total,omitempty"`
	Progress int    `json:"progress,omitempty"`
	Required int    `json:"required,omitempty"`
}

type OfferView struct {
	DefID string `json:"def_id"`
	Title string `json:"title"`
	Tier  int    `json:"tier"`
}
