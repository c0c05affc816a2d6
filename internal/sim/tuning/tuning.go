package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int   `yaml:"tick_rate_hz"`
	DayTicks   int   `yaml:"day_ticks"`
	BoundaryR  int   `yaml:"world_boundary_r"`
	LoadRadius int   `yaml:"load_radius_chunks"`
	Anchor     []int `yaml:"anchor"`

	Encounter Encounter `yaml:"encounter"`
}

// Encounter holds every knob of the encounter subsystem. Radii and
// distances are in blocks; cadences in ticks.
type Encounter struct {
	MonitorEveryTicks int `yaml:"monitor_every_ticks"`
	SpawnDelayTicks   int `yaml:"spawn_delay_ticks"`
	TopUpEveryTicks   int `yaml:"top_up_every_ticks"`

	TriggerRadius int `yaml:"trigger_radius"`

	Rings []Ring `yaml:"rings"`

	SpawnRingInner int `yaml:"spawn_ring_inner"`
	SpawnRingOuter int `yaml:"spawn_ring_outer"`
	SpawnAttempts  int `yaml:"spawn_attempts"`
	ScatterRadius  int `yaml:"scatter_radius"`

	BeaconFar      int `yaml:"beacon_far"`
	BeaconNear     int `yaml:"beacon_near"`
	FarPulseTicks  int `yaml:"far_pulse_ticks"`
	NearPulseTicks int `yaml:"near_pulse_ticks"`

	Fallbacks []Fallback `yaml:"fallbacks"`
}

// Ring is the per-tier annulus the zone center is sampled from.
type Ring struct {
	Tier  int `yaml:"tier"`
	Inner int `yaml:"inner"`
	Outer int `yaml:"outer"`
}

// Fallback is a pre-vetted spawn coordinate for a tier, used when terrain
// validation exhausts its attempt budget.
type Fallback struct {
	Tier int   `yaml:"tier"`
	Pos  []int `yaml:"pos"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Defaults mirror configs/tuning.yaml so a missing file still boots a
// playable server.
func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      20,
		DayTicks:        24000,
		BoundaryR:       1024,
		LoadRadius:      2,
		Anchor:          []int{0, 0, 0},
		Encounter: Encounter{
			MonitorEveryTicks: 2,
			SpawnDelayTicks:   10, // 0.5s at 20Hz
			TopUpEveryTicks:   200,
			TriggerRadius:     30,
			Rings: []Ring{
				{Tier: 1, Inner: 60, Outer: 120},
				{Tier: 2, Inner: 80, Outer: 160},
				{Tier: 3, Inner: 100, Outer: 200},
			},
			SpawnRingInner: 18,
			SpawnRingOuter: 22,
			SpawnAttempts:  15,
			ScatterRadius:  3,
			BeaconFar:      300,
			BeaconNear:     150,
			FarPulseTicks:  8,
			NearPulseTicks: 4,
			Fallbacks: []Fallback{
				{Tier: 1, Pos: []int{90, 0, 0}},
				{Tier: 1, Pos: []int{0, 0, 90}},
				{Tier: 2, Pos: []int{120, 0, -60}},
				{Tier: 2, Pos: []int{-120, 0, 60}},
				{Tier: 3, Pos: []int{150, 0, 150}},
				{Tier: 3, Pos: []int{-150, 0, -150}},
			},
		},
	}
}
