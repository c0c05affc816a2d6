package world

import (
	"testing"

	"github.com/Jolva/SuperQuester-sub001/internal/sim/catalogs"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/tuning"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	tun := tuning.Defaults()
	cfg := WorldConfig{
		TickRateHz: tun.TickRateHz,
		DayTicks:   tun.DayTicks,
		Seed:       42,
		BoundaryR:  tun.BoundaryR,
		LoadRadius: tun.LoadRadius,
		Anchor:     Vec3i{},
		Encounter:  tun.Encounter,
	}
	w, err := New(cfg, cats)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

func joinTestPlayer(t *testing.T, w *World, name string) *Player {
	t.Helper()
	out := make(chan []byte, 4)
	resp := w.joinPlayer(name, out)
	if resp.Err != nil {
		t.Fatalf("join %s: %v", name, resp.Err)
	}
	p := w.players[resp.Welcome.PlayerID]
	if p == nil {
		t.Fatalf("join %s: player missing", name)
	}
	return p
}

// paveGrass forces flat dry grass in a square region so spawn validation
// has deterministic terrain to chew on.
func paveGrass(w *World, cx, cz, radius int) {
	for z := cz - radius; z <= cz+radius; z++ {
		for x := cx - radius; x <= cx+radius; x++ {
			w.chunks.SetColumn(x, z, column{Height: 30, Surface: BlockGrass})
		}
	}
}

func paveWater(w *World, cx, cz, radius int) {
	for z := cz - radius; z <= cz+radius; z++ {
		for x := cx - radius; x <= cx+radius; x++ {
			w.chunks.SetColumn(x, z, column{Height: 10, Surface: BlockDirt, WaterTop: 20})
		}
	}
}
