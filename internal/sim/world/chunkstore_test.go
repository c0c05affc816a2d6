package world

import "testing"

func TestTerrainQueriesFailClosedWhenUnloaded(t *testing.T) {
	w := newTestWorld(t)
	if _, _, ok := w.chunks.TopmostSurface(400, 400); ok {
		t.Fatalf("TopmostSurface reported a column from an unloaded chunk")
	}
	if _, ok := w.chunks.BlockAt(400, 30, 400); ok {
		t.Fatalf("BlockAt reported a cell from an unloaded chunk")
	}

	w.chunks.EnsureLoaded(400, 400)
	if _, _, ok := w.chunks.TopmostSurface(400, 400); !ok {
		t.Fatalf("TopmostSurface failed after EnsureLoaded")
	}
}

func TestGenerationIsDeterministic(t *testing.T) {
	a := newTestWorld(t)
	b := newTestWorld(t)
	for z := -32; z < 32; z += 3 {
		for x := -32; x < 32; x += 3 {
			a.chunks.EnsureLoaded(x, z)
			b.chunks.EnsureLoaded(x, z)
			ya, sa, _ := a.chunks.TopmostSurface(x, z)
			yb, sb, _ := b.chunks.TopmostSurface(x, z)
			if ya != yb || sa != sb {
				t.Fatalf("column (%d,%d) differs across identically seeded worlds", x, z)
			}
		}
	}
}

func TestColumnBlockDerivation(t *testing.T) {
	w := newTestWorld(t)
	w.chunks.SetColumn(10, 10, column{Height: 30, Surface: BlockGrass})

	cases := []struct {
		y    int
		want uint16
	}{
		{30, BlockGrass},
		{29, BlockStone},
		{5, BlockStone},
		{31, BlockAir},
		{100, BlockAir},
	}
	for _, c := range cases {
		if got, ok := w.chunks.BlockAt(10, c.y, 10); !ok || got != c.want {
			t.Errorf("BlockAt(10, %d, 10) = %s, want %s", c.y, BlockName(got), BlockName(c.want))
		}
	}

	// Flooded column: water fills from above the floor to the water top.
	w.chunks.SetColumn(11, 10, column{Height: 10, Surface: BlockDirt, WaterTop: 20})
	if got, _ := w.chunks.BlockAt(11, 15, 10); got != BlockWater {
		t.Errorf("flooded cell = %s, want WATER", BlockName(got))
	}
	if got, _ := w.chunks.BlockAt(11, 21, 10); got != BlockAir {
		t.Errorf("above water = %s, want AIR", BlockName(got))
	}
	if y, surf, _ := w.chunks.TopmostSurface(11, 10); y != 20 || surf != BlockWater {
		t.Errorf("flooded surface = (%d, %s), want (20, WATER)", y, BlockName(surf))
	}

	// Overrides layer on top of the heightmap.
	w.chunks.SetBlock(Vec3i{X: 10, Y: 31, Z: 10}, BlockStone)
	if got, _ := w.chunks.BlockAt(10, 31, 10); got != BlockStone {
		t.Errorf("override ignored: %s", BlockName(got))
	}
}
