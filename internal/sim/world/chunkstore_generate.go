package world

import "github.com/Jolva/SuperQuester-sub001/internal/sim/world/logic/mathx"

func biomeAt(seed int64, x, z int) string {
	// Biomes are assigned per 64x64 region.
	rx := mathx.FloorDiv(x, 64)
	rz := mathx.FloorDiv(z, 64)
	switch mathx.Hash2(seed+7, rx, rz) % 10 {
	case 0, 1:
		return "DESERT"
	case 2, 3, 4:
		return "FOREST"
	case 5:
		return "WETLAND"
	default:
		return "PLAINS"
	}
}

func (s *ChunkStore) generate(key ChunkKey) *Chunk {
	ch := &Chunk{CX: key.CX, CZ: key.CZ, Columns: make([]column, 16*16)}
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			wx := key.CX*16 + x
			wz := key.CZ*16 + z
			*ch.col(x, z) = s.genColumn(wx, wz)
		}
	}
	return ch
}

func (s *ChunkStore) genColumn(wx, wz int) column {
	seed := s.gen.Seed
	biome := biomeAt(seed, wx, wz)

	// Rolling heightmap: a coarse 32-block lattice plus per-column jitter.
	coarse := int(mathx.Hash2(seed+11, mathx.FloorDiv(wx, 32), mathx.FloorDiv(wz, 32)) % 12)
	jitter := int(mathx.Hash2(seed+13, wx, wz) % 3)
	h := s.gen.SeaLevel - 3 + coarse + jitter

	c := column{Height: h, Surface: BlockGrass}
	switch biome {
	case "DESERT":
		c.Surface = BlockSand
		if mathx.Hash2(seed+17, wx, wz)%200 == 0 {
			c.Surface = BlockCactus
		}
	case "FOREST":
		if mathx.Hash2(seed+19, wx, wz)%14 == 0 {
			// Tree canopy caps the column.
			c.Height += 4
			c.Surface = BlockLeaves
		}
	case "WETLAND":
		c.Height = s.gen.SeaLevel - 2 + jitter
		c.Surface = BlockDirt
	}

	// Rare magma vents break the surface on exposed stone.
	if c.Surface != BlockLeaves && mathx.Hash2(seed+23, wx, wz)%500 == 0 {
		c.Surface = BlockMagma
	}

	if c.Height < s.gen.SeaLevel {
		c.WaterTop = s.gen.SeaLevel
		c.Surface = BlockDirt
		if c.Height < 1 {
			c.Height = 1
		}
	}
	return c
}
