package world

import (
	"sort"

	"github.com/Jolva/SuperQuester-sub001/internal/sim/world/logic/mathx"
)

// Block ids for the column world. The terrain is a heightmap: everything at
// or below a column's surface height is the column's material, everything
// above is air or water, so a palette catalog would be overkill here.
const (
	BlockAir uint16 = iota
	BlockStone
	BlockDirt
	BlockGrass
	BlockSand
	BlockWater
	BlockMagma
	BlockLeaves
	BlockCactus
)

var blockNames = map[uint16]string{
	BlockAir:    "AIR",
	BlockStone:  "STONE",
	BlockDirt:   "DIRT",
	BlockGrass:  "GRASS",
	BlockSand:   "SAND",
	BlockWater:  "WATER",
	BlockMagma:  "MAGMA",
	BlockLeaves: "LEAVES",
	BlockCactus: "CACTUS",
}

func BlockName(b uint16) string {
	if s, ok := blockNames[b]; ok {
		return s
	}
	return "UNKNOWN"
}

type ChunkKey struct {
	CX int
	CZ int
}

// column describes one terrain column. Height is the Y of the topmost solid
// cell, Surface is its material, WaterTop is the Y of the highest water cell
// (0 when the column is dry).
type column struct {
	Height   int
	Surface  uint16
	WaterTop int
}

type Chunk struct {
	CX, CZ  int
	Columns []column // len = 16*16, x fastest then z

	// overrides holds per-cell edits layered over the heightmap,
	// keyed by local (x, y, z). Used by tests and debug tooling.
	overrides map[Vec3i]uint16
}

func (c *Chunk) index(x, z int) int { return x + z*16 }

func (c *Chunk) col(x, z int) *column { return &c.Columns[c.index(x, z)] }

type WorldGen struct {
	Seed      int64
	SeaLevel  int
	BoundaryR int // blocks, 0 means unbounded
}

type ChunkStore struct {
	gen WorldGen
	// Accessed only from the world loop goroutine.
	chunks map[ChunkKey]*Chunk
}

func NewChunkStore(gen WorldGen) *ChunkStore {
	return &ChunkStore{
		gen:    gen,
		chunks: map[ChunkKey]*Chunk{},
	}
}

func (s *ChunkStore) inBounds(x, z int) bool {
	if s.gen.BoundaryR > 0 {
		if x < -s.gen.BoundaryR || x > s.gen.BoundaryR || z < -s.gen.BoundaryR || z > s.gen.BoundaryR {
			return false
		}
	}
	return true
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

func chunkKeyFor(x, z int) ChunkKey {
	return ChunkKey{CX: mathx.FloorDiv(x, 16), CZ: mathx.FloorDiv(z, 16)}
}

func (s *ChunkStore) Loaded(x, z int) bool {
	_, ok := s.chunks[chunkKeyFor(x, z)]
	return ok
}

// EnsureLoaded generates the chunk containing (x, z) if it is not resident.
func (s *ChunkStore) EnsureLoaded(x, z int) *Chunk {
	key := chunkKeyFor(x, z)
	if ch, ok := s.chunks[key]; ok {
		return ch
	}
	ch := s.generate(key)
	s.chunks[key] = ch
	return ch
}

// TopmostSurface reports the Y and material of the topmost non-air cell in
// the column at (x, z), which is water for submerged columns. ok is false
// when the chunk is not loaded or the column is out of bounds; callers must
// not force-load terrain implicitly.
func (s *ChunkStore) TopmostSurface(x, z int) (int, uint16, bool) {
	if !s.inBounds(x, z) {
		return 0, BlockAir, false
	}
	ch, ok := s.chunks[chunkKeyFor(x, z)]
	if !ok {
		return 0, BlockAir, false
	}
	col := ch.col(mathx.Mod(x, 16), mathx.Mod(z, 16))
	if col.WaterTop > col.Height {
		return col.WaterTop, BlockWater, true
	}
	return col.Height, col.Surface, true
}

// SetColumn replaces the terrain column at (x, z), loading its chunk if
// needed. Debug/test surface.
func (s *ChunkStore) SetColumn(x, z int, c column) {
	ch := s.EnsureLoaded(x, z)
	*ch.col(mathx.Mod(x, 16), mathx.Mod(z, 16)) = c
}

// BlockAt reports the material at a cell. ok is false when the chunk is not
// loaded, so callers can distinguish "air" from "unknown".
func (s *ChunkStore) BlockAt(x, y, z int) (uint16, bool) {
	if !s.inBounds(x, z) || y < 0 {
		return BlockAir, false
	}
	ch, ok := s.chunks[chunkKeyFor(x, z)]
	if !ok {
		return BlockAir, false
	}
	lx := mathx.Mod(x, 16)
	lz := mathx.Mod(z, 16)
	if ov, hit := ch.overrides[Vec3i{X: lx, Y: y, Z: lz}]; hit {
		return ov, true
	}
	col := ch.col(lx, lz)
	switch {
	case y <= col.Height:
		if y == col.Height {
			return col.Surface, true
		}
		return BlockStone, true
	case col.WaterTop > 0 && y <= col.WaterTop:
		return BlockWater, true
	default:
		return BlockAir, true
	}
}

// SetBlock records a per-cell override. The chunk is loaded on demand; this
// is a debug/test surface, not a gameplay one.
func (s *ChunkStore) SetBlock(pos Vec3i, b uint16) {
	ch := s.EnsureLoaded(pos.X, pos.Z)
	if ch.overrides == nil {
		ch.overrides = map[Vec3i]uint16{}
	}
	lx := mathx.Mod(pos.X, 16)
	lz := mathx.Mod(pos.Z, 16)
	ch.overrides[Vec3i{X: lx, Y: pos.Y, Z: lz}] = b
}
