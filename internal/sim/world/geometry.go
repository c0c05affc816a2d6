package world

import (
	"math"

	"github.com/Jolva/SuperQuester-sub001/internal/sim/hunt"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/world/logic/mathx"
)

// selectTargetArea samples a zone center uniformly by area inside the tier's
// ring around the world anchor. The surrounding terrain may not be loaded;
// no environment inspection happens here. Returns nil for an unconfigured
// tier, which is a config error the caller must treat as fatal.
func (w *World) selectTargetArea(tier int) *hunt.Zone {
	var inner, outer float64
	found := false
	for _, r := range w.cfg.Encounter.Rings {
		if r.Tier == tier {
			inner, outer = float64(r.Inner), float64(r.Outer)
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	// sqrt-of-uniform keeps density even across the ring's area instead of
	// bunching samples at the inner edge.
	u := w.rng.Float64()
	r := math.Sqrt(u*(outer*outer-inner*inner) + inner*inner)
	theta := w.rng.Float64() * 2 * math.Pi
	return &hunt.Zone{
		CenterX:       w.cfg.Anchor.X + int(math.Round(r*math.Cos(theta))),
		CenterZ:       w.cfg.Anchor.Z + int(math.Round(r*math.Sin(theta))),
		TriggerRadius: w.cfg.Encounter.TriggerRadius,
		Tier:          tier,
	}
}

// Surfaces hostiles cannot stand on.
func disallowedSurface(b uint16) bool {
	switch b {
	case BlockWater, BlockMagma, BlockLeaves, BlockCactus:
		return true
	}
	return false
}

func (w *World) validSpawnCell(x, z int) (Vec3i, bool) {
	gy, surf, ok := w.chunks.TopmostSurface(x, z)
	if !ok || disallowedSurface(surf) {
		return Vec3i{}, false
	}
	// Two open cells above the surface.
	for dy := 1; dy <= 2; dy++ {
		b, ok := w.chunks.BlockAt(x, gy+dy, z)
		if !ok || b != BlockAir {
			return Vec3i{}, false
		}
	}
	// Coastal columns can report a dry top with water sitting just above;
	// scan a short vertical span for intervening liquid.
	for dy := 1; dy <= 4; dy++ {
		b, ok := w.chunks.BlockAt(x, gy+dy, z)
		if ok && (b == BlockWater || b == BlockMagma) {
			return Vec3i{}, false
		}
	}
	return Vec3i{X: x, Y: gy + 1, Z: z}, true
}

// findSpawnPointNear tries a bounded number of candidates in a tight ring
// around pos. Call only once the vicinity is loaded; unloaded columns fail
// validation rather than force a load.
func (w *World) findSpawnPointNear(pos Vec3i) (Vec3i, bool) {
	inner := float64(w.cfg.Encounter.SpawnRingInner)
	outer := float64(w.cfg.Encounter.SpawnRingOuter)
	for i := 0; i < w.cfg.Encounter.SpawnAttempts; i++ {
		u := w.rng.Float64()
		r := math.Sqrt(u*(outer*outer-inner*inner) + inner*inner)
		theta := w.rng.Float64() * 2 * math.Pi
		x := pos.X + int(math.Round(r*math.Cos(theta)))
		z := pos.Z + int(math.Round(r*math.Sin(theta)))
		if p, ok := w.validSpawnCell(x, z); ok {
			return p, true
		}
	}
	return Vec3i{}, false
}

// fallbackLocation returns a pre-vetted spot for the tier. It never fails:
// the chunk is loaded on demand and the anchor serves any unconfigured tier.
func (w *World) fallbackLocation(tier int) Vec3i {
	var picks []Vec3i
	for _, f := range w.cfg.Encounter.Fallbacks {
		if f.Tier == tier {
			picks = append(picks, Vec3i{X: f.Pos[0], Y: f.Pos[1], Z: f.Pos[2]})
		}
	}
	var p Vec3i
	if len(picks) > 0 {
		p = picks[w.rng.Intn(len(picks))]
	} else {
		p = Vec3i{X: w.cfg.Anchor.X, Z: w.cfg.Anchor.Z}
	}
	w.chunks.EnsureLoaded(p.X, p.Z)
	gy, _, ok := w.chunks.TopmostSurface(p.X, p.Z)
	if ok {
		p.Y = gy + 1
	}
	return p
}

// headingDeg maps a planar delta to degrees in the yaw convention
// (0 faces north, which is -Z).
func headingDeg(dx, dz int) float64 {
	return mathx.NormDeg(math.Atan2(float64(dx), float64(-dz)) * 180 / math.Pi)
}

// compassLabel is the coarse 8-way direction from a to b. -Z is north.
func compassLabel(a, b Vec3i) string {
	dx := float64(b.X - a.X)
	dz := float64(b.Z - a.Z)
	if dx == 0 && dz == 0 {
		return "here"
	}
	deg := math.Atan2(dx, -dz) * 180 / math.Pi
	labels := []string{"north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}
	idx := int(math.Floor(mathx.NormDeg(deg)/45+0.5)) & 7
	return labels[idx]
}

var bearingArrows = [16]string{
	"↑", "↗", "↗", "→", "→", "↘", "↘", "↓",
	"↓", "↙", "↙", "←", "←", "↖", "↖", "↑",
}

// bearing16 quantizes the target direction relative to the player's facing
// into 16 sectors of 22.5 degrees and returns a directional symbol.
func bearing16(from Vec3i, yawDeg float64, to Vec3i) string {
	dx := float64(to.X - from.X)
	dz := float64(to.Z - from.Z)
	if dx == 0 && dz == 0 {
		return bearingArrows[0]
	}
	// Same convention as compassLabel: yaw 0 faces north (-Z).
	headingDeg := math.Atan2(dx, -dz) * 180 / math.Pi
	rel := mathx.NormDeg(headingDeg - yawDeg)
	// Sector 0 is centered straight ahead.
	sector := int(math.Floor((rel+11.25)/22.5)) & 15
	return bearingArrows[sector]
}
