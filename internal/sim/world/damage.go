package world

type DamageCause string

const (
	CauseAttack   DamageCause = "ATTACK"
	CauseFire     DamageCause = "FIRE"
	CauseIgnition DamageCause = "IGNITION"
	CauseDrown    DamageCause = "DROWN"
	CauseHazard   DamageCause = "HAZARD" // magma submersion
	CauseFall     DamageCause = "FALL"
)

func fireRelated(c DamageCause) bool {
	return c == CauseFire || c == CauseIgnition
}

const effectSunWard = "SUN_WARD"

// damageHook sees every damage event before it lands. Returning false
// cancels the event.
type damageHook func(h *Hostile, cause DamageCause, amount int) bool

// installEncounterFireGuard installs the reactive backstop that cancels
// fire-type damage against encounter hostiles. Idempotent. Only fire-type
// causes are blocked: combat, falls and fluids must keep working so the
// hostiles stay killable by any means.
func (w *World) installEncounterFireGuard() {
	if w.fireGuardInstalled {
		return
	}
	w.fireGuardInstalled = true
	w.damageHooks = append(w.damageHooks, func(h *Hostile, cause DamageCause, _ int) bool {
		if h.Encounter && fireRelated(cause) {
			return false
		}
		return true
	})
}

// damageHostile runs the hook chain and applies the surviving damage.
// Returns true when the hostile died.
func (w *World) damageHostile(h *Hostile, cause DamageCause, amount int, attackerID string) bool {
	if h == nil || amount <= 0 {
		return false
	}
	for _, hook := range w.damageHooks {
		if !hook(h, cause, amount) {
			return false
		}
	}
	h.HP -= amount
	if h.HP > 0 {
		return false
	}
	w.killHostile(h, cause, attackerID)
	return true
}

// killHostile removes the hostile and, for encounter units, credits the
// bound quest instance. Attribution goes through the tag pair: the killer's
// identity is irrelevant to quest credit.
func (w *World) killHostile(h *Hostile, cause DamageCause, attackerID string) {
	delete(w.hostiles, h.ID)
	w.onHostileKilled(h, cause, attackerID)
}

// systemEnvironment applies passive environmental damage each tick.
func (w *World) systemEnvironment(nowTick uint64) {
	daylight := w.isDaylight(nowTick)
	// Collect first; damage mutates w.hostiles.
	var burn, drown, scald []*Hostile
	for _, h := range w.hostiles {
		if daylight && w.kindBurnsInDaylight(h.Kind) && !h.HasEffect(effectSunWard) {
			burn = append(burn, h)
		}
		if b, ok := w.chunks.BlockAt(h.Pos.X, h.Pos.Y, h.Pos.Z); ok {
			switch b {
			case BlockWater:
				drown = append(drown, h)
			case BlockMagma:
				scald = append(scald, h)
			}
		}
	}
	for _, h := range burn {
		w.damageHostile(h, CauseIgnition, 1, "")
	}
	for _, h := range drown {
		w.damageHostile(h, CauseDrown, 1, "")
	}
	for _, h := range scald {
		w.damageHostile(h, CauseHazard, 2, "")
	}
}

func (w *World) kindBurnsInDaylight(kind string) bool {
	def, ok := w.catalogs.Hostiles.ByID[kind]
	return ok && def.BurnsInDaylight
}

func (w *World) isDaylight(tick uint64) bool {
	if w.cfg.DayTicks <= 0 {
		return true
	}
	return tick%uint64(w.cfg.DayTicks) < uint64(w.cfg.DayTicks)/2
}
