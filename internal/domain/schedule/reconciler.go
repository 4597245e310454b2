package schedule

import (
	"sort"
	"time"
)

// Policy: ventanas de tolerancia. Son configuración del shelter, no constantes.
type Policy struct {
	// Tolerance: distancia máxima entre el log y la hora de la ocurrencia.
	Tolerance time.Duration
	// GracePeriod: cuánto después de la hora sigue siendo due_now antes de missed.
	GracePeriod time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Tolerance: 60 * time.Minute, GracePeriod: 60 * time.Minute}
}

type Reconciler struct {
	Policy   Policy
	Location *time.Location
}

func NewReconciler(p Policy, loc *time.Location) Reconciler {
	if loc == nil {
		loc = time.UTC
	}
	return Reconciler{Policy: p, Location: loc}
}

// Matches: misma dosis, mismo animal, mismo día de calendario (zona del
// shelter) y |log - hora| <= Tolerance.
func (r Reconciler) Matches(o DoseOccurrence, l DoseLog) bool {
	_, ok := r.distance(o, l)
	return ok
}

func (r Reconciler) distance(o DoseOccurrence, l DoseLog) (time.Duration, bool) {
	if l.ScheduledDoseID != o.ScheduledDoseID || l.AnimalID != o.AnimalID {
		return 0, false
	}
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	if DateOf(l.TimeAdministered, loc) != o.Date {
		return 0, false
	}
	d := absDuration(l.TimeAdministered.Sub(o.DueAt))
	if d > r.Policy.Tolerance {
		return 0, false
	}
	return d, true
}

type candidate struct {
	occ  int
	log  int
	dist time.Duration
}

// Reconcile clasifica cada ocurrencia contra los logs, con now inyectado.
// Un log con OccurrenceID solo puede cubrir esa ocurrencia, aunque se haya
// registrado tarde; los logs ad hoc se asignan por cercanía dentro de la
// tolerancia. La asignación es uno a uno: un log nunca cubre dos
// ocurrencias. Entre candidatos gana el más cercano en el tiempo, después
// el orden de la ocurrencia y por último el id del log.
// El resultado respeta el orden de occs.
func (r Reconciler) Reconcile(occs []DoseOccurrence, logs []DoseLog, now time.Time) []DoseStatus {
	byID := make(map[string]int, len(occs))
	for i, o := range occs {
		byID[o.ID] = i
	}

	bound := make([]candidate, 0)
	adHoc := make([]candidate, 0)
	for j, l := range logs {
		if l.OccurrenceID != "" {
			i, ok := byID[l.OccurrenceID]
			if !ok {
				continue
			}
			o := occs[i]
			if l.ScheduledDoseID != o.ScheduledDoseID || l.AnimalID != o.AnimalID {
				continue
			}
			bound = append(bound, candidate{occ: i, log: j, dist: absDuration(l.TimeAdministered.Sub(o.DueAt))})
			continue
		}
		for i, o := range occs {
			if d, ok := r.distance(o, l); ok {
				adHoc = append(adHoc, candidate{occ: i, log: j, dist: d})
			}
		}
	}

	matched := make(map[int]int, len(logs))
	usedLog := make(map[int]bool, len(logs))
	assign := func(cands []candidate) {
		sort.SliceStable(cands, func(a, b int) bool {
			ca, cb := cands[a], cands[b]
			if ca.dist != cb.dist {
				return ca.dist < cb.dist
			}
			if ca.occ != cb.occ {
				return ca.occ < cb.occ
			}
			return logs[ca.log].ID < logs[cb.log].ID
		})
		for _, c := range cands {
			if _, done := matched[c.occ]; done || usedLog[c.log] {
				continue
			}
			matched[c.occ] = c.log
			usedLog[c.log] = true
		}
	}
	// Primero los vínculos explícitos; los ad hoc completan lo que queda.
	assign(bound)
	assign(adHoc)

	out := make([]DoseStatus, 0, len(occs))
	for i, o := range occs {
		st := DoseStatus{Occurrence: o}
		if j, ok := matched[i]; ok {
			l := logs[j]
			st.Log = &l
			if l.WasGiven {
				st.Status = StatusGiven
			} else {
				st.Status = StatusSkipped
			}
		} else {
			st.Status = r.timeStatus(o, now)
		}
		out = append(out, st)
	}
	return out
}

func (r Reconciler) timeStatus(o DoseOccurrence, now time.Time) DoseStatusKind {
	switch {
	case now.After(o.DueAt.Add(r.Policy.GracePeriod)):
		return StatusMissed
	case !now.Before(o.DueAt):
		return StatusDueNow
	default:
		return StatusUpcoming
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
