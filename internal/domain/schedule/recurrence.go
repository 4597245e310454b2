package schedule

// IsActive responde si la regla dispara en day, tomando anchor como
// primer día de existencia de la dosis. Función pura y total: las reglas
// mal formadas ya se rechazaron en Validate; acá simplemente no disparan.
func (r RecurrenceRule) IsActive(day, anchor Date) bool {
	switch r.Type {
	case RecurrenceDaily:
		return true

	case RecurrenceEveryXDays:
		if r.IntervalDays < 1 {
			return false
		}
		return mod(DaysBetween(anchor, day), r.IntervalDays) == 0

	case RecurrenceWeekly:
		wd := day.Weekday()
		for _, w := range r.Weekdays {
			if w == wd {
				return true
			}
		}
		return false

	case RecurrenceBiWeekly:
		return mod(DaysBetween(anchor, day), 14) == 0

	case RecurrenceMonthly:
		// Ancla 31 en un mes de 30 días => dispara el 30 (último día).
		target := anchor.Day
		if last := DaysIn(day.Year, day.Month); target > last {
			target = last
		}
		return day.Day == target

	default:
		// as_needed y tipos desconocidos nunca generan ocurrencias.
		return false
	}
}

// mod euclídeo: fechas anteriores al ancla siguen la misma cadencia.
func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
