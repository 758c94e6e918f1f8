package validate

import (
	"fmt"
	"time"

	"github.com/c360/workplan/resource"
)

// DatePair validates a start/end date pair: both must be real calendar
// dates, start must precede end, and both years must fall inside the
// accepted window. The context string prefixes positional errors so batch
// callers can attribute a violation to the right item.
//
// It reports at most one error; the structural pass already covers the
// field-level checks, so the first business violation is the useful one.
func (v *Validator) DatePair(start, end, context string) []string {
	startT, ok := parseCalendarDate(start)
	if !ok {
		return []string{unrealDate(start)}
	}
	endT, ok := parseCalendarDate(end)
	if !ok {
		return []string{unrealDate(end)}
	}

	if !startT.Before(endT) {
		return []string{context + "fecha_inicio debe ser anterior a fecha_fin"}
	}

	minYear := v.MinYear
	if minYear == 0 {
		minYear = 2024
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	maxYear := now().Year()

	startYear, endYear := startT.Year(), endT.Year()
	switch {
	case startYear < minYear:
		return []string{fmt.Sprintf("%sfecha_inicio: año %d muy antiguo (mínimo: %d)", context, startYear, minYear)}
	case startYear > maxYear:
		return []string{fmt.Sprintf("%sfecha_inicio: año %d no puede ser futuro (máximo: %d)", context, startYear, maxYear)}
	case endYear < minYear:
		return []string{fmt.Sprintf("%sfecha_fin: año %d muy antiguo (mínimo: %d)", context, endYear, minYear)}
	case endYear > maxYear+1:
		return []string{fmt.Sprintf("%sfecha_fin: año %d muy lejano (máximo: %d)", context, endYear, maxYear+1)}
	}
	return nil
}

// parseCalendarDate parses DD-MM-YYYY and rejects dates that do not exist
// on the calendar, such as 31-02-2025. time.Parse already refuses
// out-of-range components for this layout.
func parseCalendarDate(s string) (time.Time, bool) {
	if !dateRe.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(resource.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func unrealDate(s string) string {
	return fmt.Sprintf("La fecha %s no es válida. Verifica que el día, mes y año correspondan a una fecha real (por ejemplo, revisa si el año es bisiesto).", s)
}
