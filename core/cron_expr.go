package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	cronv3 "github.com/robfig/cron/v3"
)

// cronSchedule is chronos's own Quartz-flavored six/seven-field cron
// evaluator: second minute hour day-of-month month day-of-week [year]. It
// is the sole source of truth for NextFireTime/PreviousFireTime (spec.md
// §4.3) because neither robfig/cron/v3 nor the dropped netresearch/go-cron
// implement Quartz's `L`/`W`/`#`/`?`/optional-year grammar (see DESIGN.md).
type cronSchedule struct {
	expr     string
	seconds  fieldSet
	minutes  fieldSet
	hours    fieldSet
	dom      domField
	months   fieldSet
	dow      dowField
	years    fieldSet // empty set means "every year"
}

type fieldSet map[int]bool

type domField struct {
	set          fieldSet
	lastOfMonth  bool
	weekdayOf    int  // nearest-weekday target day, 0 if unused
	wildcard     bool
}

type dowField struct {
	set         fieldSet
	lastWeekday int // "5L" style: weekday with L suffix, -1 if unused
	nthWeekday  [2]int // "5#3" style: [weekday, n], n==0 if unused
	wildcard    bool
}

var monthNames = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

var dayNames = map[string]int{
	"SUN": 1, "MON": 2, "TUE": 3, "WED": 4, "THU": 5, "FRI": 6, "SAT": 7,
}

// parseCronExpression parses a Quartz-style cron expression. As a
// best-effort early sanity check, expressions that use no Quartz extensions
// (no L/W/#/?) are also parsed with robfig/cron/v3's standard parser; its
// result is ignored (chronos's own evaluator below always governs
// NextFireTime).
func parseCronExpression(expr string) (*cronSchedule, error) {
	fields := strings.Fields(expr)
	if len(fields) < 6 || len(fields) > 7 {
		return nil, fmt.Errorf("%w: %q: expected 6 or 7 fields, got %d", ErrInvalidCronExpression, expr, len(fields))
	}

	if !strings.ContainsAny(expr, "LW#?") {
		if _, err := cronv3.ParseStandard(joinStandard(fields)); err != nil {
			// Best-effort only; chronos's own fields below are authoritative.
			_ = err
		}
	}

	cs := &cronSchedule{expr: expr}

	var err error
	if cs.seconds, err = parseNumericField(fields[0], 0, 59, nil); err != nil {
		return nil, fmt.Errorf("%w: seconds: %v", ErrInvalidCronExpression, err)
	}
	if cs.minutes, err = parseNumericField(fields[1], 0, 59, nil); err != nil {
		return nil, fmt.Errorf("%w: minutes: %v", ErrInvalidCronExpression, err)
	}
	if cs.hours, err = parseNumericField(fields[2], 0, 23, nil); err != nil {
		return nil, fmt.Errorf("%w: hours: %v", ErrInvalidCronExpression, err)
	}
	if cs.dom, err = parseDOMField(fields[3]); err != nil {
		return nil, fmt.Errorf("%w: day-of-month: %v", ErrInvalidCronExpression, err)
	}
	if cs.months, err = parseNumericField(fields[4], 1, 12, monthNames); err != nil {
		return nil, fmt.Errorf("%w: month: %v", ErrInvalidCronExpression, err)
	}
	if cs.dow, err = parseDOWField(fields[5]); err != nil {
		return nil, fmt.Errorf("%w: day-of-week: %v", ErrInvalidCronExpression, err)
	}
	if len(fields) == 7 {
		if cs.years, err = parseNumericField(fields[6], 1970, 2199, nil); err != nil {
			return nil, fmt.Errorf("%w: year: %v", ErrInvalidCronExpression, err)
		}
	}

	if cs.dom.wildcard == cs.dow.wildcard && !(isQuestion(fields[3]) || isQuestion(fields[5])) {
		// Neither specified "?" and both are bare wildcards: Quartz requires
		// exactly one of day-of-month/day-of-week to be '?'. Being lenient
		// here (both '*') matches robfig/cron's looser standard grammar.
		if fields[3] != "*" || fields[5] != "*" {
			return nil, fmt.Errorf("%w: exactly one of day-of-month/day-of-week must be '?'", ErrInvalidCronExpression)
		}
	}

	return cs, nil
}

func isQuestion(f string) bool { return f == "?" }

func joinStandard(fields []string) string {
	// robfig/cron/v3's standard parser is 5-field (no seconds); drop ours.
	if len(fields) < 6 {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[1:6], " ")
}

func parseNumericField(f string, lo, hi int, names map[string]int) (fieldSet, error) {
	set := make(fieldSet)
	if f == "*" || f == "?" {
		for i := lo; i <= hi; i++ {
			set[i] = true
		}
		return set, nil
	}
	for _, part := range strings.Split(f, ",") {
		if err := parseRangePart(part, lo, hi, names, set); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func parseRangePart(part string, lo, hi int, names map[string]int, set fieldSet) error {
	step := 1
	base := part
	if idx := strings.Index(part, "/"); idx >= 0 {
		base = part[:idx]
		s, err := strconv.Atoi(part[idx+1:])
		if err != nil {
			return fmt.Errorf("invalid step %q", part)
		}
		step = s
	}

	rangeLo, rangeHi := lo, hi
	switch {
	case base == "*":
		// full range
	case strings.Contains(base, "-"):
		bounds := strings.SplitN(base, "-", 2)
		a, err := resolveValue(bounds[0], names)
		if err != nil {
			return err
		}
		b, err := resolveValue(bounds[1], names)
		if err != nil {
			return err
		}
		rangeLo, rangeHi = a, b
	default:
		v, err := resolveValue(base, names)
		if err != nil {
			return err
		}
		rangeLo, rangeHi = v, v
		step = 1
	}

	for v := rangeLo; v <= rangeHi; v += step {
		if v >= lo && v <= hi {
			set[v] = true
		}
	}
	return nil
}

func resolveValue(s string, names map[string]int) (int, error) {
	if names != nil {
		if v, ok := names[strings.ToUpper(s)]; ok {
			return v, nil
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return v, nil
}

func parseDOMField(f string) (domField, error) {
	switch {
	case f == "*" || f == "?":
		set := make(fieldSet)
		for i := 1; i <= 31; i++ {
			set[i] = true
		}
		return domField{set: set, wildcard: true}, nil
	case f == "L":
		return domField{lastOfMonth: true}, nil
	case strings.HasSuffix(f, "W"):
		n, err := strconv.Atoi(strings.TrimSuffix(f, "W"))
		if err != nil {
			return domField{}, fmt.Errorf("invalid nearest-weekday spec %q", f)
		}
		return domField{weekdayOf: n}, nil
	default:
		set, err := parseNumericField(f, 1, 31, nil)
		if err != nil {
			return domField{}, err
		}
		return domField{set: set}, nil
	}
}

func parseDOWField(f string) (dowField, error) {
	switch {
	case f == "*" || f == "?":
		set := make(fieldSet)
		for i := 1; i <= 7; i++ {
			set[i] = true
		}
		return dowField{set: set, lastWeekday: -1, wildcard: true}, nil
	case strings.HasSuffix(f, "L"):
		v, err := resolveValue(strings.TrimSuffix(f, "L"), dayNames)
		if err != nil {
			return dowField{}, err
		}
		return dowField{lastWeekday: v}, nil
	case strings.Contains(f, "#"):
		parts := strings.SplitN(f, "#", 2)
		v, err := resolveValue(parts[0], dayNames)
		if err != nil {
			return dowField{}, err
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return dowField{}, fmt.Errorf("invalid nth-weekday spec %q", f)
		}
		return dowField{lastWeekday: -1, nthWeekday: [2]int{v, n}}, nil
	default:
		set, err := parseNumericField(f, 1, 7, dayNames)
		if err != nil {
			return dowField{}, err
		}
		return dowField{set: set, lastWeekday: -1}, nil
	}
}

// matches reports whether t satisfies every field of the expression.
func (cs *cronSchedule) matches(t time.Time) bool {
	if !cs.seconds[t.Second()] || !cs.minutes[t.Minute()] || !cs.hours[t.Hour()] {
		return false
	}
	if !cs.months[int(t.Month())] {
		return false
	}
	if len(cs.years) > 0 && !cs.years[t.Year()] {
		return false
	}
	return cs.domMatches(t) && cs.dowMatches(t)
}

func (cs *cronSchedule) domMatches(t time.Time) bool {
	d := cs.dom
	switch {
	case d.wildcard:
		return true
	case d.lastOfMonth:
		return t.Day() == lastDayOfMonth(t)
	case d.weekdayOf > 0:
		return t.Day() == nearestWeekday(t, d.weekdayOf)
	default:
		return d.set[t.Day()]
	}
}

func (cs *cronSchedule) dowMatches(t time.Time) bool {
	d := cs.dow
	wd := int(t.Weekday()) + 1 // time.Sunday==0 -> Quartz 1=SUN
	switch {
	case d.wildcard:
		return true
	case d.lastWeekday > 0:
		return wd == d.lastWeekday && t.Day()+7 > lastDayOfMonth(t)
	case d.nthWeekday[1] > 0:
		if wd != d.nthWeekday[0] {
			return false
		}
		return (t.Day()-1)/7+1 == d.nthWeekday[1]
	default:
		return d.set[wd]
	}
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func nearestWeekday(t time.Time, day int) int {
	last := lastDayOfMonth(t)
	if day > last {
		day = last
	}
	d := time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, t.Location())
	switch d.Weekday() {
	case time.Saturday:
		if day == 1 {
			return day + 2
		}
		return day - 1
	case time.Sunday:
		if day == last {
			return day - 2
		}
		return day + 1
	default:
		return day
	}
}

// next returns the smallest instant strictly after 'after' that matches, or
// nil if none exists within a 5-year search horizon. It searches
// month-by-month for a day satisfying the day-of-month/day-of-week/month
// constraints, then does field-by-field constraint satisfaction for
// hour/minute/second within that day (spec.md §4.3).
func (cs *cronSchedule) next(after time.Time, loc *time.Location) *time.Time {
	start := after.In(loc).Add(time.Second).Truncate(time.Second)
	horizon := start.AddDate(5, 0, 0)

	year, month := start.Year(), start.Month()
	firstDay := start

	for {
		monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		if monthStart.After(horizon) {
			return nil
		}

		if cs.months[int(month)] && (len(cs.years) == 0 || cs.years[year]) {
			dayFrom := 1
			if year == firstDay.Year() && month == firstDay.Month() {
				dayFrom = firstDay.Day()
			}
			last := lastDayOfMonth(monthStart)
			for day := dayFrom; day <= last; day++ {
				candidateDay := time.Date(year, month, day, 0, 0, 0, 0, loc)
				if !cs.domMatches(candidateDay) || !cs.dowMatches(candidateDay) {
					continue
				}
				lowerBound := time.Time{}
				if day == firstDay.Day() && month == firstDay.Month() && year == firstDay.Year() {
					lowerBound = start
				} else {
					lowerBound = candidateDay
				}
				if t := cs.nextTimeOfDay(candidateDay, lowerBound); t != nil {
					return t
				}
			}
		}

		month++
		if month > 12 {
			month = 1
			year++
		}
	}
}

// nextTimeOfDay finds the smallest hour/minute/second on day (at or after
// lowerBound) satisfying the hour/minute/second fields.
func (cs *cronSchedule) nextTimeOfDay(day, lowerBound time.Time) *time.Time {
	for h := 0; h <= 23; h++ {
		if !cs.hours[h] {
			continue
		}
		for m := 0; m <= 59; m++ {
			if !cs.minutes[m] {
				continue
			}
			for s := 0; s <= 59; s++ {
				if !cs.seconds[s] {
					continue
				}
				candidate := time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, day.Location())
				if candidate.Before(lowerBound) {
					continue
				}
				return &candidate
			}
		}
	}
	return nil
}
