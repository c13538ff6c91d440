// Package scheduler runs recurring jobs on 5-field cron schedules, one tick at
// a time, guarded by a file lock so concurrent processes do not overlap.
package scheduler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Schedule is a parsed cron expression: minute, hour, day-of-month, month,
// day-of-week.
type Schedule struct {
	expr       string
	minute     []int
	hour       []int
	dayOfMonth []int
	month      []int
	dayOfWeek  []int
}

type fieldSpec struct {
	name     string
	min, max int
	aliases  map[string]int
}

var (
	weekdayAliases = map[string]int{"SUN": 0, "MON": 1, "TUE": 2, "WED": 3, "THU": 4, "FRI": 5, "SAT": 6}
	monthAliases   = map[string]int{
		"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
		"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
	}

	fields = [5]fieldSpec{
		{name: "minute", min: 0, max: 59},
		{name: "hour", min: 0, max: 23},
		{name: "day-of-month", min: 1, max: 31},
		{name: "month", min: 1, max: 12, aliases: monthAliases},
		// 7 is accepted as Sunday and folded to 0.
		{name: "day-of-week", min: 0, max: 7, aliases: weekdayAliases},
	}
)

// Parse reads a cron expression such as "0 7 * * MON" or "*/15 6-18 * * 1-5".
// Each field accepts *, N, N-M, */S, N-M/S and comma lists; month and weekday
// also accept three-letter names.
func Parse(expr string) (*Schedule, error) {
	parts := strings.Fields(expr)
	if len(parts) != len(fields) {
		return nil, fmt.Errorf("cron %q: expected 5 fields, got %d", expr, len(parts))
	}
	var sets [5][]int
	for i, raw := range parts {
		set, err := parseField(raw, fields[i])
		if err != nil {
			return nil, fmt.Errorf("cron %q: %s: %w", expr, fields[i].name, err)
		}
		sets[i] = set
	}
	dow := sets[4]
	if slices.Contains(dow, 7) {
		dow = slices.DeleteFunc(dow, func(v int) bool { return v == 7 })
		if !slices.Contains(dow, 0) {
			dow = append([]int{0}, dow...)
		}
	}
	return &Schedule{
		expr:       strings.Join(parts, " "),
		minute:     sets[0],
		hour:       sets[1],
		dayOfMonth: sets[2],
		month:      sets[3],
		dayOfWeek:  dow,
	}, nil
}

// MustParse panics on an invalid expression. For built-in schedules only.
func MustParse(expr string) *Schedule {
	s, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schedule) String() string { return s.expr }

// Matches reports whether t's wall-clock minute is on the schedule.
func (s *Schedule) Matches(t time.Time) bool {
	return slices.Contains(s.minute, t.Minute()) &&
		slices.Contains(s.hour, t.Hour()) &&
		slices.Contains(s.dayOfMonth, t.Day()) &&
		slices.Contains(s.month, int(t.Month())) &&
		slices.Contains(s.dayOfWeek, int(t.Weekday()))
}

// Next returns the first matching minute strictly after t, in t's location.
// It gives up after two years and returns the zero time.
func (s *Schedule) Next(t time.Time) time.Time {
	c := t.Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(2, 0, 0)
	loc := t.Location()
	for c.Before(limit) {
		switch {
		case !slices.Contains(s.month, int(c.Month())):
			c = time.Date(c.Year(), c.Month()+1, 1, 0, 0, 0, 0, loc)
		case !slices.Contains(s.dayOfMonth, c.Day()) || !slices.Contains(s.dayOfWeek, int(c.Weekday())):
			c = time.Date(c.Year(), c.Month(), c.Day()+1, 0, 0, 0, 0, loc)
		case !slices.Contains(s.hour, c.Hour()):
			c = time.Date(c.Year(), c.Month(), c.Day(), c.Hour()+1, 0, 0, 0, loc)
		case !slices.Contains(s.minute, c.Minute()):
			c = c.Add(time.Minute)
		default:
			return c
		}
	}
	return time.Time{}
}

func parseField(raw string, spec fieldSpec) ([]int, error) {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		vals, err := parseRange(part, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func parseRange(part string, spec fieldSpec) ([]int, error) {
	body, stepText, hasStep := strings.Cut(part, "/")
	step := 1
	if hasStep {
		n, err := strconv.Atoi(stepText)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid step %q", part)
		}
		step = n
	}

	lo, hi := spec.min, spec.max
	switch {
	case body == "*":
	case strings.Contains(body, "-"):
		a, b, _ := strings.Cut(body, "-")
		var err error
		if lo, err = value(a, spec); err != nil {
			return nil, err
		}
		if hi, err = value(b, spec); err != nil {
			return nil, err
		}
		if lo > hi {
			return nil, fmt.Errorf("range %q runs backwards", body)
		}
	default:
		v, err := value(body, spec)
		if err != nil {
			return nil, err
		}
		if hasStep {
			return nil, fmt.Errorf("step needs a range in %q", part)
		}
		return []int{v}, nil
	}

	out := make([]int, 0, (hi-lo)/step+1)
	for v := lo; v <= hi; v += step {
		out = append(out, v)
	}
	return out, nil
}

func value(s string, spec fieldSpec) (int, error) {
	if v, ok := spec.aliases[strings.ToUpper(s)]; ok {
		return v, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if v < spec.min || v > spec.max {
		return 0, fmt.Errorf("value %d out of bounds [%d,%d]", v, spec.min, spec.max)
	}
	return v, nil
}
