package schedule

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Nixie-Tech-LLC/memo/internal/apperr"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	dateLayout = "2006-01-02"
)

// ModifiedWindow selects schedules by last modification time. It is one of
// AnyTime, Lookback or DateRange.
type ModifiedWindow interface {
	// Bounds resolves the window to inclusive limits; nil means unbounded.
	Bounds(now time.Time, loc *time.Location) (from, to *time.Time)
	window()
}

// AnyTime applies no time predicate.
type AnyTime struct{}

func (AnyTime) Bounds(time.Time, *time.Location) (*time.Time, *time.Time) { return nil, nil }
func (AnyTime) window()                                                   {}

// Lookback matches schedules modified within a relative period before now.
type Lookback struct {
	Mode string
}

var lookbacks = map[string]func(time.Time) time.Time{
	"30m": func(t time.Time) time.Time { return t.Add(-30 * time.Minute) },
	"1h":  func(t time.Time) time.Time { return t.Add(-time.Hour) },
	"1d":  func(t time.Time) time.Time { return t.Add(-24 * time.Hour) },
	"1w":  func(t time.Time) time.Time { return t.Add(-7 * 24 * time.Hour) },
	"1m":  func(t time.Time) time.Time { return t.AddDate(0, -1, 0) },
	"3m":  func(t time.Time) time.Time { return t.AddDate(0, -3, 0) },
	"6m":  func(t time.Time) time.Time { return t.AddDate(0, -6, 0) },
}

func (l Lookback) Bounds(now time.Time, _ *time.Location) (*time.Time, *time.Time) {
	sub, ok := lookbacks[l.Mode]
	if !ok {
		return nil, nil
	}
	from := sub(now)
	return &from, nil
}

func (Lookback) window() {}

// DateRange matches whole calendar days. Either side may be absent.
type DateRange struct {
	Start *time.Time // date part only
	End   *time.Time // date part only
}

func (d DateRange) Bounds(_ time.Time, loc *time.Location) (*time.Time, *time.Time) {
	var from, to *time.Time
	if d.Start != nil {
		t := time.Date(d.Start.Year(), d.Start.Month(), d.Start.Day(), 0, 0, 0, 0, loc)
		from = &t
	}
	if d.End != nil {
		t := time.Date(d.End.Year(), d.End.Month(), d.End.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
		to = &t
	}
	return from, to
}

func (DateRange) window() {}

// Filter is a validated listing request.
type Filter struct {
	Page       int
	Limit      int
	Window     ModifiedWindow
	AuthorName string
}

// FilterParams carries the raw query string values.
type FilterParams struct {
	Page            string `form:"page"`
	Limit           string `form:"limit"`
	ModifiedAt      string `form:"modifiedAt"`
	StartModifiedAt string `form:"startModifiedAt"`
	EndModifiedAt   string `form:"endModifiedAt"`
	AuthorName      string `form:"authorName"`
}

// BuildFilter validates p. A non-empty modifiedAt wins over explicit dates and an
// unrecognized mode means no time filter.
func BuildFilter(p FilterParams) (Filter, error) {
	f := Filter{Page: 0, Limit: DefaultLimit, Window: AnyTime{}, AuthorName: p.AuthorName}
	fields := map[string]string{}

	if s := strings.TrimSpace(p.Page); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			fields["page"] = "must be a non-negative integer"
		}
		f.Page = n
	}
	if s := strings.TrimSpace(p.Limit); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxLimit {
			fields["limit"] = "must be an integer between 1 and " + strconv.Itoa(MaxLimit)
		}
		f.Limit = n
	}
	if fields["page"] == "" && fields["limit"] == "" && !pageInRange(f.Page, f.Limit) {
		fields["page"] = "is too large"
	}

	if mode := strings.TrimSpace(p.ModifiedAt); mode != "" {
		if _, ok := lookbacks[mode]; ok {
			f.Window = Lookback{Mode: mode}
		}
	} else {
		var r DateRange
		r.Start = parseDate(p.StartModifiedAt, "startModifiedAt", fields)
		r.End = parseDate(p.EndModifiedAt, "endModifiedAt", fields)
		if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
			fields["endModifiedAt"] = "must not be before startModifiedAt"
		}
		if r.Start != nil || r.End != nil {
			f.Window = r
		}
	}

	if len(fields) > 0 {
		return Filter{}, apperr.Validation("invalid query parameters", fields)
	}
	return f, nil
}

// pageInRange reports whether the row window of page fits in an int, so
// page*limit plus the extra look-ahead row cannot overflow.
func pageInRange(page, limit int) bool {
	return limit > 0 && page >= 0 && page <= (math.MaxInt-limit-1)/limit
}

func parseDate(raw, field string, fields map[string]string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		fields[field] = "must be a date in YYYY-MM-DD format"
		return nil
	}
	return &t
}
