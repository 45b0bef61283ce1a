package api

import (
	"encoding/json"
	"time"
)

// MinuteLayout is the wall-clock format used for schedule times in request and
// response bodies.
const MinuteLayout = "2006-01-02 15:04"

var zone = time.Local

// SetTimeZone sets the zone request times are interpreted in. Call it once at
// startup.
func SetTimeZone(loc *time.Location) {
	if loc != nil {
		zone = loc
	}
}

// Minute is a time with minute precision encoded as "2006-01-02 15:04".
type Minute struct {
	time.Time
}

func (m *Minute) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.ParseInLocation(MinuteLayout, s, zone)
	if err != nil {
		return err
	}
	m.Time = t
	return nil
}

func (m Minute) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.In(zone).Format(MinuteLayout))
}

// FormatMinute renders t in the configured zone.
func FormatMinute(t time.Time) string {
	return t.In(zone).Format(MinuteLayout)
}
