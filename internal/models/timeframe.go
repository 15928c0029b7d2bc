// internal/models/timeframe.go

package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// IndefinitePauseDays is the sentinel encoding "paused until further
// notice" in a threshold timeframe.
const IndefinitePauseDays = 99

// Timeframe is the duration of a threshold-level pause. It arrives either
// as a structured object or as free text like "1 day, 03:00:00".
type Timeframe struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Indefinite reports whether this timeframe encodes the indefinite-pause
// sentinel.
func (t Timeframe) Indefinite() bool {
	return t.Days == IndefinitePauseDays
}

// Duration converts the timeframe to a time.Duration.
func (t Timeframe) Duration() time.Duration {
	return time.Duration(t.Days)*24*time.Hour +
		time.Duration(t.Hours)*time.Hour +
		time.Duration(t.Minutes)*time.Minute +
		time.Duration(t.Seconds)*time.Second
}

func (t Timeframe) String() string {
	if t.Days == 1 {
		return fmt.Sprintf("1 day, %d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
	}
	if t.Days > 0 {
		return fmt.Sprintf("%d days, %d:%02d:%02d", t.Days, t.Hours, t.Minutes, t.Seconds)
	}
	return fmt.Sprintf("%d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

var dayPattern = regexp.MustCompile(`(\d+)\s*day`)

// ParseTimeframe parses either serialized JSON ({"days":99,...}) or the
// free-text form "<N> day(s), H:MM:SS", "H:MM:SS" or "<N> days".
func ParseTimeframe(raw string) (Timeframe, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Timeframe{}, fmt.Errorf("empty timeframe")
	}

	if strings.HasPrefix(raw, "{") {
		var tf Timeframe
		if err := json.Unmarshal([]byte(raw), &tf); err != nil {
			return Timeframe{}, fmt.Errorf("invalid timeframe object %q: %w", raw, err)
		}
		return tf, nil
	}

	var tf Timeframe
	timePart := raw

	if strings.Contains(raw, "day") {
		m := dayPattern.FindStringSubmatch(raw)
		if m == nil {
			return Timeframe{}, fmt.Errorf("invalid day component in timeframe %q", raw)
		}
		tf.Days, _ = strconv.Atoi(m[1])

		parts := strings.SplitN(raw, ",", 2)
		if len(parts) < 2 {
			// "99 days" with no clock part
			return tf, nil
		}
		timePart = strings.TrimSpace(parts[1])
	}

	clock := strings.Split(timePart, ":")
	if len(clock) != 3 {
		return Timeframe{}, fmt.Errorf("invalid time component in timeframe %q", raw)
	}

	var err error
	if tf.Hours, err = strconv.Atoi(strings.TrimSpace(clock[0])); err != nil {
		return Timeframe{}, fmt.Errorf("invalid hours in timeframe %q", raw)
	}
	if tf.Minutes, err = strconv.Atoi(strings.TrimSpace(clock[1])); err != nil {
		return Timeframe{}, fmt.Errorf("invalid minutes in timeframe %q", raw)
	}
	if tf.Seconds, err = strconv.Atoi(strings.TrimSpace(clock[2])); err != nil {
		return Timeframe{}, fmt.Errorf("invalid seconds in timeframe %q", raw)
	}

	return tf, nil
}
