package service

import (
	"sync"
	"time"

	"FieldMonitorAPI/internal/logger"
	"FieldMonitorAPI/internal/models"
)

// PauseDecision classifies the threshold-level pause state at a point in
// time.
type PauseDecision int

const (
	PauseNone PauseDecision = iota
	PauseActive
	PauseExpired
)

// SuppressionPolicy decides whether a threshold should be evaluated this
// cycle. Checks are ordered: admin kill, threshold pause, persisted
// interval throttle, then the in-process debounce owned by the checker.
type SuppressionPolicy struct {
	DefaultInterval time.Duration
	DebounceWindow  time.Duration
	log             *logger.Logger
}

func NewSuppressionPolicy(defaultInterval, debounceWindow time.Duration, log *logger.Logger) *SuppressionPolicy {
	return &SuppressionPolicy{
		DefaultInterval: defaultInterval,
		DebounceWindow:  debounceWindow,
		log:             log,
	}
}

// AdminKilled reports whether any recipient on the threshold matches an
// admin whose global kill switch is on.
func (p *SuppressionPolicy) AdminKilled(t *models.Threshold, admins []models.Admin) bool {
	for _, email := range t.Emails() {
		for _, a := range admins {
			if a.ThreshKill && a.Email == email {
				return true
			}
		}
	}

	for _, phone := range t.Phones() {
		for _, a := range admins {
			if a.ThreshKill && a.Phone == phone {
				return true
			}
		}
	}

	return false
}

// CheckPause evaluates the threshold-level pause. The returned time is the
// pause end, zero for indefinite pauses. A malformed timeframe is logged
// and treated as "pause inactive, evaluate normally".
func (p *SuppressionPolicy) CheckPause(t *models.Threshold, now time.Time) (PauseDecision, time.Time) {
	if !t.ThreshKill || t.Timeframe == nil {
		return PauseNone, time.Time{}
	}

	tf, err := models.ParseTimeframe(*t.Timeframe)
	if err != nil {
		p.log.Error("Malformed timeframe on threshold %d (%s): %v", t.ID, t.Metric, err)
		return PauseNone, time.Time{}
	}

	if tf.Indefinite() {
		return PauseActive, time.Time{}
	}

	end := t.Timestamp.Add(tf.Duration())
	if now.Before(end) {
		return PauseActive, end
	}

	return PauseExpired, end
}

// Throttled reports whether the persisted minimum alert interval is still
// running for this threshold.
func (p *SuppressionPolicy) Throttled(t *models.Threshold, lastAlert *time.Time, now time.Time) bool {
	if lastAlert == nil {
		return false
	}
	return now.Sub(*lastAlert) < t.Interval(p.DefaultInterval)
}

// DebounceMap tracks recent dispatch instants per threshold id. The state
// is process-local and resets on restart, which can allow one duplicate
// alert within the window after a restart.
type DebounceMap struct {
	mu    sync.Mutex
	times map[int]time.Time
}

func NewDebounceMap() *DebounceMap {
	return &DebounceMap{times: make(map[int]time.Time)}
}

// Recent reports whether the id was marked within the window before now.
func (d *DebounceMap) Recent(id int, now time.Time, window time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	last, ok := d.times[id]
	return ok && now.Sub(last) < window
}

// Mark records a dispatch instant for the id.
func (d *DebounceMap) Mark(id int, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.times[id] = now
}
