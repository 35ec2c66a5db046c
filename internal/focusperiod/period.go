// Package focusperiod models the weekly lock on the app title: an
// explicit state value (inactive, or active since a start instant)
// whose expiry is a pure function of (start, now). It is independent of
// any individual task's discipline lock.
package focusperiod

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/akyairhashvil/ascetic/internal/config"
	"github.com/akyairhashvil/ascetic/internal/models"
)

// Period is the weekly focus period state. The zero value is inactive
// with the production duration; use New to set it explicitly.
type Period struct {
	start    *time.Time
	duration time.Duration
}

// New returns an inactive period with the given duration.
func New(duration time.Duration) *Period {
	if duration <= 0 {
		duration = config.FocusPeriod
	}
	return &Period{duration: duration}
}

// Active reports whether a period is running.
func (p *Period) Active() bool { return p.start != nil }

// Start returns the start instant, or zero time when inactive.
func (p *Period) Start() (time.Time, bool) {
	if p.start == nil {
		return time.Time{}, false
	}
	return *p.start, true
}

// Commit begins a period when the title commits with non-empty trimmed
// content and no period is already active. Reports whether a period was
// started.
func (p *Period) Commit(title string, now time.Time) bool {
	if p.start != nil {
		return false
	}
	if strings.TrimSpace(title) == "" {
		return false
	}
	t := now
	p.start = &t
	return true
}

// Check evaluates expiry at the given instant. An elapsed period clears
// the stored start; the caller clears the title and emits the success
// signal. Reports whether the period just expired.
func (p *Period) Check(now time.Time) bool {
	if p.start == nil {
		return false
	}
	if now.Before(p.start.Add(p.duration)) {
		return false
	}
	p.start = nil
	return true
}

// Locked reports whether the title field is currently immutable.
func (p *Period) Locked(now time.Time) bool {
	return p.start != nil && now.Before(p.start.Add(p.duration))
}

// HoursRemaining returns ceil(time left / 1h) while active.
func (p *Period) HoursRemaining(now time.Time) (int, bool) {
	if p.start == nil {
		return 0, false
	}
	left := p.start.Add(p.duration).Sub(now)
	if left <= 0 {
		return 0, false
	}
	return int(math.Ceil(left.Hours())), true
}

// StartMillis encodes the start as a decimal-string epoch-millisecond
// timestamp for the snapshot wire shape, or nil when inactive.
func (p *Period) StartMillis() *string {
	if p.start == nil {
		return nil
	}
	s := strconv.FormatInt(models.TimeToMillis(*p.start), 10)
	return &s
}

// SetStartMillis replaces the state from a wire/settings value. Nil or
// unparsable input deactivates the period.
func (p *Period) SetStartMillis(v *string) {
	if v == nil || *v == "" {
		p.start = nil
		return
	}
	ms, err := strconv.ParseInt(*v, 10, 64)
	if err != nil {
		p.start = nil
		return
	}
	t := models.MillisToTime(ms)
	p.start = &t
}

// Clear deactivates the period.
func (p *Period) Clear() { p.start = nil }
