// Package booking holds the calendar rules shared by the appointment and
// scheduling services: slot start times, the edit lock window and the
// per-patient caps.
package booking

import (
	"time"

	"github.com/medibook/medibook_backend/config"
	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/pkg/timezone"
)

const (
	DefaultDailyLimit     = 4
	DefaultMaxSlotCancels = 2
	DefaultLockWindow     = 24 * time.Hour
	DefaultLockWait       = 5 * time.Second
)

type Policy struct {
	// Location the 07:30 / 13:30 slot starts are read in.
	Location       *time.Location
	DailyLimit     int
	MaxSlotCancels int
	// LockWindow is how close to work_date cancellations and schedule edits stop.
	LockWindow time.Duration
	LockWait   time.Duration
	Now        func() time.Time
}

func DefaultPolicy() Policy {
	return Policy{
		Location:       time.UTC,
		DailyLimit:     DefaultDailyLimit,
		MaxSlotCancels: DefaultMaxSlotCancels,
		LockWindow:     DefaultLockWindow,
		LockWait:       DefaultLockWait,
		Now:            time.Now,
	}
}

func PolicyFromConfig(c *config.Config) Policy {
	p := DefaultPolicy()
	b := c.Booking
	p.Location = timezone.Location(b.CutoffTimezone)
	if b.DailyLimit > 0 {
		p.DailyLimit = b.DailyLimit
	}
	if b.MaxSlotCancels > 0 {
		p.MaxSlotCancels = b.MaxSlotCancels
	}
	if b.LockWindowHours > 0 {
		p.LockWindow = time.Duration(b.LockWindowHours) * time.Hour
	}
	if b.LockTimeoutSeconds > 0 {
		p.LockWait = time.Duration(b.LockTimeoutSeconds) * time.Second
	}
	return p
}

func (p Policy) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p Policy) loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// SlotStart is when the shift begins on workDate.
func (p Policy) SlotStart(workDate time.Time, shift repo.Shift) time.Time {
	if shift == repo.ShiftAfternoon {
		return timezone.At(workDate, 13, 30, p.loc())
	}
	return timezone.At(workDate, 7, 30, p.loc())
}

// SlotStarted reports whether the slot can no longer be booked.
func (p Policy) SlotStarted(workDate time.Time, shift repo.Shift) bool {
	return !p.now().Before(p.SlotStart(workDate, shift))
}

// WithinLockWindow reports work_date - now <= LockWindow.
func (p Policy) WithinLockWindow(workDate time.Time) bool {
	return repo.DayStart(workDate).Sub(p.now()) <= p.LockWindow
}

// Today is the current calendar date in the policy location, as 00:00 UTC.
func (p Policy) Today() time.Time {
	return timezone.Today(p.now(), p.loc())
}

func (p Policy) Clock() time.Time { return p.now().UTC() }
