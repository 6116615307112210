package tracker

import (
	"context"
	"sync"
	"time"

	"activitytracker/internal/db/models"

	"github.com/rs/zerolog"
)

const checkInterval = 30 * time.Second

// AutoFinalizer closes a user's open session at configured times of day
// (e.g. end of the morning and afternoon shifts). Each slot fires at most
// once per day.
type AutoFinalizer struct {
	svc    *Service
	userID string
	slots  []string
	log    zerolog.Logger

	// notify is called after a session was closed automatically so the GUI
	// can update itself. May be nil.
	notify func(activity *models.Activity, slot string)

	mu      sync.Mutex
	lastRun map[string]string // slot -> date it last fired
}

// NewAutoFinalizer builds a finalizer for one logged-in user. Slots use the
// "15:04" format; malformed slots are dropped with a warning.
func NewAutoFinalizer(svc *Service, userID string, slots []string, log zerolog.Logger, notify func(*models.Activity, string)) *AutoFinalizer {
	valid := make([]string, 0, len(slots))
	for _, slot := range slots {
		if _, err := time.Parse("15:04", slot); err != nil {
			log.Warn().Str("component", "autofinalize").Str("slot", slot).Msg("ignoring malformed slot")
			continue
		}
		valid = append(valid, slot)
	}
	return &AutoFinalizer{
		svc:     svc,
		userID:  userID,
		slots:   valid,
		log:     log,
		notify:  notify,
		lastRun: make(map[string]string),
	}
}

// Run checks the slots every 30 seconds until the context is cancelled.
func (f *AutoFinalizer) Run(ctx context.Context) {
	if len(f.slots) == 0 {
		return
	}

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.check(ctx, f.svc.now().In(f.svc.loc))
		case <-ctx.Done():
			return
		}
	}
}

func (f *AutoFinalizer) check(ctx context.Context, now time.Time) {
	for _, slot := range f.due(now) {
		open, err := f.svc.Resume(ctx, f.userID)
		if err != nil {
			f.log.Error().Err(err).Str("component", "autofinalize").Str("slot", slot).Msg("lookup failed")
			continue
		}
		if open == nil {
			continue
		}

		finished, err := f.svc.Finish(ctx, open.ID)
		if err != nil {
			f.log.Error().Err(err).Str("component", "autofinalize").Str("slot", slot).Msg("finish failed")
			continue
		}
		f.log.Info().
			Str("component", "autofinalize").
			Str("slot", slot).
			Str("category", finished.Category).
			Msg("session closed automatically")
		if f.notify != nil {
			f.notify(finished, slot)
		}
	}
}

// due returns the slots matching now that have not fired today, and marks
// them as fired. Marking happens whether or not a session is open, so a slot
// never fires twice in one day.
func (f *AutoFinalizer) due(now time.Time) []string {
	hhmm := now.Format("15:04")
	today := now.Format("2006-01-02")

	f.mu.Lock()
	defer f.mu.Unlock()

	var fired []string
	for _, slot := range f.slots {
		if slot != hhmm {
			continue
		}
		if f.lastRun[slot] == today {
			continue
		}
		f.lastRun[slot] = today
		fired = append(fired, slot)
	}
	return fired
}
