// Package cleanup implements pruning of old events from the lifesim event log.
package cleanup

import (
	"time"

	"github.com/lifesim-dev/lifesim/internal/log"
)

// PruneByAge removes events older than maxAgeDays from the log.
// If dryRun is true, the log is left untouched and only the count of
// events that would be removed is returned.
func PruneByAge(l *log.Logger, maxAgeDays int, dryRun bool) (int, error) {
	return PruneBefore(l, time.Now().AddDate(0, 0, -maxAgeDays), dryRun)
}

// PruneBefore removes events logged before cutoff.
func PruneBefore(l *log.Logger, cutoff time.Time, dryRun bool) (int, error) {
	events, err := l.ReadAll()
	if err != nil {
		return 0, err
	}

	kept := make([]log.LogEvent, 0, len(events))
	for _, e := range events {
		if !e.Time.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	return replace(l, events, kept, dryRun)
}

// PruneKeepRecent removes all events except the most recent keep.
// If dryRun is true, nothing is removed.
func PruneKeepRecent(l *log.Logger, keep int, dryRun bool) (int, error) {
	events, err := l.ReadAll()
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(events) <= keep {
		return 0, nil
	}
	return replace(l, events, events[len(events)-keep:], dryRun)
}

func replace(l *log.Logger, all, kept []log.LogEvent, dryRun bool) (int, error) {
	pruned := len(all) - len(kept)
	if pruned == 0 || dryRun {
		return pruned, nil
	}
	if err := l.Replace(kept); err != nil {
		return 0, err
	}
	return pruned, nil
}
