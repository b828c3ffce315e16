// Package digest implements the daily digest pipeline: fetching papers,
// summarizing them, rendering the email, dispatching it, and recording
// the delivery. The scheduler drives the pipeline on a fixed tick.
package digest

import "time"

// Clock abstracts time.Now so the scheduler's due-time matching can be
// tested against fixed instants.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
