// Package views holds read-side helpers that filter and aggregate already
// fetched rows for display.
package views

import (
	"sort"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
)

// SplitUpcoming separates bookings that are still ahead from the rest.
// Upcoming bookings start at or after now and are not terminal; they are
// ordered soonest first. Past bookings are ordered most recent first.
func SplitUpcoming(bookings []*model.Booking, now time.Time) (upcoming, past []*model.Booking) {
	upcoming = make([]*model.Booking, 0, len(bookings))
	past = make([]*model.Booking, 0, len(bookings))

	for _, b := range bookings {
		if !b.ScheduledAt.Before(now) && !b.Status.IsTerminal() {
			upcoming = append(upcoming, b)
		} else {
			past = append(past, b)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledAt.Before(upcoming[j].ScheduledAt)
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].ScheduledAt.After(past[j].ScheduledAt)
	})

	return upcoming, past
}
