package views

import (
	"sort"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/model"
)

// Stats counts bookings by outcome
type Stats struct {
	Total            int     `json:"total"`
	Completed        int     `json:"completed"`
	Cancelled        int     `json:"cancelled"`
	NoShow           int     `json:"no_show"`
	Upcoming         int     `json:"upcoming"`
	CompletedMinutes int     `json:"completed_minutes"`
	CompletionRate   float64 `json:"completion_rate"`
}

// SubjectStats is Stats for one subject
type SubjectStats struct {
	Subject string `json:"subject"`
	Stats
}

// ProgressReport is the overall and per-subject breakdown
type ProgressReport struct {
	Overall   Stats          `json:"overall"`
	BySubject []SubjectStats `json:"by_subject"`
}

func (s *Stats) add(b *model.Booking) {
	s.Total++
	switch b.Status {
	case model.BookingStatusCompleted:
		s.Completed++
		s.CompletedMinutes += b.DurationMinutes
	case model.BookingStatusCancelled:
		s.Cancelled++
	case model.BookingStatusNoShow:
		s.NoShow++
	default:
		s.Upcoming++
	}
}

// finish computes the completion rate over lessons that reached an outcome
func (s *Stats) finish() {
	closed := s.Completed + s.Cancelled + s.NoShow
	if closed > 0 {
		s.CompletionRate = float64(s.Completed) / float64(closed)
	}
}

// Progress aggregates bookings overall and per subject. Subjects are grouped
// case-insensitively and reported under the first spelling seen, sorted by name.
func Progress(bookings []*model.Booking) ProgressReport {
	var report ProgressReport
	bySubject := make(map[string]*SubjectStats)

	for _, b := range bookings {
		report.Overall.add(b)

		key := strings.ToLower(strings.TrimSpace(b.Subject))
		ss, ok := bySubject[key]
		if !ok {
			ss = &SubjectStats{Subject: strings.TrimSpace(b.Subject)}
			bySubject[key] = ss
		}
		ss.add(b)
	}

	report.Overall.finish()
	report.BySubject = make([]SubjectStats, 0, len(bySubject))
	for _, ss := range bySubject {
		ss.finish()
		report.BySubject = append(report.BySubject, *ss)
	}
	sort.Slice(report.BySubject, func(i, j int) bool {
		return strings.ToLower(report.BySubject[i].Subject) < strings.ToLower(report.BySubject[j].Subject)
	})

	return report
}
