package chat

import (
	"sort"
	"time"
)

// BurstGap is the inactivity window that splits consecutive messages from
// the same author into separate bursts. A gap of exactly BurstGap stays in
// the burst; one millisecond more starts a new one.
const BurstGap = 5 * time.Minute

const dateLayout = "2006-01-02"

// Burst is a run of consecutive messages from one author within BurstGap.
// The rendered author/avatar for the whole burst comes from its first
// message.
type Burst struct {
	UserID   string    `json:"user_id"`
	Messages []Message `json:"messages"`
}

// DayGroup is one calendar date's worth of bursts.
type DayGroup struct {
	Date   string  `json:"date"`
	Bursts []Burst `json:"bursts"`
}

// GroupMessages partitions an ordered message list (the reconciler's
// output) into date buckets and author bursts for rendering.
//
// Buckets are keyed by the calendar date of the normalized timestamp in
// loc. The returned buckets are explicitly sorted oldest-first by parsed
// date: bucket creation order follows message order, which is not trusted
// to be chronological when the caller passes an unsorted list.
func GroupMessages(msgs []Message, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}

	buckets := make(map[string][]Message)
	for _, m := range msgs {
		if m.Deleted {
			continue
		}
		date := m.Timestamp.Time().In(loc).Format(dateLayout)
		buckets[date] = append(buckets[date], m)
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool {
		di, _ := time.ParseInLocation(dateLayout, dates[i], loc)
		dj, _ := time.ParseInLocation(dateLayout, dates[j], loc)
		return di.Before(dj)
	})

	groups := make([]DayGroup, 0, len(dates))
	for _, date := range dates {
		groups = append(groups, DayGroup{
			Date:   date,
			Bursts: splitBursts(buckets[date]),
		})
	}
	return groups
}

func splitBursts(msgs []Message) []Burst {
	gapMillis := BurstGap.Milliseconds()

	var bursts []Burst
	for i, m := range msgs {
		startNew := i == 0 ||
			m.UserID != msgs[i-1].UserID ||
			m.Timestamp.Millis()-msgs[i-1].Timestamp.Millis() > gapMillis
		if startNew {
			bursts = append(bursts, Burst{UserID: m.UserID})
		}
		last := &bursts[len(bursts)-1]
		last.Messages = append(last.Messages, m)
	}
	return bursts
}
