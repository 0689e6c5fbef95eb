// Package derive computes views from the mirrored record set.
// All functions are pure: records in, value out. No side effects, no
// caching - recomputing from scratch is fine at dashboard scale.
package derive

import "github.com/visitorhub/visitorhub/internal/visitor"

// Stats are the dashboard counters. Derived, never stored.
type Stats struct {
	Total    int
	Online   int
	WithCard int
	Unread   int
}

// Filter selects which records appear in the list view. Exactly one is
// active at a time.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterUnread   Filter = "unread"
	FilterWithCard Filter = "withCard"
	FilterWithOTP  Filter = "withOtp"
	FilterOnline   Filter = "online"
)

// Filters lists all filters in presentation order.
var Filters = []Filter{FilterAll, FilterUnread, FilterWithCard, FilterWithOTP, FilterOnline}

// Label returns the short name shown in the filter bar.
func (f Filter) Label() string {
	switch f {
	case FilterUnread:
		return "unread"
	case FilterWithCard:
		return "card"
	case FilterWithOTP:
		return "otp"
	case FilterOnline:
		return "online"
	default:
		return "all"
	}
}

// ComputeStats counts the whole record set. Always recomputed on change.
func ComputeStats(records []visitor.Record) Stats {
	stats := Stats{Total: len(records)}
	for _, r := range records {
		if r.Online {
			stats.Online++
		}
		if r.HasCard() {
			stats.WithCard++
		}
		if r.Unread {
			stats.Unread++
		}
	}
	return stats
}

// matchesFilter applies the active filter to one record.
func matchesFilter(r visitor.Record, f Filter) bool {
	switch f {
	case FilterUnread:
		return r.Unread
	case FilterWithCard:
		return r.HasCard()
	case FilterWithOTP:
		return r.HasOTP()
	case FilterOnline:
		return r.Online
	default:
		return true
	}
}

// FilteredView returns the records passing both the search stage and the
// filter stage, preserving input order. The remote order-by is
// authoritative; there is no local re-sort.
//
// Search matching lowercases the query only (see visitor.MatchesQuery);
// email, phone and id are matched against raw stored text.
func FilteredView(records []visitor.Record, query string, f Filter) []visitor.Record {
	out := make([]visitor.Record, 0, len(records))
	for _, r := range records {
		if !r.MatchesQuery(query) {
			continue
		}
		if !matchesFilter(r, f) {
			continue
		}
		out = append(out, r)
	}
	return out
}
