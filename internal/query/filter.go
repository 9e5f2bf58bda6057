// Package query derives filtered, sorted and aggregated views from the
// ticket collection. Everything here is pure: no state, no mutation of the
// input slices.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/ticketflow/internal/domain"
)

// All is the wildcard criterion value matching every ticket.
const All = "ALL"

// Criteria describes a ticket filter. Zero values (or All) match everything;
// all populated criteria are combined with logical AND.
type Criteria struct {
	Status    string // All, or a TicketStatus value
	Topic     string // All, or a TicketTopic value
	Priority  string // All, or a TicketPriority value
	Search    string // case-insensitive substring over title/description/creator
	DateStart string // YYYY-MM-DD, inclusive
	DateEnd   string // YYYY-MM-DD, inclusive through 23:59:59.999
}

// Stats are the dashboard aggregates, always computed over the full
// unfiltered collection.
type Stats struct {
	Open       int `json:"open"`
	Resolved   int `json:"resolved"`
	UrgentOpen int `json:"urgent"`
}

// Filter returns the tickets matching all criteria, preserving input order.
func Filter(tickets []domain.Ticket, c Criteria) []domain.Ticket {
	matched := make([]domain.Ticket, 0, len(tickets))
	search := strings.ToLower(strings.TrimSpace(c.Search))
	startMillis, hasStart := parseDayStart(c.DateStart)
	endMillis, hasEnd := parseDayEnd(c.DateEnd)

	for _, t := range tickets {
		if !isWildcard(c.Status) && string(t.Status) != c.Status {
			continue
		}
		if !isWildcard(c.Topic) && string(t.Topic) != c.Topic {
			continue
		}
		if !isWildcard(c.Priority) && string(t.Priority) != c.Priority {
			continue
		}
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		if hasStart && t.CreatedAt < startMillis {
			continue
		}
		if hasEnd && t.CreatedAt > endMillis {
			continue
		}
		matched = append(matched, t)
	}
	return matched
}

// ComputeStats counts open, resolved and urgent-open tickets over the full
// collection, independent of any active display filter.
func ComputeStats(tickets []domain.Ticket) Stats {
	var s Stats
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			s.Open++
			if t.Priority == domain.PriorityUrgent {
				s.UrgentOpen++
			}
		case domain.TicketStatusResolved:
			s.Resolved++
		}
	}
	return s
}

// SortPending orders the pending list: priority rank descending, then
// creation time descending as the tie-break. Returns a new slice.
func SortPending(tickets []domain.Ticket) []domain.Ticket {
	out := append([]domain.Ticket(nil), tickets...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// SortResolved orders the archive list by resolution time descending; a
// ticket without a resolution time sorts as zero.
func SortResolved(tickets []domain.Ticket) []domain.Ticket {
	out := append([]domain.Ticket(nil), tickets...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ResolvedAt > out[j].ResolvedAt
	})
	return out
}

// SortByCreated orders tickets newest first, the default list order.
func SortByCreated(tickets []domain.Ticket) []domain.Ticket {
	out := append([]domain.Ticket(nil), tickets...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// TicketsByCreator returns a creator's tickets newest first ("my tickets").
func TicketsByCreator(tickets []domain.Ticket, creatorID string) []domain.Ticket {
	mine := make([]domain.Ticket, 0)
	for _, t := range tickets {
		if t.CreatorID == creatorID {
			mine = append(mine, t)
		}
	}
	return SortByCreated(mine)
}

func isWildcard(v string) bool {
	return v == "" || v == All
}

func matchesSearch(t domain.Ticket, search string) bool {
	return strings.Contains(strings.ToLower(t.Title), search) ||
		strings.Contains(strings.ToLower(t.Description), search) ||
		strings.Contains(strings.ToLower(t.CreatorName), search)
}

func parseDayStart(day string) (int64, bool) {
	if day == "" {
		return 0, false
	}
	parsed, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		return 0, false
	}
	return parsed.UnixMilli(), true
}

func parseDayEnd(day string) (int64, bool) {
	if day == "" {
		return 0, false
	}
	parsed, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		return 0, false
	}
	end := parsed.Add(24*time.Hour - time.Millisecond)
	return end.UnixMilli(), true
}
