package ledger

import (
	"sort"
	"time"

	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/bioinsight/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TopGroupLimit is the maximum number of vendor or category groups in a summary
const TopGroupLimit = 10

// monthLayout is the year-month bucket key format
const monthLayout = "2006-01"

// DateRange is a half-open interval [From, To)
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange validates and normalizes a range to UTC
func NewDateRange(from, to time.Time) (DateRange, error) {
	if from.IsZero() || to.IsZero() {
		return DateRange{}, shared.ErrInvalidInput.WithMessage("date range requires both from and to")
	}
	if !to.After(from) {
		return DateRange{}, shared.ErrInvalidInput.WithMessage("date range end must be after its start")
	}
	return DateRange{From: from.UTC(), To: to.UTC()}, nil
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// MonthKey returns the UTC year-month bucket of t, e.g. "2025-03"
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

// MonthBucket is the spend of one calendar month
type MonthBucket struct {
	Month  string
	Amount decimal.Decimal
	Count  int
}

// GroupTotal is the spend of one vendor or category
type GroupTotal struct {
	Label  string
	Amount decimal.Decimal
	Count  int
}

// Summary is the spend report for a scope and date range
type Summary struct {
	ScopeKey      string
	Range         DateRange
	Currency      valueobject.Currency
	TotalAmount   decimal.Decimal
	EntryCount    int
	ByMonth       []MonthBucket
	TopVendors    []GroupTotal
	TopCategories []GroupTotal
}

// Aggregator accumulates ledger entries in a single pass
type Aggregator struct {
	total      decimal.Decimal
	count      int
	months     map[string]*MonthBucket
	vendors    map[string]*GroupTotal
	categories map[string]*GroupTotal
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{
		total:      decimal.Zero,
		months:     make(map[string]*MonthBucket),
		vendors:    make(map[string]*GroupTotal),
		categories: make(map[string]*GroupTotal),
	}
}

// Add folds one entry into the running totals
func (a *Aggregator) Add(e *Entry) {
	a.total = a.total.Add(e.Amount)
	a.count++

	key := MonthKey(e.PurchasedAt)
	m, ok := a.months[key]
	if !ok {
		m = &MonthBucket{Month: key, Amount: decimal.Zero}
		a.months[key] = m
	}
	m.Amount = m.Amount.Add(e.Amount)
	m.Count++

	addToGroup(a.vendors, e.VendorName, e.Amount)
	addToGroup(a.categories, e.CategoryLabel(), e.Amount)
}

// Summary returns the totals accumulated so far. Monthly buckets are sorted
// ascending by month; vendor and category groups are sorted by amount
// descending, ties broken by label ascending, and truncated to limit.
func (a *Aggregator) Summary(limit int) Summary {
	months := make([]MonthBucket, 0, len(a.months))
	for _, m := range a.months {
		months = append(months, *m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })

	return Summary{
		TotalAmount:   a.total,
		EntryCount:    a.count,
		ByMonth:       months,
		TopVendors:    rankGroups(a.vendors, limit),
		TopCategories: rankGroups(a.categories, limit),
	}
}

// Summarize aggregates a slice of entries
func Summarize(entries []*Entry, limit int) Summary {
	agg := NewAggregator()
	for _, e := range entries {
		agg.Add(e)
	}
	return agg.Summary(limit)
}

func addToGroup(groups map[string]*GroupTotal, label string, amount decimal.Decimal) {
	g, ok := groups[label]
	if !ok {
		g = &GroupTotal{Label: label, Amount: decimal.Zero}
		groups[label] = g
	}
	g.Amount = g.Amount.Add(amount)
	g.Count++
}

func rankGroups(groups map[string]*GroupTotal, limit int) []GroupTotal {
	out := make([]GroupTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
