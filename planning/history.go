/*
history.go - Stock history reconciliation

PURPOSE:
  Rebuilds where a balance CAME FROM. Given today's on-hand figure and the
  window's stock events, the reconciler walks backward day by day,
  un-applying each day's net change, until it recovers the balance the
  window started with. The forward story (start, daily balances, net and
  percent change) falls out of the same walk.

WHY BACKWARD:
  Current on-hand is the one number the physical world keeps honest
  (cycle counts reconcile against it). History is therefore anchored at
  the current balance and derived backward, never the other way around.

SEE ALSO:
  - types.go: StockEvent and the closed event type set
  - ledger.go: Where events come from
*/
package planning

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECONCILIATION
// =============================================================================

type HistoryInput struct {
	// Current is today's on-hand balance, the anchor of the walk.
	Current Quantity

	// Events are the component's stock events. Events outside the window
	// are ignored.
	Events []StockEvent

	Window Period
}

// DailyBalance is one day of reconstructed history. Balance is the
// end-of-day figure; Change is the day's net movement.
type DailyBalance struct {
	Date    TimePoint
	Change  Quantity
	Balance Quantity
}

type HistoryReport struct {
	Window  Period
	Start   Quantity
	Current Quantity

	NetChange Quantity

	// PercentChange is the net change relative to the starting balance,
	// one decimal place. Zero when the window started at zero.
	PercentChange decimal.Decimal

	// Daily balances in ascending date order, one row per window day.
	Daily []DailyBalance

	// CountsByType tallies the window's events per event type.
	CountsByType map[EventType]int
	EventCount   int
}

// ReconcileHistory anchors at the current balance and walks the window
// backward to recover the starting balance and the daily series.
func ReconcileHistory(in HistoryInput) HistoryReport {
	changes := QuantityByDay{}
	counts := map[EventType]int{}
	total := 0
	for _, ev := range in.Events {
		if !in.Window.Contains(ev.Day) {
			continue
		}
		changes.AddOn(ev.Day, ev.Quantity)
		counts[ev.Type]++
		total++
	}

	days := in.Window.Days()
	daily := make([]DailyBalance, 0, len(days))
	running := in.Current
	for i := len(days) - 1; i >= 0; i-- {
		day := days[i]
		change := changes.On(day)
		if change.Unit == "" {
			change.Unit = in.Current.Unit
		}
		daily = append(daily, DailyBalance{Date: day, Change: change, Balance: running})
		running = running.Sub(change)
	}
	for i, j := 0, len(daily)-1; i < j; i, j = i+1, j-1 {
		daily[i], daily[j] = daily[j], daily[i]
	}

	start := running
	net := in.Current.Sub(start)
	return HistoryReport{
		Window:        in.Window,
		Start:         start,
		Current:       in.Current,
		NetChange:     net,
		PercentChange: percentChange(net, start),
		Daily:         daily,
		CountsByType:  counts,
		EventCount:    total,
	}
}

func percentChange(net, start Quantity) decimal.Decimal {
	if start.IsZero() {
		return decimal.Zero
	}
	return net.Value.Div(start.Value).Mul(decimal.NewFromInt(100)).Round(1)
}

// =============================================================================
// RECENT ACTIVITY FEED
// =============================================================================

// RecentActivity sorts events newest first for the global activity feed.
// Same-day events order by component code so the feed is stable between
// refreshes. A positive limit truncates the result.
func RecentActivity(events []StockEvent, limit int) []StockEvent {
	feed := make([]StockEvent, len(events))
	copy(feed, events)
	sort.SliceStable(feed, func(i, j int) bool {
		if feed[i].Day.Equal(feed[j].Day) {
			return feed[i].Component < feed[j].Component
		}
		return feed[j].Day.Before(feed[i].Day)
	})
	if limit > 0 && len(feed) > limit {
		feed = feed[:limit]
	}
	return feed
}
