// Package window computes the per-minute trailing moving average of delivery
// durations over a time-ordered event log.
package window

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/gammazero/deque"
	"github.com/shopspring/decimal"

	"github.com/PratikDhanave/delivery-time-analytics/internal/apperr"
	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
)

// maxWindowMinutes keeps the trailing span representable as a time.Duration.
const maxWindowMinutes = math.MaxInt64 / int64(time.Minute)

// Aggregate emits one sample per minute from the first event's minute through one
// minute past the last one. Each sample averages the durations of the events in
// the half-open interval (minute-windowMinutes, minute].
//
// events must be sorted by timestamp ascending; that is not checked.
func Aggregate(events []models.Event, windowMinutes int) ([]models.Sample, error) {
	if windowMinutes < 0 {
		return nil, fmt.Errorf("%w: got %d", apperr.ErrInvalidWindowSize, windowMinutes)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: event log is empty", apperr.ErrDataFormat)
	}

	first := events[0].Timestamp.Time
	last := events[len(events)-1].Timestamp.Time
	start := first.Truncate(time.Minute)
	total := ceilMinutes(last.Sub(first)) + 1
	span := trailingSpan(windowMinutes)

	active := newActiveDurations()
	samples := make([]models.Sample, 0, max(total+1, 0))

	// enter and exit only move forward, so each event is pushed and popped once.
	enter, exit := 0, 0
	for m := 0; m <= total; m++ {
		curr := start.Add(time.Duration(m) * time.Minute)

		for enter < len(events) && !events[enter].Timestamp.After(curr) {
			active.push(events[enter].Duration)
			enter++
		}

		trailing := curr.Add(-span)
		for exit < enter && !events[exit].Timestamp.After(trailing) {
			active.pop()
			exit++
		}

		samples = append(samples, models.Sample{
			Date:                models.Minute{Time: curr},
			AverageDeliveryTime: active.average(),
		})
	}
	return samples, nil
}

// ceilMinutes rounds d up to whole minutes.
func ceilMinutes(d time.Duration) int {
	n := d / time.Minute
	if d > 0 && d%time.Minute != 0 {
		n++
	}
	return int(n)
}

func trailingSpan(windowMinutes int) time.Duration {
	if int64(windowMinutes) > maxWindowMinutes {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(windowMinutes) * time.Minute
}

// activeDurations is the queue of durations currently in the window. The sum is
// kept in decimal so repeated add/subtract never drifts.
type activeDurations struct {
	queue *deque.Deque[decimal.Decimal]
	sum   decimal.Decimal
}

func newActiveDurations() *activeDurations {
	return &activeDurations{queue: deque.New[decimal.Decimal]()}
}

func (a *activeDurations) push(d float64) {
	v := decimal.NewFromFloat(d)
	a.queue.PushBack(v)
	a.sum = a.sum.Add(v)
}

func (a *activeDurations) pop() {
	a.sum = a.sum.Sub(a.queue.PopFront())
}

func (a *activeDurations) size() int {
	return a.queue.Len()
}

// average is the mean rounded to one decimal, 0 when empty. The mean is the
// float64 nearest the exact quotient, and rounding works on that binary
// value with exact ties going to even.
func (a *activeDurations) average() float64 {
	n := a.size()
	if n == 0 {
		return 0
	}
	mean, _ := new(big.Rat).Quo(a.sum.Rat(), big.NewRat(int64(n), 1)).Float64()
	return round1(mean)
}

func round1(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}
