package numbering

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	numberPrefix     = "TKT"
	dayStampLayout   = "20060102"
	counterKeyPrefix = "support-desk:ticket-seq:"
	counterTTL       = 48 * time.Hour
)

// LastNumberStore looks up the most recently created ticket number inside a
// time window. Satisfied by the ticket repository.
type LastNumberStore interface {
	LastTicketNumberBetween(ctx context.Context, from, to time.Time) (string, error)
}

// Allocator mints day-scoped, strictly increasing ticket numbers of the form
// TKT-YYYYMMDD-NNNN. When a Redis client is available the per-day counter is
// an atomic INCR shared across processes; otherwise allocation serializes on
// an in-process mutex seeded from the store. Either way the unique constraint
// on ticket_number remains the backstop: callers retry on a duplicate with a
// freshly minted number.
type Allocator struct {
	store    LastNumberStore
	counters *redis.Client

	mu      sync.Mutex
	day     string
	lastSeq int
}

// NewAllocator builds an allocator; counters may be nil.
func NewAllocator(store LastNumberStore, counters *redis.Client) *Allocator {
	return &Allocator{store: store, counters: counters}
}

// Next returns the next ticket number for the calendar day of ts.
func (a *Allocator) Next(ctx context.Context, ts time.Time) (string, error) {
	day := ts.UTC()
	stamp := day.Format(dayStampLayout)

	if a.counters != nil {
		if number, err := a.nextFromCounter(ctx, day, stamp); err == nil {
			return number, nil
		}
		// counter unavailable; fall back to the serialized store scan
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.day != stamp {
		seq, err := a.lastStoredSequence(ctx, day)
		if err != nil {
			return "", err
		}
		a.day = stamp
		a.lastSeq = seq
	}
	a.lastSeq++
	return Format(stamp, a.lastSeq), nil
}

func (a *Allocator) nextFromCounter(ctx context.Context, day time.Time, stamp string) (string, error) {
	key := counterKeyPrefix + stamp
	seq, err := a.counters.Incr(ctx, key).Result()
	if err != nil {
		return "", err
	}
	if seq == 1 {
		// Fresh counter for the day: skip past rows already persisted, so a
		// counter reset cannot hand out suffixes that are taken.
		last, err := a.lastStoredSequence(ctx, day)
		if err != nil {
			return "", err
		}
		if last > 0 {
			seq, err = a.counters.IncrBy(ctx, key, int64(last)).Result()
			if err != nil {
				return "", err
			}
		}
		a.counters.Expire(ctx, key, counterTTL)
	}
	return Format(stamp, int(seq)), nil
}

func (a *Allocator) lastStoredSequence(ctx context.Context, day time.Time) (int, error) {
	from, to := DayWindow(day)
	number, err := a.store.LastTicketNumberBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if number == "" {
		return 0, nil
	}
	seq, err := ParseSequence(number)
	if err != nil {
		// Malformed historical number; restart the count and let the unique
		// constraint arbitrate.
		return 0, nil
	}
	return seq, nil
}

// Format renders a ticket number for the given day stamp and sequence. The
// suffix is zero-padded to four digits and grows naturally beyond 9999.
func Format(stamp string, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", numberPrefix, stamp, seq)
}

// ParseSequence extracts the numeric suffix from a ticket number.
func ParseSequence(number string) (int, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("malformed ticket number %q", number)
	}
	return strconv.Atoi(number[idx+1:])
}

// DayWindow returns the inclusive UTC bounds of ts's calendar day.
func DayWindow(ts time.Time) (time.Time, time.Time) {
	ts = ts.UTC()
	start := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Nanosecond)
}
