package booking

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"
)

// lotteryEntry is one buffered next-cycle request.  Entries live only
// in process memory between the fairness window opening and its
// resolution; they do not survive a restart, which is an accepted
// limitation of the design.
type lotteryEntry struct {
	userID      uint64
	displayName string
	submitted   time.Time
}

type lotteryBucket struct {
	date    time.Time
	entries []lotteryEntry
	timer   Timer
}

// Lottery buffers booking requests that arrive inside the fairness
// window, one bucket per target date, and resolves each bucket in
// uniformly shuffled order when the window closes.  Shuffle-then-
// sequential-resolution is the entire fairness contract: arrival
// order, network jitter and scripting cannot bias who gets a spot.
type Lottery struct {
	mu       sync.Mutex
	buckets  map[string]*lotteryBucket
	newTimer TimerFactory
	rng      *rand.Rand
	dateKey  func(time.Time) string
	resolve  func(date time.Time, entries []lotteryEntry)
}

func newLottery(newTimer TimerFactory, seed int64, dateKey func(time.Time) string, resolve func(time.Time, []lotteryEntry)) *Lottery {
	return &Lottery{
		buckets:  make(map[string]*lotteryBucket),
		newTimer: newTimer,
		rng:      rand.New(rand.NewSource(seed)),
		dateKey:  dateKey,
		resolve:  resolve,
	}
}

// Enqueue buffers a request for the date.  The first request for a
// date arms the deferred resolution timer to fire when the window
// closes.  A duplicate request from the same user returns the current
// 1-based position and dup=true.
func (l *Lottery) Enqueue(now time.Time, userID uint64, displayName string, date time.Time, closeIn time.Duration) (position int, dup bool) {
	key := l.dateKey(date)
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = &lotteryBucket{date: date}
		l.buckets[key] = b
		b.timer = l.newTimer(closeIn, func() { l.close(key) })
	}
	for i, en := range b.entries {
		if en.userID == userID {
			return i + 1, true
		}
	}
	b.entries = append(b.entries, lotteryEntry{userID: userID, displayName: displayName, submitted: now})
	return len(b.entries), false
}

// close resolves and discards the bucket for a date.  Removing the
// bucket under the mutex before resolving makes the timer idempotent:
// a buffer already taken by Flush (or a stray double fire) is a no-op.
func (l *Lottery) close(key string) {
	l.mu.Lock()
	b := l.buckets[key]
	delete(l.buckets, key)
	l.mu.Unlock()
	if b == nil || len(b.entries) == 0 {
		return
	}
	l.resolve(b.date, b.entries)
}

// shuffle permutes entries uniformly.  It is called by the resolver
// inside the date's critical section so that no plain allocation can
// interleave between the shuffle and the last resolved entry.
func (l *Lottery) shuffle(entries []lotteryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})
}

// Flush stops all pending timers and resolves every buffered date
// immediately.  Used on shutdown and by test harnesses.
func (l *Lottery) Flush() {
	l.mu.Lock()
	pending := make([]*lotteryBucket, 0, len(l.buckets))
	for key, b := range l.buckets {
		if b.timer != nil {
			b.timer.Stop()
		}
		delete(l.buckets, key)
		pending = append(pending, b)
	}
	l.mu.Unlock()
	for _, b := range pending {
		if len(b.entries) > 0 {
			l.resolve(b.date, b.entries)
		}
	}
}

// resolveLottery drains one date's buffer: shuffle, then resolve each
// entry in order through the allocator, waitlisting on exhaustion.
// The whole batch runs inside the date's critical section.  Every
// buffered requester gets exactly one outcome notification once their
// row is durably recorded; a storage failure for an entry is logged
// and that requester is skipped rather than guessed at.
func (e *Engine) resolveLottery(date time.Time, entries []lotteryEntry) {
	ctx := context.Background()
	unlock := e.lockDate(date)
	defer unlock()
	e.lottery.shuffle(entries)
	for _, en := range entries {
		out, err := e.allocateOrWaitlist(ctx, en.userID, en.displayName, date)
		if err != nil {
			log.Printf("lottery: resolving user %d for %s failed: %v", en.userID, e.rules.DateKey(date), err)
			continue
		}
		e.notify(en.userID, en.displayName, date, out)
	}
}
