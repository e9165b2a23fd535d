package chat

import (
	"sync"
	"time"
)

const (
	// DefaultRevealRate matches the feel of a 15ms-per-character reveal.
	DefaultRevealRate = 66.0

	defaultRevealInterval = 15 * time.Millisecond
)

// Reveal simulates progressive arrival of a reply that is already known
// in full. Pacing is wall-clock based: each tick emits however many runes
// have come due since the previous tick, so a throttled or suspended
// process catches up smoothly instead of dumping a backlog or drifting
// slow. A Reveal is single-use; the session controller owns at most one
// live Reveal at a time.
type Reveal struct {
	rate     float64
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	full    []rune
	emitted int
	carry   float64
	last    time.Time
	stopped bool
	stop    chan struct{}

	onChunk func(string)
	onDone  func()
}

// NewReveal returns a reveal paced at rate runes per second.
func NewReveal(rate float64) *Reveal {
	if rate <= 0 {
		rate = DefaultRevealRate
	}
	return &Reveal{
		rate:     rate,
		interval: defaultRevealInterval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Start begins ticking. onChunk receives each newly due slice of text and
// onDone fires exactly once, when the cumulative emitted length reaches
// the full text. Both callbacks run without the reveal's lock held, so
// they may call Stop.
func (r *Reveal) Start(fullText string, onChunk func(string), onDone func()) {
	r.mu.Lock()
	r.full = []rune(fullText)
	r.emitted = 0
	r.carry = 0
	r.last = r.now()
	r.onChunk = onChunk
	r.onDone = onDone
	done := len(r.full) == 0
	if done {
		r.stopped = true
	}
	r.mu.Unlock()

	if done {
		if onDone != nil {
			onDone()
		}
		return
	}
	go r.loop()
}

// Stop halts future ticks. Stopping twice, or after completion, is a no-op.
func (r *Reveal) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.halt()
}

func (r *Reveal) halt() {
	if r.stopped {
		return
	}
	r.stopped = true
	close(r.stop)
}

func (r *Reveal) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			if !r.tick(now) {
				return
			}
		}
	}
}

// tick emits the runes due at now. It returns false once the reveal has
// finished or been stopped.
func (r *Reveal) tick(now time.Time) bool {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return false
	}

	elapsed := now.Sub(r.last)
	if elapsed <= 0 {
		r.mu.Unlock()
		return true
	}
	r.last = now

	due := r.rate*elapsed.Seconds() + r.carry
	n := int(due)
	if n < 1 {
		// Some time has passed; always make visible progress.
		n = 1
		due = 1
	}
	if remaining := len(r.full) - r.emitted; n > remaining {
		n = remaining
	}
	r.carry = due - float64(n)

	chunk := string(r.full[r.emitted : r.emitted+n])
	r.emitted += n
	finished := r.emitted == len(r.full)
	if finished {
		r.halt()
	}
	onChunk, onDone := r.onChunk, r.onDone
	r.mu.Unlock()

	if onChunk != nil {
		onChunk(chunk)
	}
	if finished && onDone != nil {
		onDone()
	}
	return !finished
}
