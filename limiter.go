package folio

import (
	"sync"
	"time"
)

// ContactLimiter rate-limits contact form submissions per IP address.
type ContactLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewContactLimiter creates a ContactLimiter that allows max submissions per
// window. Call Stop to end the background cleanup.
func NewContactLimiter(max int, window time.Duration) *ContactLimiter {
	l := &ContactLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		done:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *ContactLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
		}
		cutoff := time.Now().Add(-l.window)
		l.mu.Lock()
		for ip, hits := range l.attempts {
			kept := hits[:0]
			for _, t := range hits {
				if t.After(cutoff) {
					kept = append(kept, t)
				}
			}
			if len(kept) == 0 {
				delete(l.attempts, ip)
			} else {
				l.attempts[ip] = kept
			}
		}
		l.mu.Unlock()
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *ContactLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Allow checks if the IP has not exceeded the rate limit and records the attempt.
func (l *ContactLimiter) Allow(ip string) bool {
	if !l.Check(ip) {
		return false
	}
	l.Record(ip)
	return true
}

// Check returns true if the IP has not exceeded the rate limit.
// It does not record an attempt.
func (l *ContactLimiter) Check(ip string) bool {
	cutoff := time.Now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	hits := l.attempts[ip]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.attempts[ip] = kept
	return len(kept) < l.max
}

// Record registers a submission for the given IP.
func (l *ContactLimiter) Record(ip string) {
	l.mu.Lock()
	l.attempts[ip] = append(l.attempts[ip], time.Now())
	l.mu.Unlock()
}
