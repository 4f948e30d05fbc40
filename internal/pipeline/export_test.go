package pipeline

import "time"

// SetBackoff shortens retry waits for tests.
func (p *Publisher) SetBackoff(initial, maxBackoff time.Duration, attempts int) {
	p.initialBackoff = initial
	p.maxBackoff = maxBackoff
	p.maxAttempts = attempts
}

var NextBackoff = nextBackoff
