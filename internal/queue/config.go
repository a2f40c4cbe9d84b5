package queue

import "time"

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxDepth     = 256
	defaultMaxWait      = 5 * time.Second
	defaultWorkers      = 4
	defaultMaxAttempts  = 5
	defaultRetryBackoff = 500 * time.Millisecond
)

// Config holds the tunables shared by the queue backends.
type Config struct {
	// MaxDepth is the number of jobs a memory queue buffers.
	MaxDepth int
	// MaxWait bounds how long Enqueue waits for a free slot.
	MaxWait time.Duration
	// Workers is the number of goroutines per memory queue.
	Workers int
	// MaxAttempts counts the first run; 1 disables retries.
	MaxAttempts int
	// RetryBackoff is multiplied by the attempt number before a retry.
	RetryBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = defaultMaxDepth
	}
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	return c
}

func (c Config) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return c.RetryBackoff * time.Duration(attempt)
}
