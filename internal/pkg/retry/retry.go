package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultDelay    = 100 * time.Millisecond
	defaultMaxDelay = 2 * time.Second
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"100ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
}

func (rc *RetryConfig) ToRetryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(rc.Attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
	}
}

// Do runs fn with the configured backoff policy. Only errors accepted by
// retryIf are retried; the last error is returned unwrapped.
func Do(ctx context.Context, rc *RetryConfig, retryIf func(error) bool, fn func() error) error {
	opts := append(rc.ToRetryOptions(),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if retryIf != nil {
		opts = append(opts, retry.RetryIf(retryIf))
	}

	return retry.Do(fn, opts...)
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}
