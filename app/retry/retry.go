package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 500 * time.Millisecond
	defaultMaxDelay = 8 * time.Second
)

// Policy controls Do. The delay before attempt n+1 is InitialBackoff * 2^(n-1), capped at MaxDelay.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxDelay       time.Duration
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = defaultBackoff
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultMaxDelay
	}
	return p
}

// Delay returns the wait after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	p = p.withDefaults()
	d := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return d
}

// Do runs fn until it succeeds, returns a Permanent error, the attempts are exhausted
// or ctx is done. Attempts run strictly one after another on the caller's goroutine.
func Do(ctx context.Context, p Policy, logger *slog.Logger, fn func(ctx context.Context) error) error {
	p = p.withDefaults()

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == p.MaxAttempts {
			break
		}

		wait := p.Delay(attempt)
		if logger != nil {
			logger.WarnContext(ctx, "Attempt failed, retrying...",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", p.MaxAttempts),
				slog.Duration("wait_duration", wait),
				slog.String("error", err.Error()),
			)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}
