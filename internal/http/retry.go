package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/buildforge-io/jenkins/internal/constants"
	"github.com/buildforge-io/jenkins/pkg/jenkins"
)

// RetryPolicy decides whether a failed attempt is retried and how long to
// wait before the next one. Delays are deterministic: no jitter, so tests
// can assert exact sequences.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts including the first;
	// values below 2 disable retrying.
	MaxAttempts int
	// BaseDelay and Multiplier define the backoff curve:
	// delay(n) = BaseDelay * Multiplier^(n-1) for the n-th retry.
	BaseDelay  time.Duration
	Multiplier float64
	// MaxDelay caps the computed delay; zero means uncapped.
	MaxDelay time.Duration
	// RetryableStatus classifies status codes; nil selects
	// jenkins.DefaultRetryableStatus. 4xx codes should never be
	// classified retryable.
	RetryableStatus func(status int) bool
}

// DefaultRetryPolicy returns the default retry configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: constants.DefaultRetryMax + 1,
		BaseDelay:   constants.DefaultRetryBaseDelay,
		Multiplier:  constants.DefaultRetryMultiplier,
		MaxDelay:    constants.DefaultRetryMaxDelay,
	}
}

// Delay returns the backoff before the n-th retry (1-based). The first
// attempt is never delayed.
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry < 1 || p.BaseDelay <= 0 {
		return 0
	}

	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	delay := time.Duration(float64(p.BaseDelay) * math.Pow(multiplier, float64(retry-1)))
	if delay < 0 || (p.MaxDelay > 0 && delay > p.MaxDelay) {
		delay = p.MaxDelay
	}

	return delay
}

// retries returns the number of retries allowed after the initial attempt.
func (p RetryPolicy) retries() int {
	if p.MaxAttempts <= 1 {
		return 0
	}

	return p.MaxAttempts - 1
}

func (p RetryPolicy) retryableStatus(status int) bool {
	if p.RetryableStatus != nil {
		return p.RetryableStatus(status)
	}

	return jenkins.DefaultRetryableStatus(status)
}

// checkRetry classifies a single attempt for the retryablehttp loop.
// Transport failures retry; crumb handshake failures and non-retryable
// statuses return immediately with the real cause.
func (p RetryPolicy) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		crumbErr := &jenkins.CrumbError{}
		if errors.As(err, &crumbErr) {
			return false, nil
		}

		return true, nil
	}

	if resp != nil && p.retryableStatus(resp.StatusCode) {
		return true, nil
	}

	return false, nil
}

// backoff adapts Delay to the retryablehttp signature. attemptNum is the
// 0-based count of attempts already made, so the sleep before the n-th
// retry is Delay(n).
func (p RetryPolicy) backoff(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
	return p.Delay(attemptNum + 1)
}
