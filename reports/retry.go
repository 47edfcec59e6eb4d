package reports

import "time"

// RetryPolicy controls automatic retries of failed requests. Transport
// errors and 5xx responses are retried, 4xx never are. Creates are only
// retried when RetryCreate is set since a lost response could duplicate a
// report.
type RetryPolicy struct {
	Attempts    int
	Backoff     time.Duration
	MaxBackoff  time.Duration
	RetryCreate bool
}

// NoRetry leaves retrying to the user, one attempt per action.
var NoRetry = RetryPolicy{Attempts: 1}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Backoff <= 0 {
		p.Backoff = 500 * time.Millisecond
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 30 * time.Second
	}
	return p
}

// backoff doubles the wait for every retry, capped at MaxBackoff.
func (p RetryPolicy) backoff(retry int) time.Duration {
	d := p.Backoff
	for i := 1; i < retry; i++ {
		d *= 2
		if d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}
