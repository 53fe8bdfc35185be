package ports

import "time"

// Outcome labels shared by the quote metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// QuoteMetrics records the quote manager's business metrics.
// Implementations must be safe for concurrent use.
type QuoteMetrics interface {
	// SyncCompleted records one finished sync run.
	SyncCompleted(outcome string, duration time.Duration)

	// SubmissionCompleted records one attempt to post a quote to the server.
	SubmissionCompleted(outcome string)

	// QuotesStored records the current size of the quote list.
	QuotesStored(n int)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) SyncCompleted(string, time.Duration) {}
func (NopMetrics) SubmissionCompleted(string)          {}
func (NopMetrics) QuotesStored(int)                    {}
