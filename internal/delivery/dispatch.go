// Package delivery fans the rendered document out to its sinks and records
// one observable outcome per sink.
package delivery

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mattslade/ai-scorecard/internal/mailer"
)

type SinkType string

const (
	SinkEmail  SinkType = "email"
	SinkCaller SinkType = "caller"
)

type Outcome string

const (
	OutcomeSent   Outcome = "sent"
	OutcomeFailed Outcome = "failed"
)

// Result is the recorded outcome for one sink. Built once per run, never
// mutated afterwards.
type Result struct {
	Sink      SinkType `json:"sink" db:"sink"`
	Recipient string   `json:"recipient,omitempty" db:"recipient"`
	Outcome   Outcome  `json:"outcome" db:"outcome"`
	Error     string   `json:"error,omitempty" db:"error"`
}

// Document is the rendered report plus its delivery envelope.
type Document struct {
	RunID      string
	PDF        []byte
	Recipients []string
	Subject    string
	Body       string
	Filename   string
}

// Dispatcher sends a document to all sinks. Email sends run concurrently
// and are all awaited; one recipient's failure never suppresses another's
// outcome. The caller sink is satisfied as soon as the bytes exist.
type Dispatcher struct {
	sender mailer.Sender
	store  *Store
}

// NewDispatcher builds a dispatcher. store may be nil to disable the
// delivery audit log.
func NewDispatcher(sender mailer.Sender, store *Store) *Dispatcher {
	return &Dispatcher{sender: sender, store: store}
}

func (d *Dispatcher) Dispatch(ctx context.Context, doc Document) []Result {
	results := make([]Result, 1+len(doc.Recipients))
	results[0] = Result{Sink: SinkCaller, Outcome: OutcomeSent}

	var wg sync.WaitGroup
	for i, rcpt := range doc.Recipients {
		wg.Add(1)
		go func(slot int, rcpt string) {
			defer wg.Done()
			err := d.sender.Send(ctx, mailer.Message{
				To:         rcpt,
				Subject:    doc.Subject,
				Body:       doc.Body,
				Filename:   doc.Filename,
				Attachment: doc.PDF,
			})
			if err != nil {
				log.Warn().Str("run_id", doc.RunID).Str("recipient", rcpt).Err(err).Msg("email delivery failed")
				results[slot] = Result{Sink: SinkEmail, Recipient: rcpt, Outcome: OutcomeFailed, Error: err.Error()}
				return
			}
			results[slot] = Result{Sink: SinkEmail, Recipient: rcpt, Outcome: OutcomeSent}
		}(1+i, rcpt)
	}
	wg.Wait()

	if d.store != nil {
		if err := d.store.Record(ctx, doc.RunID, results); err != nil {
			log.Warn().Str("run_id", doc.RunID).Err(err).Msg("delivery audit write failed")
		}
	}
	return results
}

// EmailFailures returns the failed email results from a dispatch.
func EmailFailures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Sink == SinkEmail && r.Outcome == OutcomeFailed {
			failed = append(failed, r)
		}
	}
	return failed
}
