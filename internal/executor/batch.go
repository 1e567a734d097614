package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/intent"
	"github.com/Kerhoff/hearth/internal/metrics"
)

// Outcome is the result of one intent in a batch. Exactly one of Result and
// Err is set.
type Outcome struct {
	Intent intent.Intent
	Result Result
	Err    error
}

// Message is the chat reply line for the outcome.
func (o Outcome) Message() string {
	if o.Err != nil {
		return fmt.Sprintf("❌ Failed: %s (%v)", intentLabel(o.Intent), o.Err)
	}
	return o.Result.Message()
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	out := struct {
		Intent  intent.Wire `json:"intent"`
		Type    ResultKind  `json:"type,omitempty"`
		Message string      `json:"message"`
		Data    Result      `json:"data,omitempty"`
		Error   string      `json:"error,omitempty"`
	}{Intent: intent.ToWire(o.Intent), Message: o.Message(), Data: o.Result}
	if o.Err != nil {
		out.Error = o.Err.Error()
	} else {
		out.Type = o.Result.Kind()
	}
	return json.Marshal(out)
}

func intentLabel(in intent.Intent) string {
	if t := intent.Title(in); t != "" {
		return t
	}
	return in.Raw()
}

// BatchReport collects the outcomes of ExecuteBatch in input order.
type BatchReport struct {
	ID       string    `json:"id"`
	Outcomes []Outcome `json:"results"`
	Failed   int       `json:"failed"`
}

// Err returns the aggregated errors of the failed items, or nil.
func (r *BatchReport) Err() error {
	var result *multierror.Error
	for i, o := range r.Outcomes {
		if o.Err != nil {
			result = multierror.Append(result, fmt.Errorf("item %d: %w", i, o.Err))
		}
	}
	return result.ErrorOrNil()
}

// Messages returns one reply line per outcome.
func (r *BatchReport) Messages() []string {
	out := make([]string, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Message()
	}
	return out
}

// ExecuteBatch runs intents one at a time in order, so later items see the
// effects of earlier ones. A failing item is recorded and the batch goes on.
func (e *Executor) ExecuteBatch(ctx context.Context, householdID int64, intents []intent.Intent) *BatchReport {
	report := &BatchReport{ID: uuid.NewString(), Outcomes: make([]Outcome, 0, len(intents))}
	for _, in := range intents {
		res, err := e.Execute(ctx, householdID, in)
		report.Outcomes = append(report.Outcomes, Outcome{Intent: in, Result: res, Err: err})
		if err != nil {
			report.Failed++
			metrics.BatchFailures.Inc()
		}
	}
	if report.Failed > 0 {
		e.logger.WithFields(logrus.Fields{
			"household_id": householdID,
			"batch_id":     report.ID,
		}).Warnf("%d of %d intents failed", report.Failed, len(intents))
	}
	return report
}
