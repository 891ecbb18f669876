// Package scope decides whether a query belongs to the medical knowledge
// base before any generation happens. Out-of-scope queries are refused
// without spending an LLM call.
package scope

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/medrag/internal/domain"
	"github.com/kailas-cloud/medrag/internal/metrics"
)

// Decision is the gate's verdict for a query.
type Decision int

const (
	OutOfScope Decision = iota
	InScope
)

func (d Decision) String() string {
	if d == InScope {
		return "in_scope"
	}
	return "out_of_scope"
}

// Signal is one independent scope test. Signals are ORed: any match puts
// the query in scope.
type Signal interface {
	Name() string
	Matches(ctx context.Context, query string) (bool, error)
}

// Gate classifies queries by running its signals in order.
type Gate struct {
	signals []Signal
}

// NewGate creates a gate over the given signals. Order matters: cheap
// signals should come first so expensive ones only run when needed.
func NewGate(signals ...Signal) *Gate {
	return &Gate{signals: signals}
}

// Classify runs the signals until one matches. A failing signal does not
// veto the query; remaining signals still run, and its error surfaces only
// when no signal matched.
func (g *Gate) Classify(ctx context.Context, query string) (Decision, error) {
	if strings.TrimSpace(query) == "" {
		return OutOfScope, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}

	var errs []error
	for _, sig := range g.signals {
		ok, err := sig.Matches(ctx, query)
		if err != nil {
			errs = append(errs, fmt.Errorf("signal %s: %w", sig.Name(), err))
			continue
		}
		if ok {
			metrics.ScopeDecisionsTotal.WithLabelValues(InScope.String()).Inc()
			return InScope, nil
		}
	}
	if len(errs) > 0 {
		return OutOfScope, errors.Join(errs...)
	}

	metrics.ScopeDecisionsTotal.WithLabelValues(OutOfScope.String()).Inc()
	return OutOfScope, nil
}
