package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/db/repos"
	"github.com/celestiaorg/quill/internal/logger"
	"github.com/celestiaorg/quill/internal/metrics"
	"github.com/celestiaorg/quill/internal/types"
)

// ItemDispatcher starts a run for one content item
type ItemDispatcher interface {
	Dispatch(ctx context.Context, p *auth.Principal, contentID string) (*Receipt, error)
}

// Scanner finds scheduled content that is due and dispatches it
type Scanner struct {
	contents   *repos.ContentRepository
	dispatcher ItemDispatcher
	metrics    *metrics.Metrics
}

// NewScanner creates a new scanner
func NewScanner(contents *repos.ContentRepository, dispatcher ItemDispatcher, m *metrics.Metrics) *Scanner {
	if m == nil {
		m = metrics.NewMetrics(nil)
	}
	return &Scanner{
		contents:   contents,
		dispatcher: dispatcher,
		metrics:    m,
	}
}

// Scan dispatches every item scheduled at or before now, once each. A failing
// item is reported in its result and never stops the scan.
func (s *Scanner) Scan(ctx context.Context, now time.Time) ([]types.DispatchResult, error) {
	items, err := s.contents.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}

	principal := auth.Internal()
	results := make([]types.DispatchResult, 0, len(items))
	for _, item := range items {
		res := s.trigger(ctx, principal, item.ID)
		s.metrics.ScanResultsTotal.WithLabelValues(string(res.Status)).Inc()
		results = append(results, res)
	}

	if len(results) > 0 {
		logger.InfoWithFields("Due scan finished", map[string]interface{}{
			"due":       len(items),
			"triggered": countStatus(results, types.ScanStatusTriggered),
		})
	}
	return results, nil
}

func (s *Scanner) trigger(ctx context.Context, p *auth.Principal, contentID string) (res types.DispatchResult) {
	res.ContentID = contentID
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorWithFields("Recovered panic while triggering item", map[string]interface{}{
				"content_id": contentID,
				"panic":      fmt.Sprint(r),
			})
			res.Status = types.ScanStatusError
			res.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	receipt, err := s.dispatcher.Dispatch(ctx, p, contentID)
	switch {
	case err == nil:
		res.Status = types.ScanStatusTriggered
		res.JobID = receipt.JobID
	case errors.Is(err, ErrDispatchInFlight):
		res.Status = types.ScanStatusSkipped
		res.Error = err.Error()
	case IsConfigurationError(err), errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		res.Status = types.ScanStatusFailed
		res.Error = err.Error()
	default:
		res.Status = types.ScanStatusError
		res.Error = err.Error()
	}
	if err != nil {
		logger.WarnWithFields("Due item not triggered", map[string]interface{}{
			"content_id": contentID,
			"status":     res.Status,
			"error":      err.Error(),
		})
	}
	return res
}

func countStatus(results []types.DispatchResult, status types.ScanStatus) int {
	n := 0
	for _, r := range results {
		if r.Status == status {
			n++
		}
	}
	return n
}
