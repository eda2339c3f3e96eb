package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/celestiaorg/quill/internal/agent"
	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/config"
	"github.com/celestiaorg/quill/internal/db/models"
	"github.com/celestiaorg/quill/internal/db/repos"
	"github.com/celestiaorg/quill/internal/logger"
	"github.com/celestiaorg/quill/internal/metrics"
	"github.com/celestiaorg/quill/internal/parser"
)

const (
	// SeedLog is the log a job starts with, before the agent answers
	SeedLog = "Connecting to agent service..."
	// EmptyRunLog replaces the logs of a run that returned none
	EmptyRunLog = "Workflow completed."
)

// AgentRunner executes a generation workflow on the agent service
type AgentRunner interface {
	Run(ctx context.Context, req agent.RunRequest) (*agent.RunResponse, error)
}

// Receipt acknowledges a dispatch
type Receipt struct {
	JobID    string `json:"job_id"`
	Accepted bool   `json:"accepted"`
}

// DispatcherOptions tunes the dispatcher
type DispatcherOptions struct {
	NoURLPolicy      config.NoURLPolicy
	SerializePerItem bool
	// StaleAfter is how long an active job blocks a new dispatch of its item.
	// Zero blocks for as long as the job is active.
	StaleAfter time.Duration
	Demo       config.Demo
}

// DispatcherOptionsFromConfig extracts the dispatcher options from the service configuration
func DispatcherOptionsFromConfig(cfg *config.Config) DispatcherOptions {
	return DispatcherOptions{
		NoURLPolicy:      cfg.NoURLPolicy,
		SerializePerItem: cfg.SerializePerItem,
		StaleAfter:       cfg.DispatchStaleAfter,
		Demo:             cfg.Demo,
	}
}

// Dispatcher creates agent jobs and completes them in the background
type Dispatcher struct {
	contents *repos.ContentRepository
	jobs     *repos.JobRepository
	agent    AgentRunner
	metrics  *metrics.Metrics
	opts     DispatcherOptions

	// serializes the in-flight check with the job creation
	startMu sync.Mutex
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(
	contents *repos.ContentRepository,
	jobs *repos.JobRepository,
	runner AgentRunner,
	m *metrics.Metrics,
	opts DispatcherOptions,
) *Dispatcher {
	if opts.NoURLPolicy == "" {
		opts.NoURLPolicy = config.NoURLPolicyLeave
	}
	if m == nil {
		m = metrics.NewMetrics(nil)
	}
	return &Dispatcher{
		contents: contents,
		jobs:     jobs,
		agent:    runner,
		metrics:  m,
		opts:     opts,
		now:      time.Now,
	}
}

// Dispatch starts a generation run for a content item on behalf of p. It
// returns once the job row exists; the agent call continues in the background.
func (d *Dispatcher) Dispatch(ctx context.Context, p *auth.Principal, contentID string) (*Receipt, error) {
	item, err := d.contents.GetWithOwner(ctx, contentID)
	if err != nil {
		err = wrapLookup("content item", contentID, err)
		d.countDispatch(err)
		return nil, err
	}

	var owner string
	if item.Website != nil {
		owner = item.Website.UserID
	}
	if err := auth.Authorize(p, owner); err != nil {
		d.countDispatch(err)
		return nil, err
	}

	req, err := runRequestFor(item)
	if err != nil {
		d.countDispatch(err)
		return nil, err
	}

	receipt, err := d.start(ctx, item.ID, req)
	d.countDispatch(err)
	return receipt, err
}

// DispatchDemo creates a draft item without website for topic and runs it
// with the demo credentials
func (d *Dispatcher) DispatchDemo(ctx context.Context, topic string) (*Receipt, *models.ContentItem, error) {
	demo := d.opts.Demo
	if strings.TrimSpace(demo.GoogleAPIKey) == "" {
		err := &ConfigurationError{Reason: "demo Google API key is not configured"}
		d.countDispatch(err)
		return nil, nil, err
	}

	topic = strings.Clone(topic)
	item := &models.ContentItem{
		Topic:  topic,
		Title:  topic,
		Status: models.ContentStatusDraft,
	}
	if err := d.contents.Create(ctx, item); err != nil {
		d.countDispatch(err)
		return nil, nil, fmt.Errorf("failed to create demo content item: %w", err)
	}

	req := agent.RunRequest{
		Topic:           item.Topic,
		GoogleAPIKey:    demo.GoogleAPIKey,
		GoogleModelName: demo.GoogleModelName,
		WPConfig: agent.WPConfig{
			URL:      demo.WPURL,
			Username: demo.WPUsername,
			Password: demo.WPPassword,
		},
	}
	receipt, err := d.start(ctx, item.ID, req)
	d.countDispatch(err)
	if err != nil {
		return nil, nil, err
	}
	return receipt, item, nil
}

// Wait blocks until every background run started by the dispatcher returned
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func runRequestFor(item *models.ContentItem) (agent.RunRequest, error) {
	website := item.Website
	if website == nil {
		return agent.RunRequest{}, &ConfigurationError{Reason: "content item has no website"}
	}
	if !website.HasCredentials() {
		return agent.RunRequest{}, &ConfigurationError{Reason: "website credentials are incomplete"}
	}
	user := website.User
	if user == nil || !user.HasAPIKey() {
		return agent.RunRequest{}, &ConfigurationError{Reason: "Google API key is required, add it in the settings"}
	}

	return agent.RunRequest{
		Topic:                item.Topic,
		GoogleAPIKey:         user.GoogleAPIKey,
		GoogleModelName:      user.GoogleModelName,
		GoogleFallbackModels: user.GoogleFallbackModels,
		WPConfig: agent.WPConfig{
			URL:      website.URL,
			Username: website.Username,
			Password: website.AppPassword,
		},
	}, nil
}

// start creates the job row and launches the background run
func (d *Dispatcher) start(ctx context.Context, contentID string, req agent.RunRequest) (*Receipt, error) {
	if d.opts.SerializePerItem {
		d.startMu.Lock()
		defer d.startMu.Unlock()

		if err := d.checkInFlight(ctx, contentID); err != nil {
			return nil, err
		}
	}

	job := &models.AgentJob{
		ContentItemID: contentID,
		Status:        models.JobStatusRunning,
		Logs:          SeedLog,
	}
	if err := d.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	req.JobID = job.ID

	logger.InfoWithFields("Dispatching content item", map[string]interface{}{
		"content_id": contentID,
		"job_id":     job.ID,
	})

	d.wg.Add(1)
	d.metrics.JobsInFlight.Inc()
	go d.run(context.WithoutCancel(ctx), job.ID, contentID, req)

	return &Receipt{JobID: job.ID, Accepted: true}, nil
}

func (d *Dispatcher) checkInFlight(ctx context.Context, contentID string) error {
	latest, err := d.jobs.LatestForContent(ctx, contentID)
	if err != nil {
		return err
	}
	if latest == nil || !latest.Status.IsActive() {
		return nil
	}
	if d.opts.StaleAfter > 0 && d.now().Sub(latest.UpdatedAt) >= d.opts.StaleAfter {
		logger.WarnWithFields("Ignoring stale in-flight job", map[string]interface{}{
			"content_id": contentID,
			"job_id":     latest.ID,
		})
		return nil
	}
	return fmt.Errorf("%w: job %s", ErrDispatchInFlight, latest.ID)
}

// run is the background phase of a dispatch. Nothing it does reaches the caller.
func (d *Dispatcher) run(ctx context.Context, jobID, contentID string, req agent.RunRequest) {
	defer d.wg.Done()
	defer d.metrics.JobsInFlight.Dec()
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorWithFields("Recovered panic in agent run", map[string]interface{}{
				"job_id": jobID,
				"panic":  fmt.Sprint(r),
			})
			d.failJob(ctx, jobID, fmt.Errorf("internal error: %v", r))
		}
	}()

	start := time.Now()
	resp, err := d.agent.Run(ctx, req)
	if err != nil {
		d.metrics.AgentCallDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		logger.WarnWithFields("Agent run failed", map[string]interface{}{
			"job_id":     jobID,
			"content_id": contentID,
			"error":      err.Error(),
		})
		d.failJob(ctx, jobID, err)
		return
	}
	d.metrics.AgentCallDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())

	d.complete(ctx, jobID, contentID, resp)
}

// complete records a successful run on the job, then on the content item
func (d *Dispatcher) complete(ctx context.Context, jobID, contentID string, resp *agent.RunResponse) {
	logText := strings.Join(resp.Logs, "\n")
	if logText == "" {
		logText = EmptyRunLog
	}
	result := parser.Parse(logText + "\n" + resp.ResultText())

	err := d.jobs.UpdateFields(ctx, jobID, map[string]interface{}{
		models.StatusField:         models.JobStatusCompleted,
		models.JobLogsField:        logText,
		models.JobCurrentStepField: models.StepCompleted,
	})
	if err != nil {
		logger.ErrorWithFields("Failed to complete job, leaving it running", map[string]interface{}{
			"job_id":     jobID,
			"content_id": contentID,
			"error":      err.Error(),
		})
		return
	}
	d.metrics.JobsFinishedTotal.WithLabelValues(models.JobStatusCompleted.String()).Inc()

	fields := itemUpdate(result, d.opts.NoURLPolicy)
	if len(fields) == 0 {
		logger.InfoWithFields("Agent run finished without a published URL", map[string]interface{}{
			"job_id":     jobID,
			"content_id": contentID,
		})
		return
	}
	if err := d.contents.UpdateFields(ctx, contentID, fields); err != nil {
		logger.ErrorWithFields("Failed to update content item after run", map[string]interface{}{
			"job_id":     jobID,
			"content_id": contentID,
			"error":      err.Error(),
		})
		return
	}

	logger.InfoWithFields("Content item updated from agent output", map[string]interface{}{
		"job_id":     jobID,
		"content_id": contentID,
		"status":     fields[models.StatusField],
	})
}

// itemUpdate maps a parsed agent output to the content item columns to write.
// Without a URL the status only changes under NoURLPolicyFail, the title
// follows a Final Title marker under every policy.
func itemUpdate(result parser.Result, policy config.NoURLPolicy) map[string]interface{} {
	fields := map[string]interface{}{}
	switch {
	case result.PublishedURL != nil:
		status := models.ContentStatusPublished
		if result.IsDraft {
			status = models.ContentStatusDraft
		}
		fields[models.StatusField] = status
		fields[models.ContentPublishedURLField] = *result.PublishedURL
	case policy == config.NoURLPolicyFail:
		fields[models.StatusField] = models.ContentStatusFailed
	}
	if result.Title != nil {
		fields[models.ContentTitleField] = *result.Title
	}
	return fields
}

// failJob records a failed run. A write error is only logged.
func (d *Dispatcher) failJob(ctx context.Context, jobID string, cause error) {
	err := d.jobs.UpdateFields(ctx, jobID, map[string]interface{}{
		models.StatusField:  models.JobStatusFailed,
		models.JobLogsField: "Error: " + cause.Error(),
	})
	if err != nil {
		logger.ErrorWithFields("Failed to record job failure", map[string]interface{}{
			"job_id": jobID,
			"cause":  cause.Error(),
			"error":  err.Error(),
		})
		return
	}
	d.metrics.JobsFinishedTotal.WithLabelValues(models.JobStatusFailed.String()).Inc()
}

func (d *Dispatcher) countDispatch(err error) {
	outcome := metrics.OutcomeAccepted
	switch {
	case err == nil:
	case errors.Is(err, ErrDispatchInFlight):
		outcome = metrics.OutcomeInFlight
	case IsConfigurationError(err), errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthorized):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	d.metrics.DispatchesTotal.WithLabelValues(outcome).Inc()
}
