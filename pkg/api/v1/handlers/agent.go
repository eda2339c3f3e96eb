package handlers

import (
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/services"
	"github.com/celestiaorg/quill/internal/types"
)

// AgentHandler handles dispatch and job status requests
type AgentHandler struct {
	dispatcher *services.Dispatcher
	status     *services.StatusReader
}

// NewAgentHandler creates a new agent handler instance
func NewAgentHandler(dispatcher *services.Dispatcher, status *services.StatusReader) *AgentHandler {
	return &AgentHandler{
		dispatcher: dispatcher,
		status:     status,
	}
}

// RunAgent starts a generation run for a content item and answers with the job ID
// without waiting for the agent
func (h *AgentHandler) RunAgent(c *fiber.Ctx) error {
	var req types.RunAgentRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	receipt, err := h.dispatcher.Dispatch(c.UserContext(), auth.PrincipalFrom(c), req.ContentID)
	if err != nil {
		return respondWithError(c, err, ErrMsgContentNotFound, ErrMsgDispatchFailed)
	}

	return c.JSON(types.Success(types.RunAgentResponse{JobID: receipt.JobID}))
}

// GetJob returns the status of a job with its logs truncated
func (h *AgentHandler) GetJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if jobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgIDRequired))
	}

	status, err := h.status.Read(c.UserContext(), auth.PrincipalFrom(c), jobID)
	if err != nil {
		return respondWithError(c, err, ErrMsgJobNotFound, ErrMsgJobGetFailed)
	}

	return c.JSON(types.Success(status))
}

// CronHandler handles the due scan triggered by external schedulers
type CronHandler struct {
	scanner *services.Scanner
}

// NewCronHandler creates a new cron handler instance
func NewCronHandler(scanner *services.Scanner) *CronHandler {
	return &CronHandler{scanner: scanner}
}

// Scan dispatches every due content item and reports the outcome per item
func (h *CronHandler) Scan(c *fiber.Ctx) error {
	results, err := h.scanner.Scan(c.UserContext(), time.Now())
	if err != nil {
		return respondWithError(c, err, ErrMsgContentNotFound, ErrMsgScanFailed)
	}

	return c.JSON(types.Success(types.ScanResponse{
		Success: true,
		Results: results,
	}))
}

// DemoHandler handles unauthenticated demo runs
type DemoHandler struct {
	dispatcher *services.Dispatcher
	status     *services.StatusReader
}

// NewDemoHandler creates a new demo handler instance
func NewDemoHandler(dispatcher *services.Dispatcher, status *services.StatusReader) *DemoHandler {
	return &DemoHandler{
		dispatcher: dispatcher,
		status:     status,
	}
}

// Run creates a demo item for a topic and dispatches it
func (h *DemoHandler) Run(c *fiber.Ctx) error {
	var req types.DemoRunRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	receipt, item, err := h.dispatcher.DispatchDemo(c.UserContext(), req.Topic)
	if err != nil {
		return respondWithError(c, err, ErrMsgContentNotFound, ErrMsgDispatchFailed)
	}

	return c.JSON(types.Success(types.DemoRunResponse{
		JobID:     receipt.JobID,
		ContentID: item.ID,
	}))
}

// GetJob returns the status of a demo job
func (h *DemoHandler) GetJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if jobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgIDRequired))
	}

	status, err := h.status.ReadDemo(c.UserContext(), jobID)
	if err != nil {
		return respondWithError(c, err, ErrMsgJobNotFound, ErrMsgJobGetFailed)
	}

	return c.JSON(types.Success(status))
}
