package test

import (
	"encoding/json"
	"net/http/httptest"
	"sync"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/celestiaorg/quill/internal/agent"
)

// AgentReply is what the FakeAgent answers to a run call
type AgentReply struct {
	// StatusCode defaults to 200
	StatusCode int
	Logs       []string
	Result     interface{}
}

// FakeAgent is an agent service double served over HTTP
type FakeAgent struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []agent.RunRequest
	reply    AgentReply
	hold     chan struct{}
}

// NewFakeAgent starts a fake agent answering every run with an empty result
func NewFakeAgent() *FakeAgent {
	f := &FakeAgent{}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post(agent.RunPath, f.handleRun)
	f.Server = httptest.NewServer(adaptor.FiberApp(app))
	return f
}

func (f *FakeAgent) handleRun(c *fiber.Ctx) error {
	var req agent.RunRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).SendString(err.Error())
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	reply := f.reply
	hold := f.hold
	f.mu.Unlock()

	if hold != nil {
		<-hold
	}

	if reply.StatusCode != 0 && reply.StatusCode != fiber.StatusOK {
		return c.Status(reply.StatusCode).SendString("agent failure")
	}
	return c.JSON(fiber.Map{
		"logs":   reply.Logs,
		"result": reply.Result,
	})
}

// Reply sets the answer of the following run calls
func (f *FakeAgent) Reply(reply AgentReply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
}

// Hold makes the following run calls block until Release is called
func (f *FakeAgent) Hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = make(chan struct{})
}

// Release unblocks the held run calls
func (f *FakeAgent) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hold != nil {
		close(f.hold)
		f.hold = nil
	}
}

// Requests returns the run calls received so far
func (f *FakeAgent) Requests() []agent.RunRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]agent.RunRequest(nil), f.requests...)
}

// Close releases held calls and stops the server
func (f *FakeAgent) Close() {
	f.Release()
	f.Server.Close()
}
