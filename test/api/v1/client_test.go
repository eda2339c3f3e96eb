package api_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/quill/internal/config"
	"github.com/celestiaorg/quill/internal/db/models"
	"github.com/celestiaorg/quill/internal/services"
	"github.com/celestiaorg/quill/internal/types"
	"github.com/celestiaorg/quill/pkg/api/v1/routes"
	"github.com/celestiaorg/quill/test"
)

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	var fiberErr *fiber.Error
	require.True(t, errors.As(err, &fiberErr), "expected a fiber error, got %v", err)
	assert.Equal(t, code, fiberErr.Code)
}

func TestClientHealthCheck(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	health, err := suite.APIClient.HealthCheck(suite.Context())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health["status"])
}

func TestClientRunAgentPublishes(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	_, userClient := suite.CreateUser("google-key")
	website := suite.CreateWebsite(userClient)

	item, err := userClient.CreateContent(suite.Context(), types.CreateContentRequest{
		WebsiteID: website.ID,
		Topic:     "Go generics",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusDraft, item.Status)

	suite.Agent.Reply(test.AgentReply{
		Logs:   []string{"Researching", "Writing"},
		Result: "Final Title: Generics in Practice\nSUCCESS: Post published at https://blog.example.com/generics",
	})

	run, err := userClient.RunAgent(suite.Context(), item.ID)
	require.NoError(t, err)
	require.NotEmpty(t, run.JobID)

	job := suite.WaitForJob(userClient, run.JobID)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Contains(t, job.Logs, "Writing")

	requests := suite.Agent.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, run.JobID, requests[0].JobID)
	assert.Equal(t, "Go generics", requests[0].Topic)
	assert.Equal(t, "google-key", requests[0].GoogleAPIKey)
	assert.Equal(t, "https://blog.example.com", requests[0].WPConfig.URL)
	assert.Equal(t, "app-password", requests[0].WPConfig.Password)

	views, err := userClient.ListContent(suite.Context(), nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.ContentStatusPublished, views[0].Status)
	assert.Equal(t, models.ContentStatusPublished, views[0].EffectiveStatus)
	require.NotNil(t, views[0].PublishedURL)
	assert.Equal(t, "https://blog.example.com/generics", *views[0].PublishedURL)
	assert.Equal(t, "Generics in Practice", views[0].Title)
}

func TestClientRunAgentFailure(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	_, userClient := suite.CreateUser("google-key")
	website := suite.CreateWebsite(userClient)
	item, err := userClient.CreateContent(suite.Context(), types.CreateContentRequest{
		WebsiteID: website.ID,
		Topic:     "Failing topic",
	})
	require.NoError(t, err)

	suite.Agent.Reply(test.AgentReply{StatusCode: http.StatusInternalServerError})

	run, err := userClient.RunAgent(suite.Context(), item.ID)
	require.NoError(t, err)

	job := suite.WaitForJob(userClient, run.JobID)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Contains(t, job.Logs, "Error: ")
	assert.Contains(t, job.Logs, "status 500")

	stored, err := suite.ContentRepo.GetByID(suite.Context(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusDraft, stored.Status)
}

func TestClientRunAgentRejectsInFlightItem(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	_, userClient := suite.CreateUser("google-key")
	website := suite.CreateWebsite(userClient)
	item, err := userClient.CreateContent(suite.Context(), types.CreateContentRequest{
		WebsiteID: website.ID,
		Topic:     "Slow topic",
	})
	require.NoError(t, err)

	suite.Agent.Hold()
	first, err := userClient.RunAgent(suite.Context(), item.ID)
	require.NoError(t, err)

	running, err := userClient.GetJob(suite.Context(), first.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, running.Status)
	assert.Equal(t, services.SeedLog, running.Logs)

	_, err = userClient.RunAgent(suite.Context(), item.ID)
	requireStatus(t, err, fiber.StatusConflict)

	suite.Agent.Release()
	job := suite.WaitForJob(userClient, first.JobID)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
}

func TestClientAuthorization(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	_, owner := suite.CreateUser("google-key")
	_, stranger := suite.CreateUser("other-key")
	website := suite.CreateWebsite(owner)
	item, err := owner.CreateContent(suite.Context(), types.CreateContentRequest{
		WebsiteID: website.ID,
		Topic:     "Private topic",
	})
	require.NoError(t, err)

	_, err = suite.APIClient.RunAgent(suite.Context(), item.ID)
	requireStatus(t, err, fiber.StatusUnauthorized)

	_, err = stranger.RunAgent(suite.Context(), item.ID)
	requireStatus(t, err, fiber.StatusForbidden)

	_, err = stranger.RunAgent(suite.Context(), "missing")
	requireStatus(t, err, fiber.StatusNotFound)

	run, err := owner.RunAgent(suite.Context(), item.ID)
	require.NoError(t, err)

	_, err = stranger.GetJob(suite.Context(), run.JobID)
	requireStatus(t, err, fiber.StatusForbidden)

	_, err = suite.CronClient.GetJob(suite.Context(), run.JobID)
	require.NoError(t, err)

	suite.WaitForJob(owner, run.JobID)
}

func TestClientRunAgentMissingAPIKey(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	_, userClient := suite.CreateUser("")
	website := suite.CreateWebsite(userClient)
	item, err := userClient.CreateContent(suite.Context(), types.CreateContentRequest{
		WebsiteID: website.ID,
		Topic:     "No key",
	})
	require.NoError(t, err)

	_, err = userClient.RunAgent(suite.Context(), item.ID)
	requireStatus(t, err, fiber.StatusBadRequest)
	assert.Empty(t, suite.Agent.Requests())

	require.NoError(t, userClient.UpdateSettings(suite.Context(), types.UpdateSettingsRequest{
		GoogleAPIKey: "new-key",
	}))

	run, err := userClient.RunAgent(suite.Context(), item.ID)
	require.NoError(t, err)
	suite.WaitForJob(userClient, run.JobID)
	assert.Equal(t, "new-key", suite.Agent.Requests()[0].GoogleAPIKey)
}

func TestClientTriggerScan(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	_, userClient := suite.CreateUser("google-key")
	website := suite.CreateWebsite(userClient)

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	due, err := userClient.CreateContent(suite.Context(), types.CreateContentRequest{
		WebsiteID: website.ID, Topic: "Due", ScheduledFor: &past,
	})
	require.NoError(t, err)
	_, err = userClient.CreateContent(suite.Context(), types.CreateContentRequest{
		WebsiteID: website.ID, Topic: "Later", ScheduledFor: &future,
	})
	require.NoError(t, err)

	_, err = userClient.TriggerScan(suite.Context())
	requireStatus(t, err, fiber.StatusUnauthorized)

	scan, err := suite.CronClient.TriggerScan(suite.Context())
	require.NoError(t, err)
	assert.True(t, scan.Success)
	require.Len(t, scan.Results, 1)
	assert.Equal(t, due.ID, scan.Results[0].ContentID)
	assert.Equal(t, types.ScanStatusTriggered, scan.Results[0].Status)

	suite.WaitForJob(userClient, scan.Results[0].JobID)
}

func TestClientDemo(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	suite.Agent.Reply(test.AgentReply{
		Result: "[View Post](https://demo.example.com/post)",
	})

	run, err := suite.APIClient.DemoRun(suite.Context(), "Demo topic")
	require.NoError(t, err)
	require.NotEmpty(t, run.ContentID)

	var job types.JobStatusResponse
	err = suite.Retry(func() error {
		job, err = suite.APIClient.GetDemoJob(suite.Context(), run.JobID)
		if err != nil {
			return err
		}
		if !job.IsFinished() {
			return errors.New("demo job still running")
		}
		return nil
	}, 100, 20*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, job.PublishedURL)
	assert.Equal(t, "https://demo.example.com/post", *job.PublishedURL)
	assert.Equal(t, "demo-key", suite.Agent.Requests()[0].GoogleAPIKey)
}

func TestClientDemoWithoutKey(t *testing.T) {
	suite := test.NewSuite(t, func(cfg *config.Config) {
		cfg.Demo.GoogleAPIKey = ""
	})
	defer suite.Cleanup()

	_, err := suite.APIClient.DemoRun(suite.Context(), "Demo topic")
	requireStatus(t, err, fiber.StatusBadRequest)
}

// A form-encoded topic reaches the agent unchanged while later requests are served
func TestDemoFormTopicKeptForAgent(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	suite.Agent.Hold()

	first := strings.Repeat("A", 16)
	other := strings.Repeat("B", 16)
	post := func(topic string) {
		body := url.Values{"topic": {topic}}.Encode()
		req := httptest.NewRequest(http.MethodPost, routes.DemoRunURL(), strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
		resp, err := suite.App.Fiber.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NoError(t, resp.Body.Close())
	}

	post(first)
	for i := 0; i < 20; i++ {
		post(other)
	}

	err := suite.Retry(func() error {
		if len(suite.Agent.Requests()) < 21 {
			return errors.New("agent calls still pending")
		}
		return nil
	}, 100, 20*time.Millisecond)
	require.NoError(t, err)
	suite.Agent.Release()
	suite.App.Dispatcher.Wait()

	topics := map[string]int{}
	for _, req := range suite.Agent.Requests() {
		topics[req.Topic]++
	}
	assert.Equal(t, map[string]int{first: 1, other: 20}, topics)
}

func TestClientContentLifecycle(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	_, userClient := suite.CreateUser("google-key")
	website := suite.CreateWebsite(userClient)

	websites, err := userClient.ListWebsites(suite.Context())
	require.NoError(t, err)
	require.Len(t, websites, 1)
	assert.Equal(t, website.ID, websites[0].ID)

	_, err = userClient.CreateContent(suite.Context(), types.CreateContentRequest{WebsiteID: website.ID})
	requireStatus(t, err, fiber.StatusBadRequest)

	item, err := userClient.CreateContent(suite.Context(), types.CreateContentRequest{
		WebsiteID: website.ID,
		Topic:     "Short lived",
	})
	require.NoError(t, err)

	run, err := userClient.RunAgent(suite.Context(), item.ID)
	require.NoError(t, err)
	suite.WaitForJob(userClient, run.JobID)

	require.NoError(t, userClient.DeleteContent(suite.Context(), item.ID))

	jobs, err := suite.JobRepo.ListByContent(suite.Context(), item.ID)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	err = userClient.DeleteContent(suite.Context(), item.ID)
	requireStatus(t, err, fiber.StatusNotFound)
}
