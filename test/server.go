package test

import (
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/celestiaorg/quill/internal/app"
	"github.com/celestiaorg/quill/internal/config"
	"github.com/celestiaorg/quill/pkg/api/v1/client"
)

// testClientTimeout is the timeout for test API client requests
const testClientTimeout = 5 * time.Second

// Secrets the test server is configured with
const (
	TestJWTSecret  = "test-jwt-secret"
	TestCronSecret = "test-cron-secret"
)

// DefaultConfig returns the server configuration used by NewSuite
func DefaultConfig(agentURL string) *config.Config {
	return &config.Config{
		AgentURL:            agentURL,
		AgentTimeout:        testClientTimeout,
		CronSecret:          TestCronSecret,
		JWTSecret:           TestJWTSecret,
		NoURLPolicy:         config.NoURLPolicyLeave,
		SerializePerItem:    true,
		DispatchStaleAfter:  config.DefaultDispatchStale,
		StatusLogLimit:      config.DefaultStatusLogLimit,
		ScanSchedule:        config.DefaultScanSchedule,
		ReconcileSchedule:   config.DefaultReconcileSchedule,
		ReconcileStaleAfter: config.DefaultReconcileStale,
		MetricsEnabled:      true,
		Demo: config.Demo{
			GoogleAPIKey: "demo-key",
			WPURL:        "https://demo.example.com",
			WPUsername:   "demo",
			WPPassword:   "demo-password",
		},
	}
}

// SetupServer configures the test suite with a real API server
func SetupServer(suite *Suite) {
	service, err := app.New(suite.Config, suite.DB, nil, prometheus.NewRegistry())
	suite.Require().NoError(err, "Failed to build service")
	suite.App = service

	// Serve the fiber app through net/http so httptest can own the listener
	suite.Server = httptest.NewServer(adaptor.FiberApp(service.Fiber))

	suite.APIClient = suite.NewClient("")
	suite.CronClient = suite.NewClient(TestCronSecret)

	originalCleanup := suite.cleanup
	suite.cleanup = func() {
		suite.Server.Close()
		suite.Agent.Release()
		service.Dispatcher.Wait()
		if originalCleanup != nil {
			originalCleanup()
		}
	}
}

// NewClient returns an API client for the test server sending token as the
// Bearer credential
func (s *Suite) NewClient(token string) *client.APIClient {
	c, err := client.NewClient(&client.Options{
		BaseURL: s.Server.URL,
		Timeout: testClientTimeout,
		Token:   token,
	})
	s.Require().NoError(err, "Failed to create API client")
	return c
}
