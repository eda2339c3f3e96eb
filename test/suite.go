package test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/celestiaorg/quill/internal/app"
	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/config"
	"github.com/celestiaorg/quill/internal/db/models"
	"github.com/celestiaorg/quill/internal/db/repos"
	"github.com/celestiaorg/quill/internal/types"
	"github.com/celestiaorg/quill/pkg/api/v1/client"
)

// DefaultTestTimeout is the default timeout for test suites.
const DefaultTestTimeout = 30 * time.Second

// Suite encapsulates all components needed for integration testing.
// It provides a complete test setup with:
//   - In-memory database
//   - Real API server
//   - Real API clients, anonymous and cron
//   - A fake agent service
type Suite struct {
	t *testing.T

	Config *config.Config

	// Server components
	App    *app.App
	Server *httptest.Server

	// Client components
	APIClient  *client.APIClient
	CronClient *client.APIClient

	// Database components
	DB          *gorm.DB
	UserRepo    *repos.UserRepository
	WebsiteRepo *repos.WebsiteRepository
	ContentRepo *repos.ContentRepository
	JobRepo     *repos.JobRepository

	Agent *FakeAgent

	ctx        context.Context
	cancelFunc context.CancelFunc

	cleanup func()
}

// Option adjusts the server configuration before the server starts
type Option func(*config.Config)

// NewSuite creates a new test suite with the given options.
// The suite must be cleaned up after use by calling Cleanup.
func NewSuite(t *testing.T, opts ...Option) *Suite {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)

	suite := &Suite{
		t:          t,
		ctx:        ctx,
		cancelFunc: cancel,
		Agent:      NewFakeAgent(),
	}
	suite.cleanup = func() {
		suite.cancelFunc()
		suite.Agent.Close()
	}

	suite.Config = DefaultConfig(suite.Agent.Server.URL)
	for _, opt := range opts {
		opt(suite.Config)
	}

	SetupTestDB(suite)
	SetupServer(suite)

	return suite
}

// SetupTestDB creates the in-memory database and the repositories
func SetupTestDB(suite *Suite) {
	database, err := NewInMemoryTestDB(suite.t)
	suite.Require().NoError(err, "Failed to create database")
	suite.DB = database

	suite.UserRepo = repos.NewUserRepository(database)
	suite.WebsiteRepo = repos.NewWebsiteRepository(database)
	suite.ContentRepo = repos.NewContentRepository(database)
	suite.JobRepo = repos.NewJobRepository(database)

	oldCleanup := suite.cleanup
	suite.cleanup = func() {
		if oldCleanup != nil {
			oldCleanup()
		}
		CloseTestDB(database)
	}
}

// Cleanup tears down the test suite, releasing all resources.
// This should be deferred immediately after creating the suite.
func (s *Suite) Cleanup() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// Context returns the suite's context, which is automatically
// canceled when the suite is cleaned up.
func (s *Suite) Context() context.Context {
	return s.ctx
}

// Require returns a require.Assertions instance for this suite.
func (s *Suite) Require() *require.Assertions {
	return require.New(s.t)
}

// Retry retries a function until it succeeds or the number of retries is reached.
func (s *Suite) Retry(fn func() error, retries int, interval time.Duration) (err error) {
	for i := 0; i < retries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		time.Sleep(interval)
	}
	return
}

// CreateUser stores a user with the given Google API key and returns an API
// client authenticated as that user
func (s *Suite) CreateUser(googleAPIKey string) (*models.User, *client.APIClient) {
	user := &models.User{
		Email:        fmt.Sprintf("editor-%d@example.com", time.Now().UnixNano()),
		GoogleAPIKey: googleAPIKey,
	}
	s.Require().NoError(s.UserRepo.Create(s.ctx, user))

	token, err := auth.NewAuthenticator(TestJWTSecret, "").MintToken(user.ID, user.Email, time.Hour)
	s.Require().NoError(err)
	return user, s.NewClient(token)
}

// CreateWebsite registers a website through the API
func (s *Suite) CreateWebsite(c *client.APIClient) models.Website {
	website, err := c.CreateWebsite(s.ctx, types.CreateWebsiteRequest{
		Name:        "Blog",
		URL:         "https://blog.example.com",
		Username:    "editor",
		AppPassword: "app-password",
	})
	s.Require().NoError(err)
	return website
}

// WaitForJob polls the job until it leaves the running state
func (s *Suite) WaitForJob(c *client.APIClient, jobID string) types.JobStatusResponse {
	var job types.JobStatusResponse
	err := s.Retry(func() error {
		var err error
		job, err = c.GetJob(s.ctx, jobID)
		if err != nil {
			return err
		}
		if !job.IsFinished() {
			return fmt.Errorf("job %s is still %s", jobID, job.Status)
		}
		return nil
	}, 100, 20*time.Millisecond)
	s.Require().NoError(err)
	return job
}
