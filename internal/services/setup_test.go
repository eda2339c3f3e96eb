package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/celestiaorg/quill/internal/agent"
	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/config"
	"github.com/celestiaorg/quill/internal/db"
	"github.com/celestiaorg/quill/internal/db/models"
	"github.com/celestiaorg/quill/internal/db/repos"
	"github.com/celestiaorg/quill/internal/metrics"
)

// fakeAgent records run requests and answers with run, optionally blocking
// until release is closed
type fakeAgent struct {
	mu       sync.Mutex
	requests []agent.RunRequest
	run      func(req agent.RunRequest) (*agent.RunResponse, error)
	release  chan struct{}
	started  chan string
}

func (f *fakeAgent) Run(_ context.Context, req agent.RunRequest) (*agent.RunResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- req.JobID
	}
	if f.release != nil {
		<-f.release
	}
	if f.run == nil {
		return &agent.RunResponse{}, nil
	}
	return f.run(req)
}

func (f *fakeAgent) Requests() []agent.RunRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]agent.RunRequest(nil), f.requests...)
}

// respondWith returns a run func answering with logs and a string result
func respondWith(result string, logs ...string) func(agent.RunRequest) (*agent.RunResponse, error) {
	return func(agent.RunRequest) (*agent.RunResponse, error) {
		raw, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		return &agent.RunResponse{Logs: logs, Result: raw}, nil
	}
}

// TestSetup wires the services on an in-memory database
type TestSetup struct {
	t   *testing.T
	ctx context.Context

	DB          *gorm.DB
	UserRepo    *repos.UserRepository
	WebsiteRepo *repos.WebsiteRepository
	ContentRepo *repos.ContentRepository
	JobRepo     *repos.JobRepository

	Agent      *fakeAgent
	Metrics    *metrics.Metrics
	Dispatcher *Dispatcher
	Scanner    *Scanner
	Status     *StatusReader
	Reconciler *Reconciler
	Content    *Content
	Websites   *Website
	Users      *User
}

func NewTestSetup(t *testing.T, opts DispatcherOptions) *TestSetup {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: db.NowUTC,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))

	s := &TestSetup{
		t:           t,
		ctx:         context.Background(),
		DB:          gdb,
		UserRepo:    repos.NewUserRepository(gdb),
		WebsiteRepo: repos.NewWebsiteRepository(gdb),
		ContentRepo: repos.NewContentRepository(gdb),
		JobRepo:     repos.NewJobRepository(gdb),
		Agent:       &fakeAgent{},
		Metrics:     metrics.NewMetrics(prometheus.NewRegistry()),
	}
	s.Dispatcher = NewDispatcher(s.ContentRepo, s.JobRepo, s.Agent, s.Metrics, opts)
	s.Scanner = NewScanner(s.ContentRepo, s.Dispatcher, s.Metrics)
	s.Status = NewStatusReader(s.JobRepo, config.DefaultStatusLogLimit)
	s.Reconciler = NewReconciler(s.JobRepo, time.Hour, s.Metrics)
	s.Content = NewContentService(s.ContentRepo, s.WebsiteRepo, s.JobRepo)
	s.Websites = NewWebsiteService(s.WebsiteRepo)
	s.Users = NewUserService(s.UserRepo)

	t.Cleanup(func() {
		s.Dispatcher.Wait()
		_ = sqlDB.Close()
	})
	return s
}

func defaultOptions() DispatcherOptions {
	return DispatcherOptions{
		NoURLPolicy:      config.NoURLPolicyLeave,
		SerializePerItem: true,
		StaleAfter:       time.Hour,
	}
}

func (s *TestSetup) CreateUser(apiKey string) (*models.User, *auth.Principal) {
	user := &models.User{
		Email:           fmt.Sprintf("editor-%d@example.com", time.Now().UnixNano()),
		GoogleAPIKey:    apiKey,
		GoogleModelName: "gemini-test",
	}
	require.NoError(s.t, s.UserRepo.Create(s.ctx, user))
	return user, &auth.Principal{UserID: user.ID, Email: user.Email}
}

func (s *TestSetup) CreateWebsite(user *models.User, password string) *models.Website {
	website := &models.Website{
		UserID:      user.ID,
		Name:        "Blog",
		URL:         "https://blog.example.com",
		Username:    "editor",
		AppPassword: password,
	}
	require.NoError(s.t, s.WebsiteRepo.Create(s.ctx, website))
	return website
}

func (s *TestSetup) CreateContent(website *models.Website, status models.ContentStatus, scheduledFor *time.Time) *models.ContentItem {
	item := &models.ContentItem{
		Topic:        "Agentic AI in newsrooms",
		Status:       status,
		ScheduledFor: scheduledFor,
	}
	if website != nil {
		item.WebsiteID = &website.ID
	}
	require.NoError(s.t, s.ContentRepo.Create(s.ctx, item))
	return item
}

// CreateReadyContent creates a scheduled item whose owner is fully configured
func (s *TestSetup) CreateReadyContent() (*models.ContentItem, *auth.Principal) {
	user, principal := s.CreateUser("test-key")
	website := s.CreateWebsite(user, "abcd efgh")
	past := time.Now().Add(-time.Minute)
	return s.CreateContent(website, models.ContentStatusScheduled, &past), principal
}

func (s *TestSetup) Jobs(contentID string) []models.AgentJob {
	jobs, err := s.JobRepo.ListByContent(s.ctx, contentID)
	require.NoError(s.t, err)
	return jobs
}

func (s *TestSetup) Job(id string) *models.AgentJob {
	job, err := s.JobRepo.GetByID(s.ctx, id)
	require.NoError(s.t, err)
	return job
}

func (s *TestSetup) Item(id string) *models.ContentItem {
	item, err := s.ContentRepo.GetByID(s.ctx, id)
	require.NoError(s.t, err)
	return item
}
