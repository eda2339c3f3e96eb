package repos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/celestiaorg/quill/internal/db"
	"github.com/celestiaorg/quill/internal/db/models"
)

// DBRepositoryTestSuite provides a base test suite for repository tests
type DBRepositoryTestSuite struct {
	suite.Suite
	db          *gorm.DB
	ctx         context.Context
	userRepo    *UserRepository
	websiteRepo *WebsiteRepository
	contentRepo *ContentRepository
	jobRepo     *JobRepository
}

func (s *DBRepositoryTestSuite) SetupTest() {
	// Every test gets its own named in-memory database
	name := strings.NewReplacer("/", "_", " ", "_").Replace(s.T().Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: db.NowUTC,
	})
	require.NoError(s.T(), err, "Failed to create in-memory database")

	sqlDB, err := gdb.DB()
	require.NoError(s.T(), err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(s.T(), db.Migrate(gdb), "Failed to run database migrations")

	s.db = gdb
	s.userRepo = NewUserRepository(gdb)
	s.websiteRepo = NewWebsiteRepository(gdb)
	s.contentRepo = NewContentRepository(gdb)
	s.jobRepo = NewJobRepository(gdb)
	s.ctx = context.Background()
}

func (s *DBRepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

// Helper methods for creating test data

func (s *DBRepositoryTestSuite) createTestUser() *models.User {
	user := &models.User{
		Email:           fmt.Sprintf("editor-%d@example.com", time.Now().UnixNano()),
		Name:            "Editor",
		GoogleAPIKey:    "test-key",
		GoogleModelName: "gemini-test",
	}
	s.Require().NoError(s.userRepo.Create(s.ctx, user))
	return user
}

func (s *DBRepositoryTestSuite) createTestWebsite(user *models.User) *models.Website {
	website := &models.Website{
		UserID:      user.ID,
		Name:        "Blog",
		URL:         "https://blog.example.com",
		Username:    "editor",
		AppPassword: "abcd efgh",
	}
	s.Require().NoError(s.websiteRepo.Create(s.ctx, website))
	return website
}

func (s *DBRepositoryTestSuite) createTestContent(website *models.Website, status models.ContentStatus, scheduledFor *time.Time) *models.ContentItem {
	item := &models.ContentItem{
		Topic:        "Agentic AI in newsrooms",
		Status:       status,
		ScheduledFor: scheduledFor,
	}
	if website != nil {
		item.WebsiteID = &website.ID
	}
	s.Require().NoError(s.contentRepo.Create(s.ctx, item))
	return item
}

func (s *DBRepositoryTestSuite) createTestJob(item *models.ContentItem, status models.JobStatus) *models.AgentJob {
	job := &models.AgentJob{
		ContentItemID: item.ID,
		Status:        status,
	}
	s.Require().NoError(s.jobRepo.Create(s.ctx, job))
	return job
}

// ageJob moves the job's update time into the past without touching its other columns
func (s *DBRepositoryTestSuite) ageJob(job *models.AgentJob, age time.Duration) {
	err := s.db.Model(&models.AgentJob{}).
		Where("id = ?", job.ID).
		UpdateColumn(models.UpdatedAtField, time.Now().UTC().Add(-age)).Error
	s.Require().NoError(err)
}
