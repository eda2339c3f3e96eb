package repos

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type WebsiteRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func TestWebsiteRepository(t *testing.T) {
	suite.Run(t, new(WebsiteRepositoryTestSuite))
}

func (s *WebsiteRepositoryTestSuite) TestCreateAndList() {
	owner := s.createTestUser()
	other := s.createTestUser()

	first := s.createTestWebsite(owner)
	second := s.createTestWebsite(owner)
	s.createTestWebsite(other)

	found, err := s.websiteRepo.GetByID(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("abcd efgh", found.AppPassword)

	websites, err := s.websiteRepo.ListByUser(s.ctx, owner.ID)
	s.Require().NoError(err)
	s.Require().Len(websites, 2)
	s.ElementsMatch([]string{first.ID, second.ID}, []string{websites[0].ID, websites[1].ID})

	_, err = s.websiteRepo.GetByID(s.ctx, "missing")
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}
