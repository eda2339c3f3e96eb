package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/db/models"
	"github.com/celestiaorg/quill/internal/services"
	"github.com/celestiaorg/quill/internal/types"
)

// DefaultPageSize is the default number of items per page
const DefaultPageSize = models.DefaultLimit

// ContentHandler handles HTTP requests for content items
type ContentHandler struct {
	content *services.Content
}

// NewContentHandler creates a new content handler instance
func NewContentHandler(content *services.Content) *ContentHandler {
	return &ContentHandler{content: content}
}

// ListContent returns the caller's content items with their effective status
func (h *ContentHandler) ListContent(c *fiber.Ctx) error {
	opts := models.ListOptions{
		Limit:  c.QueryInt("limit", DefaultPageSize),
		Offset: c.QueryInt("offset", 0),
	}
	if opts.Limit <= 0 || opts.Offset < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput("limit must be positive and offset not negative"))
	}

	views, err := h.content.List(c.UserContext(), auth.PrincipalFrom(c), &opts)
	if err != nil {
		return respondWithError(c, err, ErrMsgContentNotFound, ErrMsgContentListFailed)
	}

	return c.JSON(types.Success(views))
}

// CreateContent schedules a new content item
func (h *ContentHandler) CreateContent(c *fiber.Ctx) error {
	var req types.CreateContentRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	item, err := h.content.Create(c.UserContext(), auth.PrincipalFrom(c), &req)
	if err != nil {
		return respondWithError(c, err, ErrMsgWebsiteNotFound, ErrMsgContentCreateFailed)
	}

	return c.Status(fiber.StatusCreated).JSON(types.Success(item))
}

// DeleteContent deletes a content item and its jobs
func (h *ContentHandler) DeleteContent(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgIDRequired))
	}

	if err := h.content.Delete(c.UserContext(), auth.PrincipalFrom(c), id); err != nil {
		return respondWithError(c, err, ErrMsgContentNotFound, ErrMsgContentDeleteFailed)
	}

	return c.JSON(types.Success(nil))
}

// WebsiteHandler handles HTTP requests for websites
type WebsiteHandler struct {
	websites *services.Website
}

// NewWebsiteHandler creates a new website handler instance
func NewWebsiteHandler(websites *services.Website) *WebsiteHandler {
	return &WebsiteHandler{websites: websites}
}

// ListWebsites returns the caller's websites
func (h *WebsiteHandler) ListWebsites(c *fiber.Ctx) error {
	websites, err := h.websites.List(c.UserContext(), auth.PrincipalFrom(c))
	if err != nil {
		return respondWithError(c, err, ErrMsgWebsiteNotFound, ErrMsgWebsiteListFailed)
	}
	return c.JSON(types.Success(websites))
}

// CreateWebsite registers a website for the caller
func (h *WebsiteHandler) CreateWebsite(c *fiber.Ctx) error {
	var req types.CreateWebsiteRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	website, err := h.websites.Create(c.UserContext(), auth.PrincipalFrom(c), &req)
	if err != nil {
		return respondWithError(c, err, ErrMsgWebsiteNotFound, ErrMsgWebsiteCreateFailed)
	}
	return c.Status(fiber.StatusCreated).JSON(types.Success(website))
}

// UserHandler handles HTTP requests for the caller's account
type UserHandler struct {
	users *services.User
}

// NewUserHandler creates a new user handler instance
func NewUserHandler(users *services.User) *UserHandler {
	return &UserHandler{users: users}
}

// UpdateSettings replaces the caller's generation credentials
func (h *UserHandler) UpdateSettings(c *fiber.Ctx) error {
	var req types.UpdateSettingsRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	if err := h.users.UpdateSettings(c.UserContext(), auth.PrincipalFrom(c), &req); err != nil {
		return respondWithError(c, err, ErrMsgUserNotFound, ErrMsgSettingsFailed)
	}
	return c.JSON(types.Success(nil))
}
