// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/pkg/api/v1/handlers"
)

/*

Routes are kept in the following order:

1. Smallest scope first (i.e. job routes before content routes)
2. GET, POST, PUT, DELETE order
	a. Param urls (ie /:id) go last within a method, otherwise fiber will interpret the route slug as that param.
3. Naming matches the action (i.e. GetJob, DeleteContent)

*/

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for all API endpoints
	APIv1Prefix = "/api/v1"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Route names for lookup
const (
	// Health check
	HealthCheck = "HealthCheck"
	Metrics     = "Metrics"

	// Agent routes
	RunAgent = "RunAgent"
	GetJob   = "GetJob"

	// Cron routes, GET and POST both trigger the due scan
	GetCron  = "GetCron"
	PostCron = "PostCron"

	// Demo routes
	DemoRun    = "DemoRun"
	DemoGetJob = "DemoGetJob"

	// Content routes
	ListContent   = "ListContent"
	CreateContent = "CreateContent"
	DeleteContent = "DeleteContent"

	// Website routes
	ListWebsites  = "ListWebsites"
	CreateWebsite = "CreateWebsite"

	// User routes
	UpdateSettings = "UpdateSettings"
)

// routeCache stores extracted routes for use prior to compilation
var (
	routeCache     map[string]string
	routeCacheMu   sync.RWMutex
	routeCacheInit sync.Once
)

// Handlers groups the v1 handlers passed to RegisterRoutes
type Handlers struct {
	Agent   *handlers.AgentHandler
	Cron    *handlers.CronHandler
	Demo    *handlers.DemoHandler
	Content *handlers.ContentHandler
	Website *handlers.WebsiteHandler
	User    *handlers.UserHandler
}

// RegisterRoutes configures all the v1 routes. metricsHandler may be nil,
// in which case /metrics is not served.
func RegisterRoutes(app *fiber.App, authn *auth.Authenticator, metricsHandler fiber.Handler, h Handlers) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	}).Name(HealthCheck)

	if metricsHandler != nil {
		app.Get("/metrics", metricsHandler).Name(Metrics)
	}

	v1 := app.Group(APIv1Prefix)
	required := authn.Required()

	// ---------------------------
	// Agent endpoints
	v1.Get("/jobs/:id", required, h.Agent.GetJob).Name(GetJob)
	v1.Post("/agent/run", required, h.Agent.RunAgent).Name(RunAgent)

	// ---------------------------
	// Cron endpoints
	cronOnly := authn.CronOnly()
	v1.Get("/cron", cronOnly, h.Cron.Scan).Name(GetCron)
	v1.Post("/cron", cronOnly, h.Cron.Scan).Name(PostCron)

	// ---------------------------
	// Demo endpoints, unauthenticated
	demo := v1.Group("/demo")
	demo.Get("/jobs/:id", h.Demo.GetJob).Name(DemoGetJob)
	demo.Post("/run", h.Demo.Run).Name(DemoRun)

	// ---------------------------
	// Content endpoints
	content := v1.Group("/content")
	content.Get("/", required, h.Content.ListContent).Name(ListContent)
	content.Post("/", required, h.Content.CreateContent).Name(CreateContent)
	content.Delete("/:id", required, h.Content.DeleteContent).Name(DeleteContent)

	// ---------------------------
	// Website endpoints
	websites := v1.Group("/websites")
	websites.Get("/", required, h.Website.ListWebsites).Name(ListWebsites)
	websites.Post("/", required, h.Website.CreateWebsite).Name(CreateWebsite)

	// ---------------------------
	// User endpoints
	v1.Put("/users/me/settings", required, h.User.UpdateSettings).Name(UpdateSettings)
}

// initRouteCache initializes the route cache by creating a mock app and extracting routes
func initRouteCache() {
	routeCacheInit.Do(func() {
		routeCache = make(map[string]string)

		app := fiber.New()
		noop := func(c *fiber.Ctx) error { return nil }

		RegisterRoutes(app, auth.NewAuthenticator("", ""), noop, Handlers{
			Agent:   &handlers.AgentHandler{},
			Cron:    &handlers.CronHandler{},
			Demo:    &handlers.DemoHandler{},
			Content: &handlers.ContentHandler{},
			Website: &handlers.WebsiteHandler{},
			User:    &handlers.UserHandler{},
		})

		for _, route := range app.GetRoutes() {
			if route.Name != "" {
				routeCache[route.Name] = route.Path
			}
		}
	})
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	initRouteCache()

	routeCacheMu.RLock()
	defer routeCacheMu.RUnlock()
	return routeCache[name]
}

// BuildURL builds a URL for the given route name and parameters
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, url.PathEscape(value))
	}

	// Remove trailing slash if it's a base endpoint with no parameters
	if strings.HasSuffix(route, "/") && len(route) > 1 && !strings.Contains(route, ":") {
		route = strings.TrimSuffix(route, "/")
	}

	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

// HealthCheckURL returns the URL for the health check endpoint
func HealthCheckURL() string {
	return BuildURL(HealthCheck, nil, nil)
}

// MetricsURL returns the URL for the prometheus endpoint
func MetricsURL() string {
	return BuildURL(Metrics, nil, nil)
}

// Agent route helpers

// RunAgentURL returns the URL for dispatching a content item
func RunAgentURL() string {
	return BuildURL(RunAgent, nil, nil)
}

// GetJobURL returns the URL for reading a job status
func GetJobURL(id string) string {
	return BuildURL(GetJob, map[string]string{"id": id}, nil)
}

// CronURL returns the URL of the due scan
func CronURL() string {
	return BuildURL(PostCron, nil, nil)
}

// Demo route helpers

// DemoRunURL returns the URL for starting a demo run
func DemoRunURL() string {
	return BuildURL(DemoRun, nil, nil)
}

// DemoGetJobURL returns the URL for reading a demo job status
func DemoGetJobURL(id string) string {
	return BuildURL(DemoGetJob, map[string]string{"id": id}, nil)
}

// Content route helpers

// ListContentURL returns the URL for listing content items
func ListContentURL(queryParams url.Values) string {
	return BuildURL(ListContent, nil, queryParams)
}

// CreateContentURL returns the URL for creating a content item
func CreateContentURL() string {
	return BuildURL(CreateContent, nil, nil)
}

// DeleteContentURL returns the URL for deleting a content item
func DeleteContentURL(id string) string {
	return BuildURL(DeleteContent, map[string]string{"id": id}, nil)
}

// Website route helpers

// ListWebsitesURL returns the URL for listing websites
func ListWebsitesURL() string {
	return BuildURL(ListWebsites, nil, nil)
}

// CreateWebsiteURL returns the URL for registering a website
func CreateWebsiteURL() string {
	return BuildURL(CreateWebsite, nil, nil)
}

// UpdateSettingsURL returns the URL for updating the caller's settings
func UpdateSettingsURL() string {
	return BuildURL(UpdateSettings, nil, nil)
}
