// Package types provides the request and response types shared by the API
// handlers, the services and the API client
package types

// Slug is a type for the slug field in the response
// It is mainly used for the client to understand the type of the response
type Slug string

// nolint:gochecknoglobals
const (
	SuccessSlug      Slug = "success"
	ErrorSlug        Slug = "error"
	InvalidInputSlug Slug = "invalid-input"
	ServerErrorSlug  Slug = "server-error"
	NotFoundSlug     Slug = "not-found"
	UnauthorizedSlug Slug = "unauthorized"
	ForbiddenSlug    Slug = "forbidden"
	ConflictSlug     Slug = "conflict"
)

// SlugResponse is the response type for the API
type SlugResponse struct {
	Slug  Slug        `json:"slug"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// Success returns a SlugResponse with the SuccessSlug and the data
func Success(data interface{}) SlugResponse {
	return SlugResponse{
		Slug: SuccessSlug,
		Data: data,
	}
}

// ErrInvalidInput returns a SlugResponse with the InvalidInputSlug and the error message
func ErrInvalidInput(msg string) SlugResponse {
	return SlugResponse{
		Slug:  InvalidInputSlug,
		Error: msg,
	}
}

// ErrServer returns a SlugResponse with the ServerErrorSlug and the error message
func ErrServer(msg string) SlugResponse {
	return SlugResponse{
		Slug:  ServerErrorSlug,
		Error: msg,
	}
}

// ErrNotFound returns a SlugResponse with the NotFoundSlug and the error message
func ErrNotFound(msg string) SlugResponse {
	return SlugResponse{
		Slug:  NotFoundSlug,
		Error: msg,
	}
}

// ErrUnauthorized returns a SlugResponse with the UnauthorizedSlug and the error message
func ErrUnauthorized(msg string) SlugResponse {
	return SlugResponse{
		Slug:  UnauthorizedSlug,
		Error: msg,
	}
}

// ErrForbidden returns a SlugResponse with the ForbiddenSlug and the error message
func ErrForbidden(msg string) SlugResponse {
	return SlugResponse{
		Slug:  ForbiddenSlug,
		Error: msg,
	}
}

// ErrConflict returns a SlugResponse with the ConflictSlug and the error message
func ErrConflict(msg string) SlugResponse {
	return SlugResponse{
		Slug:  ConflictSlug,
		Error: msg,
	}
}
