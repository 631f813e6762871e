package api

import "context"

// PathResolver provides methods for resolving API endpoint paths.
// It abstracts URL construction so resource helpers can build paths
// without knowing the base URL.
type PathResolver interface {
	// apiPath returns the full URL for an /api endpoint.
	// Example: apiPath("/threads") -> "http://localhost:8000/api/threads"
	apiPath(path string) string
}

// HTTPExecutor provides methods for executing HTTP requests.
// It abstracts the HTTP client logic: JSON serialization, error mapping,
// and response parsing. Mocking this interface keeps resource helper tests
// off the network.
type HTTPExecutor interface {
	// do executes an HTTP request with JSON body and response parsing.
	// The body is marshaled to JSON if non-nil, and the response is
	// unmarshaled into result if non-nil.
	do(ctx context.Context, method, url string, body any, result any) error

	// doRaw executes an HTTP request and returns the raw response bytes.
	doRaw(ctx context.Context, method, url string, body any) ([]byte, error)
}

// Requester combines PathResolver and HTTPExecutor to provide the complete
// request surface used by resource helpers.
type Requester interface {
	PathResolver
	HTTPExecutor
}
