package barkeep

import (
	"net/http"
)

// HTTPClient is the subset of *http.Client used by the HTTP-based completion
// providers and the Slack notifier.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
