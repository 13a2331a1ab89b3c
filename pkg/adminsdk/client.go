package adminsdk

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/budadmin/pkg/httpx"
	"github.com/aussiebroadwan/budadmin/pkg/slogx"
)

// DefaultTimeout matches the request timeout the web console used.
const DefaultTimeout = 30 * time.Second

// SDKClient is a client for the catalog API. It provides the unauthenticated
// operations (login, refresh, first-time setup) and creates APIClients for
// everything else.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with request ids and request logging on the
// transport.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: httpx.RequestIDTransport(slogx.Transport(nil, nil)),
		},
	}
}

// WithSession returns an APIClient whose requests carry the session's bearer
// token and recover from a 401 through the session's refresh.
func (c *SDKClient) WithSession(auth Authenticator) *APIClient {
	return &APIClient{client: c, auth: auth}
}
