package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dogamak/wasmpub/pkg/domain/interfaces"
	"github.com/dogamak/wasmpub/pkg/domain/model"
	"github.com/dogamak/wasmpub/pkg/domain/types"
)

type client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithToken sets the bearer token used for authenticated endpoints
func WithToken(token string) Option {
	return func(c *client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a read-only npm registry client for the given base URL.
func NewClient(baseURL string, opts ...Option) interfaces.RegistryClient {
	c := &client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetPackument fetches the registry metadata document for a package.
func (c *client) GetPackument(ctx context.Context, name string) (*model.Packument, error) {
	// Scoped names keep their literal "@" but the scope separator must be
	// escaped, matching how the npm CLI addresses the registry.
	escaped := strings.ReplaceAll(name, "/", "%2F")

	body, err := c.get(ctx, "/"+escaped, false)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch packument", goerr.V("package", name))
	}

	var packument model.Packument
	if err := json.Unmarshal(body, &packument); err != nil {
		return nil, goerr.Wrap(err, "failed to parse packument",
			goerr.V("package", name),
			goerr.T(types.ErrTagRegistry),
		)
	}

	return &packument, nil
}

// Ping checks basic registry reachability.
func (c *client) Ping(ctx context.Context) error {
	if _, err := c.get(ctx, "/-/ping", false); err != nil {
		return goerr.Wrap(err, "registry ping failed", goerr.V("registry", c.baseURL))
	}
	return nil
}

// Whoami resolves the username behind the configured token.
func (c *client) Whoami(ctx context.Context) (string, error) {
	if c.token == "" {
		return "", goerr.New("no registry token configured", goerr.T(types.ErrTagRegistry))
	}

	body, err := c.get(ctx, "/-/whoami", true)
	if err != nil {
		return "", goerr.Wrap(err, "whoami request failed", goerr.V("registry", c.baseURL))
	}

	var response struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", goerr.Wrap(err, "failed to parse whoami response", goerr.T(types.ErrTagRegistry))
	}

	if response.Username == "" {
		return "", goerr.New("registry did not resolve token to a username", goerr.T(types.ErrTagRegistry))
	}

	return response.Username, nil
}

// get performs a GET request against the registry and returns the body of a
// 200 response. A 404 maps to ErrPackageNotFound, 401/403 to a credential
// error, anything else non-200 to a generic registry error.
func (c *client) get(ctx context.Context, path string, authenticated bool) ([]byte, error) {
	endpoint := c.baseURL + path
	if _, err := url.Parse(endpoint); err != nil {
		return nil, goerr.Wrap(err, "invalid registry URL", goerr.V("url", endpoint))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create registry request", goerr.V("url", endpoint))
	}
	req.Header.Set("Accept", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "registry request failed",
			goerr.V("url", endpoint),
			goerr.T(types.ErrTagRegistry),
		)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, goerr.Wrap(types.ErrPackageNotFound, "registry returned 404", goerr.V("url", endpoint))
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, goerr.New("registry rejected the credential",
			goerr.V("url", endpoint),
			goerr.V("status", resp.StatusCode),
			goerr.T(types.ErrTagRegistry),
		)
	default:
		return nil, goerr.New("unexpected registry response",
			goerr.V("url", endpoint),
			goerr.V("status", resp.StatusCode),
			goerr.T(types.ErrTagRegistry),
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read registry response", goerr.V("url", endpoint))
	}

	return body, nil
}
