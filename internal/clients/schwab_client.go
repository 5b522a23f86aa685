package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vadiminshakov/buylow/internal/domain"
	"github.com/vadiminshakov/buylow/pkg/retrier"
)

const (
	// DefaultSchwabBaseURL production API root.
	DefaultSchwabBaseURL = "https://api.schwabapi.com"

	tokenPath          = "/v1/oauth/token"
	accountNumbersPath = "/trader/v1/accounts/accountNumbers"

	defaultTimeout = 30 * time.Second
	// Schwab allows 120 requests per minute per app.
	defaultRequestsPerSecond = 2
	defaultBurst             = 4
)

// SchwabCredentials app registration and refresh token used to obtain an access token.
type SchwabCredentials struct {
	AppKey       string
	AppSecret    string
	RefreshToken string
}

// Validate checks that every credential is set.
func (c SchwabCredentials) Validate() error {
	var missing []string
	if c.AppKey == "" {
		missing = append(missing, "app key")
	}
	if c.AppSecret == "" {
		missing = append(missing, "app secret")
	}
	if c.RefreshToken == "" {
		missing = append(missing, "refresh token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("schwab credentials missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// StatusError non-2xx response from the Schwab API.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("schwab %s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// SchwabClient performs authenticated calls against the Schwab trader and market data APIs.
// It holds no session state; every call receives the session explicitly.
type SchwabClient struct {
	baseURL    string
	creds      SchwabCredentials
	httpClient *http.Client
	limiter    *rate.Limiter
	retrier    *retrier.Retrier
	logger     *zap.Logger
}

// SchwabOption configures a SchwabClient.
type SchwabOption func(*SchwabClient)

// WithBaseURL overrides the API root, used by tests.
func WithBaseURL(baseURL string) SchwabOption {
	return func(c *SchwabClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) SchwabOption {
	return func(c *SchwabClient) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the request pacing.
func WithRateLimit(perSecond float64, burst int) SchwabOption {
	return func(c *SchwabClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRetrier sets the backoff used for read requests.
func WithRetrier(r *retrier.Retrier) SchwabOption {
	return func(c *SchwabClient) {
		c.retrier = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) SchwabOption {
	return func(c *SchwabClient) {
		c.logger = l
	}
}

// NewSchwabClient creates a client for the given credentials.
func NewSchwabClient(creds SchwabCredentials, opts ...SchwabOption) *SchwabClient {
	c := &SchwabClient{
		baseURL:    DefaultSchwabBaseURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(defaultRequestsPerSecond, defaultBurst),
		retrier:    retrier.New(retrier.WithMaxRetries(3), retrier.WithInitialInterval(500*time.Millisecond)),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type accountNumber struct {
	AccountNumber string `json:"accountNumber"`
	HashValue     string `json:"hashValue"`
}

// Authenticate exchanges the refresh token for an access token and resolves the
// first linked account. The returned session is valid for the rest of the run.
func (c *SchwabClient) Authenticate(ctx context.Context) (domain.Session, error) {
	if err := c.creds.Validate(); err != nil {
		return domain.Session{}, err
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return domain.Session{}, errors.Wrap(err, "failed to get access token")
	}

	session := domain.Session{AccessToken: token}

	var accounts []accountNumber
	if err := c.GetJSON(ctx, session, accountNumbersPath, nil, &accounts); err != nil {
		return domain.Session{}, errors.Wrap(err, "failed to get account number")
	}
	if len(accounts) == 0 || accounts[0].HashValue == "" {
		return domain.Session{}, errors.New("no linked accounts returned")
	}
	session.AccountHash = accounts[0].HashValue

	c.logger.Info("schwab session established", zap.Int("accounts", len(accounts)))

	return session, nil
}

func (c *SchwabClient) accessToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.creds.RefreshToken)

	resp, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) (tokenResponse, error) {
		var resp tokenResponse
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
		if err != nil {
			return resp, retrier.Permanent(errors.Wrap(err, "failed to create HTTP request"))
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(c.creds.AppKey, c.creds.AppSecret)

		body, _, err := c.do(req)
		if err != nil {
			return resp, err
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return resp, retrier.Permanent(errors.Wrap(err, "failed to unmarshal token response"))
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New("token response has no access_token")
	}

	return resp.AccessToken, nil
}

// GetJSON performs an authenticated GET and decodes the JSON response into out.
// Transient failures are retried; 4xx responses are not.
func (c *SchwabClient) GetJSON(ctx context.Context, session domain.Session, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	return c.retrier.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return retrier.Permanent(errors.Wrap(err, "failed to create HTTP request"))
		}
		c.authorize(req, session)

		body, _, err := c.do(req)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return retrier.Permanent(errors.Wrapf(err, "failed to unmarshal %s response", path))
		}
		return nil
	})
}

// PostJSON performs an authenticated POST with a JSON body. It is never retried,
// a duplicate POST could place a second order.
func (c *SchwabClient) PostJSON(ctx context.Context, session domain.Session, path string, payload any) (http.Header, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create HTTP request")
	}
	c.authorize(req, session)
	req.Header.Set("Content-Type", "application/json")

	body, header, err := c.do(req)
	if err != nil {
		return nil, nil, err
	}
	return header, body, nil
}

func (c *SchwabClient) authorize(req *http.Request, session domain.Session) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.AccessToken))
	req.Header.Set("Accept", "application/json")
}

// do sends req after waiting for the limiter. Client errors are marked permanent.
func (c *SchwabClient) do(req *http.Request) ([]byte, http.Header, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, nil, retrier.Permanent(errors.Wrap(err, "rate limiter wait"))
	}

	c.logger.Debug("schwab request", zap.String("method", req.Method), zap.String("path", req.URL.Path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, nil, retrier.Permanent(statusErr)
		}
		return nil, nil, statusErr
	}

	return body, resp.Header, nil
}
