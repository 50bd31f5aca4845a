package mojang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/config"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/errs"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/logging"
)

// Default API endpoints
const (
	DefaultAPIURL     = "https://api.mojang.com"
	DefaultSessionURL = "https://sessionserver.mojang.com"

	// DefaultStatusTimeout bounds each service status check
	DefaultStatusTimeout = 10 * time.Second

	maxBodyBytes = 1 << 20

	rateLimitMessage = "rate limit exceeded. Please try again later. " +
		"Mojang API allows max 600 requests per 10 minutes"
)

// Options configures a Client
type Options struct {
	APIURL     string
	SessionURL string
	Timeout    time.Duration
	// StatusTimeout bounds each status check; a check that runs out of time
	// reports the service as degraded.
	StatusTimeout time.Duration
	UserAgent     string
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// Client talks to the Mojang APIs
type Client struct {
	http          *http.Client
	apiURL        string
	sessionURL    string
	timeout       time.Duration
	statusTimeout time.Duration
	userAgent     string
	logger        *zap.Logger
}

// NewClient creates a Mojang API client
func NewClient(opts Options) *Client {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.SessionURL == "" {
		opts.SessionURL = DefaultSessionURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultRequestTimeout
	}
	if opts.StatusTimeout <= 0 {
		opts.StatusTimeout = DefaultStatusTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	c := &Client{
		http:          opts.HTTPClient,
		apiURL:        strings.TrimSuffix(opts.APIURL, "/"),
		sessionURL:    strings.TrimSuffix(opts.SessionURL, "/"),
		timeout:       opts.Timeout,
		statusTimeout: opts.StatusTimeout,
		userAgent:     opts.UserAgent,
		logger:        logging.OrNop(opts.Logger),
	}
	c.logger.Debug("Mojang API client initialized", zap.Duration("timeout", c.timeout))
	return c
}

// PlayerUUID looks up a player by username. It returns nil without error
// when the player does not exist.
func (c *Client) PlayerUUID(ctx context.Context, username string) (*PlayerID, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrAPI, err)
	}

	c.logger.Info("Fetching UUID for username", zap.String("username", username))

	var player PlayerID
	found, err := c.getJSON(ctx, c.apiURL+"/users/profiles/minecraft/"+username, &player)
	if err != nil {
		c.logger.Error("Error fetching UUID", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	if !found {
		c.logger.Warn("Player not found", zap.String("username", username))
		return nil, nil
	}

	c.logger.Info("Successfully fetched UUID", zap.String("username", username), zap.String("id", player.ID))
	return &player, nil
}

// PlayerProfile fetches a profile by UUID (dashed or not). It returns nil
// without error when no profile exists.
func (c *Client) PlayerProfile(ctx context.Context, id string) (*Profile, error) {
	clean, err := NormalizeUUID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrAPI, err)
	}

	c.logger.Info("Fetching profile for UUID", zap.String("uuid", clean))

	var profile Profile
	found, err := c.getJSON(ctx, c.sessionURL+"/session/minecraft/profile/"+clean, &profile)
	if err != nil {
		c.logger.Error("Error fetching profile", zap.String("uuid", clean), zap.Error(err))
		return nil, err
	}
	if !found {
		c.logger.Warn("Profile not found for UUID", zap.String("uuid", clean))
		return nil, nil
	}

	c.logger.Info("Successfully fetched profile", zap.String("uuid", clean))
	return &profile, nil
}

// ServiceStatus checks the Mojang services concurrently. A check never fails
// the call: unreachable services are reported as degraded or offline.
func (c *Client) ServiceStatus(ctx context.Context) ([]ServiceStatus, error) {
	services := []struct {
		name string
		url  string
	}{
		{name: "api.mojang.com", url: c.apiURL + "/"},
		{name: "sessionserver.mojang.com", url: c.sessionURL + "/"},
	}

	results := make([]ServiceStatus, len(services))
	g, gctx := errgroup.WithContext(ctx)
	for i, svc := range services {
		g.Go(func() error {
			results[i] = ServiceStatus{Service: svc.name, State: c.checkService(gctx, svc.name, svc.url)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: status check cancelled: %v", errs.ErrNetwork, err)
	}

	c.logger.Info("Service status check complete", zap.Any("status", results))
	return results, nil
}

func (c *Client) checkService(ctx context.Context, name, url string) ServiceState {
	c.logger.Debug("Checking status", zap.String("service", name))

	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return StateOffline
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if errs.Timeout(err) {
			c.logger.Warn("Timeout checking service", zap.String("service", name))
			return StateDegraded
		}
		c.logger.Warn("Error checking service", zap.String("service", name), zap.Error(err))
		return StateOffline
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 500 {
		return StateOnline
	}
	return StateDegraded
}

// getJSON issues a GET and decodes the body into out. found is false for
// 404 and 204 responses.
func (c *Client) getJSON(ctx context.Context, url string, out any) (found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: unexpected error: %v", errs.ErrAPI, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errs.Timeout(err) {
			return false, fmt.Errorf("%w: request timed out after %d seconds", errs.ErrNetwork, int(c.timeout.Seconds()))
		}
		return false, fmt.Errorf("%w: network error: %v", errs.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusNoContent:
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.Error("Rate limit exceeded for Mojang API")
		return false, fmt.Errorf("%w: %s", errs.ErrAPI, rateLimitMessage)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return false, fmt.Errorf("%w: Mojang API error: HTTP %d", errs.ErrAPI, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errs.Timeout(err) {
			return false, fmt.Errorf("%w: request timed out after %d seconds", errs.ErrNetwork, int(c.timeout.Seconds()))
		}
		return false, fmt.Errorf("%w: network error: %v", errs.ErrNetwork, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("%w: unexpected error: invalid response: %v", errs.ErrAPI, err)
	}
	return true, nil
}
