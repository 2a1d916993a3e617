package slack

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is the default TTL for the email to member ID cache
	DefaultCacheTTL = 10 * time.Minute
)

// ErrUserNotFound is returned when no workspace member has the email
var ErrUserNotFound = goerr.New("slack user not found")

// cacheEntry holds a cached member ID with expiration
type cacheEntry struct {
	userID    string
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	api      *slack.Client
	cacheTTL time.Duration
	apiURL   string

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for the member ID cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// WithAPIURL overrides the Slack API endpoint, e.g. for a proxy
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.apiURL = url
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}

	var apiOpts []slack.Option
	if c.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(c.apiURL))
	}
	c.api = slack.New(token, apiOpts...)

	return c, nil
}

// LookupUserIDByEmail resolves a member ID with caching. Misses are not cached
// so members who join later are found on the next attempt.
func (c *client) LookupUserIDByEmail(ctx context.Context, email string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && entry.expiresAt.After(now) {
		return entry.userID, nil
	}

	user, err := c.api.GetUserByEmailContext(ctx, key)
	if err != nil {
		if err.Error() == "users_not_found" {
			return "", goerr.Wrap(ErrUserNotFound, "no Slack member for email", goerr.V("email", key))
		}
		return "", goerr.Wrap(err, "failed to look up Slack user", goerr.V("email", key))
	}

	c.mu.Lock()
	c.cache[key] = cacheEntry{
		userID:    user.ID,
		expiresAt: now.Add(c.cacheTTL),
	}
	c.mu.Unlock()

	return user.ID, nil
}

// PostMessage posts a Block Kit message and returns its timestamp
func (c *client) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post Slack message", goerr.V("channel_id", channelID))
	}
	return ts, nil
}
