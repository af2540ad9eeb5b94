package resolver

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/aural-fm/aural/internal/models"
	"github.com/aural-fm/aural/internal/shared"
	"github.com/charmbracelet/log"
)

// Dialect identifies the API shape a mirror instance speaks.
type Dialect int

const (
	DialectPiped Dialect = iota
	DialectInvidious
)

func (d Dialect) String() string {
	if d == DialectInvidious {
		return "invidious"
	}
	return "piped"
}

// ParseDialect maps the config string form to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case "piped":
		return DialectPiped, nil
	case "invidious":
		return DialectInvidious, nil
	default:
		return 0, fmt.Errorf("%w: unknown dialect %q", shared.ErrInvalidConfig, s)
	}
}

// Instance describes a single relay mirror.
type Instance struct {
	BaseURL string
	Dialect Dialect
}

// DefaultInstances returns the built-in mirror registry. Both dialects are
// represented so an outage of one relay network degrades rather than breaks
// resolution.
func DefaultInstances() []Instance {
	return []Instance{
		{BaseURL: "https://pipedapi.kavin.rocks", Dialect: DialectPiped},
		{BaseURL: "https://api.piped.projectsegfau.lt", Dialect: DialectPiped},
		{BaseURL: "https://pipedapi.adminforge.de", Dialect: DialectPiped},
		{BaseURL: "https://api.piped.privacydev.net", Dialect: DialectPiped},
		{BaseURL: "https://inv.nadeko.net", Dialect: DialectInvidious},
		{BaseURL: "https://invidious.nerdvpn.de", Dialect: DialectInvidious},
		{BaseURL: "https://yewtu.be", Dialect: DialectInvidious},
	}
}

const defaultTimeout = 3500 * time.Millisecond

// Resolver finds a playable stream URL for a track that has none, by sweeping
// a randomized mirror registry sequentially until one instance yields a URL.
type Resolver struct {
	instances []Instance
	client    *http.Client
	timeout   time.Duration
	logger    *log.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Opts contains configuration options for creating a Resolver.
type Opts struct {
	Instances  []Instance
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *log.Logger
	Seed       int64 // non-zero for a deterministic sweep order (tests)
}

// New creates a Resolver with the provided options, falling back to the
// built-in registry, a shared HTTP client, and the default per-request
// timeout.
func New(opts Opts) *Resolver {
	if len(opts.Instances) == 0 {
		opts.Instances = DefaultInstances()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.New(nil)
	}

	src := rand.NewSource(time.Now().UnixNano())
	if opts.Seed != 0 {
		src = rand.NewSource(opts.Seed)
	}

	return &Resolver{
		instances: opts.Instances,
		client:    opts.HTTPClient,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
		rng:       rand.New(src),
	}
}

// Resolve maps a track to a working stream URL, or reports
// [shared.ErrNoSource] when every mirror has been tried without success.
//
// Transport errors, timeouts, and malformed responses on an individual mirror
// are swallowed and the sweep moves on; exhaustion is the only failure
// surfaced, and it is an expected outcome rather than a crash.
func (r *Resolver) Resolve(ctx context.Context, track models.Track) (string, error) {
	query := track.SearchQuery()

	for _, instance := range r.shuffled() {
		url, err := r.resolveInstance(ctx, instance, query)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			r.logger.Debug("mirror failed, trying next",
				"instance", instance.BaseURL, "dialect", instance.Dialect.String(), "err", err)
			continue
		}
		if url != "" {
			r.logger.Info("resolved stream", "instance", instance.BaseURL, "track", track.ID)
			return url, nil
		}
	}

	return "", fmt.Errorf("%w: %s — %s", shared.ErrNoSource, track.Title, track.Artist)
}

// shuffled returns a fresh random permutation of the registry, spreading load
// across mirrors instead of hammering the first-listed instance.
func (r *Resolver) shuffled() []Instance {
	order := make([]Instance, len(r.instances))
	copy(order, r.instances)

	r.mu.Lock()
	r.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	r.mu.Unlock()

	return order
}

func (r *Resolver) resolveInstance(ctx context.Context, instance Instance, query string) (string, error) {
	switch instance.Dialect {
	case DialectInvidious:
		return r.resolveInvidious(ctx, instance.BaseURL, query)
	default:
		return r.resolvePiped(ctx, instance.BaseURL, query)
	}
}

// getJSON performs a GET bounded by the per-request timeout and decodes a
// JSON response into result.
func (r *Resolver) getJSON(ctx context.Context, url string, result any) error {
	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return decodeJSON(resp.Body, result)
}
