// Package rebrickable is a client for the structured Rebrickable API. Calls
// are spaced by a minimum interval because the API rate-limits to roughly
// one request per second.
package rebrickable

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mesh-intelligence/partlabels/internal/logger"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// EnvAPIKey is the environment variable the CLI reads the API key from.
const EnvAPIKey = "REBRICKABLE_API_KEY"

// PartsBatchSize is the largest number of parts requested in one call. It
// keeps request URLs within common length limits.
const PartsBatchSize = 75

const (
	connectTimeout = 20 * time.Second
	requestTimeout = 2 * time.Minute
)

// Options configures a Client.
type Options struct {
	BaseURL     string
	APIKey      string
	MinInterval time.Duration
	// HTTPClient performs the calls. Redirects are never followed, whatever
	// the client's own policy.
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Client calls the API. It is safe for concurrent use; concurrent calls queue
// on the rate limiter.
type Client struct {
	base    *url.URL
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// New returns a Client. It returns types.ErrMissingAPIKey when no key is set.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("creating api client: %w", types.ErrMissingAPIKey)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = types.DefaultAPIBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	var hc http.Client
	if opts.HTTPClient != nil {
		hc = *opts.HTTPClient
	} else {
		hc = http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				Proxy:       http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		}
	}
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &Client{
		base:    base,
		apiKey:  opts.APIKey,
		http:    &hc,
		limiter: rate.NewLimiter(limit, 1),
		log:     opts.Logger.With("component", "rebrickable"),
	}, nil
}

// FetchPart returns one part.
func (c *Client) FetchPart(ctx context.Context, partID string) (*Part, error) {
	var p Part
	if err := c.get(ctx, "parts/"+url.PathEscape(partID)+"/", nil, &p); err != nil {
		return nil, fmt.Errorf("fetching part %s: %w", partID, err)
	}
	return &p, nil
}

// FetchParts returns the parts for ids, requested in batches of
// PartsBatchSize. Parts the API does not know are absent from the result; a
// count mismatch is logged.
func (c *Client) FetchParts(ctx context.Context, ids []string) ([]Part, error) {
	out := make([]Part, 0, len(ids))
	for start := 0; start < len(ids); start += PartsBatchSize {
		end := min(start+PartsBatchSize, len(ids))
		batch := ids[start:end]

		q := url.Values{}
		q.Set("part_nums", strings.Join(batch, ","))
		q.Set("page_size", fmt.Sprint(PartsBatchSize))
		var pg page[Part]
		if err := c.get(ctx, "parts/", q, &pg); err != nil {
			return nil, fmt.Errorf("fetching parts batch at %d: %w", start, err)
		}
		if pg.Count != len(batch) {
			c.log.Warn("parts batch count mismatch", "requested", len(batch), "returned", pg.Count)
		} else {
			c.log.Info("retrieved parts batch", "count", len(batch))
		}
		out = append(out, pg.Results...)
	}
	return out, nil
}

// FetchColour returns one colour.
func (c *Client) FetchColour(ctx context.Context, colourID string) (*Colour, error) {
	var col Colour
	if err := c.get(ctx, "colors/"+url.PathEscape(colourID)+"/", nil, &col); err != nil {
		return nil, fmt.Errorf("fetching colour %s: %w", colourID, err)
	}
	return &col, nil
}

// FetchElement returns one element.
func (c *Client) FetchElement(ctx context.Context, elementID string) (*Element, error) {
	var e Element
	if err := c.get(ctx, "elements/"+url.PathEscape(elementID)+"/", nil, &e); err != nil {
		return nil, fmt.Errorf("fetching element %s: %w", elementID, err)
	}
	return &e, nil
}

// get performs one rate-limited GET and decodes the JSON body into out.
// A status other than 200 wraps types.ErrNotFound.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	u, err := c.base.Parse(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "key "+c.apiKey)

	c.log.Debug("api call", "url", u.String())
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w: %w", u.Redacted(), types.ErrTransfer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calling %s: status %d: %w", u.Redacted(), resp.StatusCode, types.ErrNotFound)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w: %w", u.Redacted(), types.ErrParse, err)
	}
	return nil
}
