package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"ytfinder/internal/domain"
)

// maxBodyBytes bounds how much of an upstream response is read. The channel
// index is small; anything past this is a misbehaving upstream.
const maxBodyBytes = 4 << 20

// Client fetches the channel video index from the configured upstream
// endpoint and normalizes it into the canonical record shape. It holds no
// mutable state; cache ownership is the caller's job.
type Client struct {
	baseURL    string
	videosPath string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

type Options struct {
	// BaseURL is required; a missing value is a startup-fatal config error.
	BaseURL    string
	VideosPath string
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, domain.E(domain.CodeConfig, "upstream.New", "upstream base URL is required", nil)
	}
	path := opts.VideosPath
	if path == "" {
		path = domain.DefaultVideosPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = domain.DefaultUserAgent
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    base,
		videosPath: path,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     logger.Named("upstream"),
	}, nil
}

// FetchIndex issues one GET against the index endpoint. The timeout is
// enforced through context cancellation so the underlying connection is
// actually torn down on expiry, not merely abandoned.
func (c *Client) FetchIndex(ctx context.Context, timeout time.Duration) (domain.Index, error) {
	const op = "upstream.FetchIndex"

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	url := c.baseURL + c.videosPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Index{}, domain.E(domain.CodeInternal, op, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.Index{}, domain.E(domain.CodeUpstreamTimeout, op, "index fetch timed out", err)
		}
		return domain.Index{}, domain.E(domain.CodeUpstreamHTTP, op, "index fetch failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.Index{}, domain.E(domain.CodeUpstreamTimeout, op, "index body read timed out", err)
		}
		return domain.Index{}, domain.E(domain.CodeUpstreamHTTP, op, "index body read failed", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := domain.E(domain.CodeUpstreamHTTP, op, "index returned "+resp.Status, nil)
		e.StatusCode = resp.StatusCode
		e.Body = truncate(string(body), domain.ErrorBodyLimit)
		return domain.Index{}, e
	}

	index, err := NormalizeIndex(body)
	if err != nil {
		return domain.Index{}, domain.Wrap(domain.CodeUpstreamParse, op, err)
	}

	c.logger.Debug("index fetched",
		zap.Int("videos", len(index.Videos)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return index, nil
}

// truncate cuts s to at most limit bytes without splitting a multibyte
// UTF-8 sequence.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
