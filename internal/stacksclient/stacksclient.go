// Package stacksclient submits thread dumps to a remote stacksd service.
package stacksclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"

	"github.com/getsentry/parallelstacks/internal/httputil"
	"github.com/getsentry/parallelstacks/internal/render"
)

// ErrRejected is returned when the service refuses a dump it can't parse.
var ErrRejected = errors.New("dump rejected")

type (
	Client struct {
		http *httpclient.Client
		url  string
	}

	Result struct {
		SnapshotID string
		Body       []byte
	}
)

func New(baseURL string, timeout time.Duration, retries int) *Client {
	backoff := heimdall.NewConstantBackoff(200*time.Millisecond, 100*time.Millisecond)
	return &Client{
		http: httpclient.NewClient(
			httpclient.WithHTTPTimeout(timeout),
			httpclient.WithRetryCount(retries),
			httpclient.WithRetrier(heimdall.NewRetrier(backoff)),
		),
		url: strings.TrimSuffix(baseURL, "/"),
	}
}

// Submit posts a gdb dump and returns the service's rendering of it.
func (c *Client) Submit(ctx context.Context, dump io.Reader, f render.Format, maxDepth int) (Result, error) {
	q := url.Values{}
	q.Set("format", string(f))
	if maxDepth > 0 {
		q.Set("max_depth", strconv.Itoa(maxDepth))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/stacks?"+q.Encode(), dump)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("posting dump: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return Result{}, fmt.Errorf("%w: %s", ErrRejected, strings.TrimSpace(string(body)))
	case resp.StatusCode != http.StatusOK:
		return Result{}, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	return Result{
		SnapshotID: resp.Header.Get(httputil.SnapshotIDHeader),
		Body:       body,
	}, nil
}
