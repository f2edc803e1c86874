// Package transport implements the HTTP collaborator the sync
// layer talks to the directory service through: a thin Execute
// wrapper around net/http plus a bounded retry decorator.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Hu-Wenqiang/session-android-service/application"
	"github.com/google/uuid"
)

const requestTimeout = 30 * time.Second

// A Client issues JSON requests against a directory server.
// It is safe for concurrent use.
type Client struct {
	http   *http.Client
	logger *application.Logger
}

// New builds a transport client logging through the given logger.
func New(logger *application.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

// Execute performs one HTTP round trip: verb against server/path
// with the given query params and optional JSON body. It returns
// the response body for 2xx statuses and an error otherwise.
func (c *Client) Execute(ctx context.Context, verb, server, path string,
	params url.Values, body []byte) ([]byte, error) {
	u := strings.TrimRight(server, "/") + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, verb, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	reqID := uuid.NewString()
	c.logger.Debug("Executing directory request",
		"id", reqID, "verb", verb, "path", path)

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("Directory request failed",
			"id", reqID, "error", err)
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.logger.Debug("Directory request rejected",
			"id", reqID, "status", res.StatusCode)
		return nil, fmt.Errorf("[session] Directory returned status %d", res.StatusCode)
	}
	return resBody, nil
}

// RetryIfNeeded runs op up to maxAttempts times, stopping on the
// first success or on context cancellation. The final failure is
// returned after the budget is exhausted.
func RetryIfNeeded(ctx context.Context, maxAttempts int, op func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}
		if err = op(); err == nil {
			return nil
		}
	}
	return err
}
