package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

// PlatformError is a response whose errcode is not the success code.
type PlatformError struct {
	Code int
	Msg  string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s %d: %s", config.ErrPlatformCode, e.Code, e.Msg)
}

type apiResult struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (r apiResult) err() error {
	if r.ErrCode == config.ErrCodeSuccess {
		return nil
	}
	return &PlatformError{Code: r.ErrCode, Msg: r.ErrMsg}
}

type tokenResponse struct {
	apiResult
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// tokenCache holds one access token. The mutex is held across the exchange so
// concurrent callers wait for a single refresh.
type tokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func (c *tokenCache) get(ctx context.Context, now time.Time, exchange func(context.Context) (tokenResponse, error)) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && now.Before(c.expiresAt) {
		return c.token, false, nil
	}

	resp, err := exchange(ctx)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", config.ErrTokenExchange, err)
	}
	if resp.AccessToken == "" {
		if err := resp.err(); err != nil {
			return "", false, fmt.Errorf("%s: %w", config.ErrTokenExchange, err)
		}
		return "", false, fmt.Errorf("%s: empty token", config.ErrTokenExchange)
	}

	c.token = resp.AccessToken
	c.expiresAt = now.Add(time.Duration(resp.ExpiresIn)*time.Second - config.TokenSafetyMargin)
	return c.token, true, nil
}

func (c *tokenCache) reset() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

// call performs one platform request and decodes the JSON answer into out.
// A nil body issues a GET.
func (d *Dispatcher) call(ctx context.Context, base, path string, query url.Values, body, out any) error {
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	method := http.MethodGet
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", config.ErrEncodeRequest, err)
		}
		method = http.MethodPost
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrPlatformCall, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if body != nil {
		req.Header.Set(config.HeaderContentType, config.MimeJSON)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrPlatformCall, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: HTTP %d", config.ErrPlatformCall, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, config.MaxHTTPResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("%s: %w", config.ErrDecodeResponse, err)
	}
	return nil
}
