package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"

	"chatseal/internal/domain"
	"chatseal/internal/logging"
)

// RetryPolicy shapes the client's exponential backoff.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy is used when a ClientConfig leaves Retry zero.
var DefaultRetryPolicy = RetryPolicy{
	InitialInterval: 250 * time.Millisecond,
	MaxInterval:     2 * time.Second,
	MaxElapsedTime:  10 * time.Second,
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryPolicy
	Log     logging.Logger

	// HTTP overrides the underlying client; Timeout is ignored when set.
	HTTP *http.Client
}

// Client is the HTTP implementation of domain.RelayClient.
type Client struct {
	base  string
	http  *http.Client
	retry RetryPolicy
	log   logging.Logger
}

var _ domain.RelayClient = (*Client)(nil)

// NewClient returns a relay client for cfg.BaseURL.
func NewClient(cfg ClientConfig) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid relay url %q", cfg.BaseURL)
	}
	hc := cfg.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	retry := cfg.Retry
	if retry == (RetryPolicy{}) {
		retry = DefaultRetryPolicy
	}
	log := cfg.Log
	if log == nil {
		log = logging.NewNop()
	}
	return &Client{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		http:  hc,
		retry: retry,
		log:   log,
	}, nil
}

// StatusError is a non-2xx response from the relay.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay %s %s: %s", e.Method, e.URL, e.Status)
}

// ErrMalformedResponse is returned when a 2xx response body cannot be decoded.
var ErrMalformedResponse = errors.New("malformed relay response")

// IsNotFound reports whether err is a 404 from the relay.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// LookupPublicKey fetches the user's published key. A 404 or a user without a
// key is reported as found=false.
func (c *Client) LookupPublicKey(ctx context.Context, user domain.UserID) (domain.PublicKeySnapshot, bool, error) {
	var p domain.UserProfile
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(string(user)), nil, &p)
	if IsNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if p.PublicKey == nil || *p.PublicKey == "" {
		return "", false, nil
	}
	return *p.PublicKey, true, nil
}

func (c *Client) PublishPublicKey(ctx context.Context, user domain.UserID, key domain.PublicKeySnapshot) error {
	return c.do(ctx, http.MethodPost, "/users/public-key",
		domain.PublishKeyRequest{UserID: user, PublicKey: key}, nil)
}

func (c *Client) SendMessage(ctx context.Context, rec domain.MessageRecord) (domain.MessageRecord, error) {
	var out domain.MessageRecord
	if err := c.do(ctx, http.MethodPost, "/messages", rec, &out); err != nil {
		return domain.MessageRecord{}, err
	}
	return out, nil
}

func (c *Client) FetchMessages(
	ctx context.Context,
	conversation domain.ConversationID,
	limit int,
) ([]domain.MessageRecord, error) {
	q := url.Values{"conversationId": {string(conversation)}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []domain.MessageRecord
	if err := c.do(ctx, http.MethodGet, "/messages?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends one JSON request, retrying transport errors and 5xx responses.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = b
	}
	u := c.base + path

	attempt := 0
	op := func() error {
		attempt++
		err := c.once(ctx, method, u, body, out)
		if err == nil {
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && se.Code < 500 {
			return backoff.Permanent(err)
		}
		if errors.Is(err, ErrMalformedResponse) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		c.log.Debug(ctx, "relay request failed; retrying", "method", method, "url", u, "attempt", attempt, "err", err)
		return err
	}
	return backoff.Retry(op, backoff.WithContext(c.newBackOff(), ctx))
}

func (c *Client) once(ctx context.Context, method, u string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: method, URL: u, Code: resp.StatusCode, Status: resp.Status}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w from %s: %v", ErrMalformedResponse, u, err)
	}
	return nil
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.InitialInterval
	b.MaxInterval = c.retry.MaxInterval
	b.MaxElapsedTime = c.retry.MaxElapsedTime
	b.Reset()
	return b
}
