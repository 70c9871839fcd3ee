package gateway

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

	"golang.org/x/text/language"

	"github.com/nerrad567/devicedash/internal/i18n"
	"github.com/nerrad567/devicedash/internal/notify"
)

const contentTypeJSON = "application/json"

// Logger is the subset of logging.Logger the client uses.
type Logger interface {
	Error(msg string, args ...any)
}

// Response is a successful backend response, unmodified.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

// Client issues backend calls. It holds only configuration and is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	notifier   notify.Notifier
	logger     Logger
	lang       language.Tag
	duration   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithNotifier sets where failure messages are shown.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithLogger sets the logger for "API Error" records.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithLanguage selects the language of the fallback failure message.
func WithLanguage(tag language.Tag) Option {
	return func(c *Client) { c.lang = tag }
}

// WithNotifyDuration sets how long failure notifications stay visible.
func WithNotifyDuration(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.duration = d
		}
	}
}

// New creates a client for the backend at baseURL.
//
// Parameters:
//   - baseURL: Absolute http(s) URL, e.g. "http://localhost:8080"
//   - opts: Notifier, logger, language, and transport options
//
// Returns:
//   - *Client: Ready for use
//   - error: ErrInvalidBaseURL if baseURL is not absolute
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL: strings.TrimSuffix(u.String(), "/"),
		// No client timeout: calls end when the backend answers or ctx ends.
		httpClient: &http.Client{},
		notifier:   notify.Noop{},
		lang:       i18n.Chinese,
		duration:   notify.DefaultDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend address every call is issued against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListDevices fetches every device. GET /devices/
func (c *Client) ListDevices(ctx context.Context) (*Response, error) {
	return c.do(ctx, "list devices", http.MethodGet, "/devices/", nil, nil)
}

// RegisterDevice creates a device. POST /devices/register
//
// device is sent verbatim when it is []byte or json.RawMessage and
// JSON-encoded otherwise.
func (c *Client) RegisterDevice(ctx context.Context, device any) (*Response, error) {
	return c.do(ctx, "register device", http.MethodPost, "/devices/register", nil, device)
}

// GetDevice fetches one device. GET /devices/{id}
func (c *Client) GetDevice(ctx context.Context, id string) (*Response, error) {
	return c.do(ctx, "get device", http.MethodGet, devicePath(id), nil, nil)
}

// UpdateDevice replaces a device. PUT /devices/{id}
func (c *Client) UpdateDevice(ctx context.Context, id string, device any) (*Response, error) {
	return c.do(ctx, "update device", http.MethodPut, devicePath(id), nil, device)
}

// DeleteDevice removes a device. DELETE /devices/{id}
func (c *Client) DeleteDevice(ctx context.Context, id string) (*Response, error) {
	return c.do(ctx, "delete device", http.MethodDelete, devicePath(id), nil, nil)
}

// SendCommand sends {"command": cmd} to a device. POST /devices/{uid}/command
func (c *Client) SendCommand(ctx context.Context, uid string, cmd Command) (*Response, error) {
	body := map[string]Command{"command": cmd}
	return c.do(ctx, "send command", http.MethodPost, devicePath(uid)+"/command", nil, body)
}

// PublishMQTTMessage asks the backend to publish message on topic.
// POST /mqtt/publish?topic=...&message=... with no body.
func (c *Client) PublishMQTTMessage(ctx context.Context, topic, message string) (*Response, error) {
	query := url.Values{}
	query.Set("topic", topic)
	query.Set("message", message)
	return c.do(ctx, "publish mqtt message", http.MethodPost, "/mqtt/publish", query, nil)
}

func devicePath(id string) string {
	return "/devices/" + url.PathEscape(id)
}

// do performs one request. Every failure goes through fail exactly once.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (*Response, error) {
	reqErr := &RequestError{Op: op, Method: method, Path: path}

	reader, err := encodeBody(body)
	if err != nil {
		reqErr.Err = err
		return nil, c.fail(ctx, reqErr)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		reqErr.Err = err
		return nil, c.fail(ctx, reqErr)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reqErr.Err = err
		return nil, c.fail(ctx, reqErr)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		reqErr.StatusCode = resp.StatusCode
		reqErr.Err = fmt.Errorf("reading response body: %w", err)
		return nil, c.fail(ctx, reqErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr.StatusCode = resp.StatusCode
		reqErr.Body = data
		reqErr.Err = fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
		return nil, c.fail(ctx, reqErr)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// fail is the failure interceptor: resolve, log, notify once, return.
func (c *Client) fail(ctx context.Context, reqErr *RequestError) error {
	transport := ""
	if reqErr.Err != nil {
		transport = reqErr.Err.Error()
	}
	reqErr.Message, reqErr.Source = ResolveMessage(reqErr.Body, transport,
		i18n.T(c.lang, i18n.KeyRequestFailed))

	if c.logger != nil {
		c.logger.Error("API Error",
			"op", reqErr.Op,
			"method", reqErr.Method,
			"path", reqErr.Path,
			"status", reqErr.StatusCode,
			"message", reqErr.Message,
			"source", reqErr.Source.String(),
			"error", reqErr.Err,
		)
	}

	c.notifier.Notify(ctx, notify.Notification{
		Kind:     notify.KindError,
		Message:  reqErr.Message,
		Duration: c.duration,
	})

	return reqErr
}
