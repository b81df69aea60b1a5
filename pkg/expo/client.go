// Package expo sends push notifications through the Expo push service.
package expo

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const (
	DefaultPushURL   = "https://exp.host/--/api/v2/push/send"
	DefaultChunkSize = 100

	TicketStatusOk    = "ok"
	TicketStatusError = "error"
)

var pushTokenPattern = regexp.MustCompile(`^(ExponentPushToken|ExpoPushToken)\[.+\]$`)

// IsPushToken reports whether token has the ExponentPushToken[...] shape.
func IsPushToken(token string) bool {
	return pushTokenPattern.MatchString(token)
}

type Message struct {
	To    string                 `json:"to"`
	Title string                 `json:"title,omitempty"`
	Body  string                 `json:"body,omitempty"`
	Sound string                 `json:"sound,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

type Ticket struct {
	Status  string                 `json:"status"`
	Id      string                 `json:"id,omitempty"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (t Ticket) Ok() bool {
	return t.Status == TicketStatusOk
}

type pushResponse struct {
	Data   []Ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

type Client struct {
	httpClient     *resty.Client
	url            string
	chunkSize      int
	maxConcurrency int
}

type Option func(*Client)

func WithChunkSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

func WithMaxConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

func WithAccessToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.httpClient.SetAuthToken(token)
		}
	}
}

func NewClient(url string, timeout time.Duration, opts ...Option) *Client {
	if url == "" {
		url = DefaultPushURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		httpClient: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json").
			SetHeader("Content-Type", "application/json"),
		url:            url,
		chunkSize:      DefaultChunkSize,
		maxConcurrency: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send delivers messages in chunks and returns one ticket per message, in order.
// A failed chunk marks each of its messages with an error ticket; other chunks
// are unaffected.
func (c *Client) Send(ctx context.Context, messages []Message) []Ticket {
	tickets := make([]Ticket, len(messages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)

	for start := 0; start < len(messages); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(messages) {
			end = len(messages)
		}
		start, chunk := start, messages[start:end]

		g.Go(func() error {
			result, err := c.sendChunk(gctx, chunk)
			if err != nil {
				for i := range chunk {
					tickets[start+i] = Ticket{Status: TicketStatusError, Message: err.Error()}
				}
				return nil
			}
			copy(tickets[start:start+len(chunk)], result)
			return nil
		})
	}

	_ = g.Wait()
	return tickets
}

func (c *Client) sendChunk(ctx context.Context, chunk []Message) ([]Ticket, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(chunk).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("expo push request failed: %w", err)
	}

	body := resp.Bytes()
	var parsed pushResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode() >= 300 {
			return nil, fmt.Errorf("expo push returned HTTP %d: %s", resp.StatusCode(), strings.TrimSpace(string(body)))
		}
		return nil, fmt.Errorf("decode expo response: %w", err)
	}

	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("expo push rejected request: %s", parsed.Errors[0].Message)
	}
	if resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("expo push returned HTTP %d", resp.StatusCode())
	}

	tickets := make([]Ticket, len(chunk))
	for i := range chunk {
		if i < len(parsed.Data) {
			tickets[i] = parsed.Data[i]
			continue
		}
		tickets[i] = Ticket{Status: TicketStatusError, Message: "missing ticket in expo response"}
	}
	return tickets, nil
}
