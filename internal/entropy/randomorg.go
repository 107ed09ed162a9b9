package entropy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// DefaultEndpoint is the random.org JSON-RPC endpoint.
const DefaultEndpoint = "https://api.random.org/json-rpc/4/invoke"

const (
	lowWater     = 10
	failBackoff  = time.Minute
	requestCount = 100
)

// Client provides true random numbers from random.org with a local pool.
// Float never waits on the network: a low pool is refilled in the
// background, and an empty pool falls back to crypto/rand.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client

	mu        sync.Mutex
	pool      []float64
	lowWater  int
	refilling bool
	failedAt  time.Time
	now       func() time.Time
}

// NewClient creates a random.org client. Returns nil if apiKey is empty.
func NewClient(apiKey, endpoint string) *Client {
	if apiKey == "" {
		return nil
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		lowWater: lowWater,
		now:      time.Now,
	}
}

// FromKey returns a random.org-backed source when a key is set and the
// crypto source otherwise.
func FromKey(apiKey, endpoint string) Source {
	if c := NewClient(apiKey, endpoint); c != nil {
		return c
	}
	return Default()
}

// Float implements Source.
func (c *Client) Float() float64 {
	if c == nil {
		return cryptoRandFloat()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pool) < c.lowWater && !c.refilling && c.now().Sub(c.failedAt) >= failBackoff {
		c.refilling = true
		go c.backgroundRefill()
	}

	if len(c.pool) == 0 {
		return cryptoRandFloat()
	}

	val := c.pool[0]
	c.pool = c.pool[1:]
	return val
}

func (c *Client) backgroundRefill() {
	if err := c.Refill(); err != nil {
		slog.Debug("random.org refill failed", "error", err)
	}
	c.mu.Lock()
	c.refilling = false
	c.mu.Unlock()
}

// Refill fetches a batch from random.org and appends it to the pool. It
// blocks on the request without holding the pool lock.
func (c *Client) Refill() error {
	data, err := c.fetch()
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failedAt = c.now()
		return err
	}
	c.pool = append(c.pool, data...)
	slog.Debug("random.org pool refilled", "count", len(data))
	return nil
}

// Intn implements Source.
func (c *Client) Intn(n int) int { return intn(c.Float(), n) }

// Pooled is the number of buffered values.
func (c *Client) Pooled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pool)
}

func (c *Client) fetch() ([]float64, error) {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateDecimalFractions",
		"params": map[string]any{
			"apiKey":        c.apiKey,
			"n":             requestCount,
			"decimalPlaces": 6,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.client.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result struct {
		Result struct {
			Random struct {
				Data []float64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if result.Error != nil {
		return nil, fmt.Errorf("api error: %s", result.Error.Message)
	}
	return result.Result.Random.Data, nil
}
