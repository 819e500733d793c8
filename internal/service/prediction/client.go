package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/Reese0301/careerinfinance/internal/config"
)

// MaxAttempts is the number of times a question is sent per turn. No retries.
const MaxAttempts = 1

// Request is the body accepted by the prediction endpoint.
type Request struct {
	Question string `json:"question"`
}

// Result is the outcome of one prediction call that reached the endpoint.
type Result struct {
	StatusCode int
	// Text is the reply to show: the endpoint's text on 200, "Error: <status>" otherwise.
	Text string
	// Missing is set when a 200 body had no string text field.
	Missing bool
}

// Client posts questions to prediction endpoints.
type Client struct {
	client *http.Client
}

// NewClient returns a client using httpClient, or a default client without a
// global timeout when nil. Per-endpoint timeouts are applied per request.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{client: httpClient}
}

// Predict sends question to endpoint. A non-200 status is not an error: it is
// folded into Result.Text. Only transport failures are returned as errors.
func (c *Client) Predict(ctx context.Context, endpoint config.Endpoint, question string) (Result, error) {
	var (
		result Result
		err    error
	)
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		result, err = c.do(ctx, endpoint, question)
		if err == nil {
			break
		}
	}
	return result, err
}

func (c *Client) do(ctx context.Context, endpoint config.Endpoint, question string) (Result, error) {
	body, err := json.Marshal(Request{Question: question})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	if endpoint.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, endpoint.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if endpoint.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+endpoint.APIKey)
	}
	for k, v := range endpoint.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Result{StatusCode: resp.StatusCode, Text: ErrorText(resp.StatusCode)}, nil
	}

	var payload struct {
		Text *string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Text == nil {
		log.Printf("[prediction] 200 response without text field from %s (decode err: %v)", endpoint.URL, err)
		return Result{StatusCode: resp.StatusCode, Missing: true}, nil
	}

	return Result{StatusCode: resp.StatusCode, Text: *payload.Text}, nil
}

// ErrorText is the reply recorded for a non-200 status.
func ErrorText(status int) string {
	return "Error: " + strconv.Itoa(status)
}
