package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const defaultBaseURL = "https://api-inference.huggingface.co"

// Fixed generation parameters for every narrator call.
const (
	maxNewTokens = 500
	temperature  = 0.7
)

// Kind classifies why generation failed so callers can log the failure class.
type Kind string

const (
	KindUnavailable Kind = "unavailable"
	KindRateLimited Kind = "rate_limited"
	KindBadResponse Kind = "bad_response"
)

// Error is the failure result of a Generate call.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("narrator %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client generates narrative text through the Hugging Face Inference API.
type Client struct {
	model   string
	token   string
	baseURL string
	client  *http.Client
	backoff backoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a narrator client for the given model. An empty baseURL
// selects the public inference endpoint.
func NewClient(client *http.Client, baseURL, token, model string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "huggingface",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		model:   model,
		token:   token,
		baseURL: baseURL,
		client:  client,
		backoff: backoffConfig{
			maxRetries:      3,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
}

// Model returns the model identifier reported in analysis results.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

// Generate runs text generation for the prompt and returns the model's text
// verbatim. Failures are reported as *Error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, _ := json.Marshal(generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			MaxNewTokens:   maxNewTokens,
			Temperature:    temperature,
			ReturnFullText: false,
		},
	})

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
		req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := c.do(ctx, buildRequest)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &Error{Kind: KindBadResponse, Err: err}
	}
	if len(out) == 0 || out[0].GeneratedText == "" {
		return "", &Error{Kind: KindBadResponse, Err: errors.New("empty generation response")}
	}

	return out[0].GeneratedText, nil
}

func classify(err error) *Error {
	if errors.Is(err, errRateLimited) {
		return &Error{Kind: KindRateLimited, Err: err}
	}
	return &Error{Kind: KindUnavailable, Err: err}
}
