// Package judge0 is a client for a Judge0-compatible code execution service.
// Programs are submitted base64-encoded and polled until the service reports
// a terminal status.
package judge0

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Judge0 status ids. Anything above StatusProcessing is terminal.
const (
	StatusInQueue      = 1
	StatusProcessing   = 2
	StatusAccepted     = 3
	StatusCompileError = 6
)

const defaultPollInterval = time.Second

// Client talks to one Judge0 instance.
type Client struct {
	baseURL      string
	authToken    string
	pollInterval time.Duration
	httpClient   *http.Client
	log          zerolog.Logger
}

// NewClient creates a Judge0 client. authToken may be empty for
// self-hosted instances; pollInterval <= 0 falls back to one second.
func NewClient(baseURL, authToken string, pollInterval time.Duration, log zerolog.Logger) *Client {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		authToken:    authToken,
		pollInterval: pollInterval,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          log.With().Str("component", "judge0_client").Logger(),
	}
}

// ExecutionResult is the decoded terminal outcome of one submission.
type ExecutionResult struct {
	Stdout            string
	Stderr            string
	CompileOutput     string
	StatusID          int
	StatusDescription string
	Time              string
	Memory            int
}

type createRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

type createResponse struct {
	Token string `json:"token"`
}

type submissionResponse struct {
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Status        struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
	Time   string `json:"time"`
	Memory int    `json:"memory"`
}

// Execute submits a program and blocks until the service reports a terminal
// status, polling at the configured interval. This is the highest-latency
// call in the system; callers must not hold it on a shared goroutine.
func (c *Client) Execute(ctx context.Context, source string, languageID int, stdin string) (*ExecutionResult, error) {
	token, err := c.createSubmission(ctx, source, languageID, stdin)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		sub, err := c.getSubmission(ctx, token)
		if err != nil {
			return nil, err
		}
		if sub.Status.ID == StatusInQueue || sub.Status.ID == StatusProcessing {
			continue
		}

		return &ExecutionResult{
			Stdout:            decodeField(sub.Stdout),
			Stderr:            decodeField(sub.Stderr),
			CompileOutput:     decodeField(sub.CompileOutput),
			StatusID:          sub.Status.ID,
			StatusDescription: sub.Status.Description,
			Time:              sub.Time,
			Memory:            sub.Memory,
		}, nil
	}
}

func (c *Client) createSubmission(ctx context.Context, source string, languageID int, stdin string) (string, error) {
	body, err := json.Marshal(createRequest{
		SourceCode: base64.StdEncoding.EncodeToString([]byte(source)),
		LanguageID: languageID,
		Stdin:      base64.StdEncoding.EncodeToString([]byte(stdin)),
	})
	if err != nil {
		return "", fmt.Errorf("marshal submission: %w", err)
	}

	url := c.baseURL + "/submissions?base64_encoded=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("create submission: status %d: %s", resp.StatusCode, raw)
	}

	var created createResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode submission token: %w", err)
	}
	if created.Token == "" {
		return "", fmt.Errorf("create submission: empty token")
	}
	return created.Token, nil
}

func (c *Client) getSubmission(ctx context.Context, token string) (*submissionResponse, error) {
	url := fmt.Sprintf("%s/submissions/%s?base64_encoded=true", c.baseURL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get submission: status %d: %s", resp.StatusCode, raw)
	}

	var sub submissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	return &sub, nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("X-Auth-Token", c.authToken)
	}
}

// decodeField decodes an optionally-present base64 payload. Judge0 wraps
// base64 at 76 columns, so whitespace is stripped before decoding.
func decodeField(field *string) string {
	if field == nil || *field == "" {
		return ""
	}
	compact := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ':
			return -1
		}
		return r
	}, *field)

	decoded, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		// Some deployments return plain text despite base64_encoded=true.
		return *field
	}
	return string(decoded)
}
