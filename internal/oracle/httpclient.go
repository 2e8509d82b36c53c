package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// HTTPClient talks to an oracle service over the JSON contract:
// POST {entity_id, text, mode} -> {verdict, latency_ms}.
type HTTPClient struct {
	endpoint string
	httpc    *http.Client
	logger   zerolog.Logger
}

// NewHTTPClient builds a client for the given oracle endpoint. The deadline
// is controlled per call through the context, so the underlying http.Client
// carries no timeout of its own.
func NewHTTPClient(logger zerolog.Logger, endpoint string) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		httpc:    &http.Client{},
		logger:   logger.With().Str("component", "oracle_http").Logger(),
	}
}

type oracleRequest struct {
	EntityID string `json:"entity_id"`
	Text     string `json:"text"`
	Mode     Mode   `json:"mode"`
}

type oracleResponse struct {
	Verdict   string `json:"verdict"`
	LatencyMs int64  `json:"latency_ms"`
}

// Ask implements Client.
func (c *HTTPClient) Ask(ctx context.Context, entityID, text string) (Verdict, error) {
	resp, err := c.post(ctx, oracleRequest{EntityID: entityID, Text: text, Mode: ModeQuestion})
	if err != nil {
		return "", err
	}
	return ParseVerdict(resp.Verdict)
}

// CheckGuess implements Client.
func (c *HTTPClient) CheckGuess(ctx context.Context, entityID, text string) (GuessVerdict, error) {
	resp, err := c.post(ctx, oracleRequest{EntityID: entityID, Text: text, Mode: ModeGuess})
	if err != nil {
		return "", err
	}
	return ParseGuessVerdict(resp.Verdict)
}

func (c *HTTPClient) post(ctx context.Context, reqBody oracleRequest) (oracleResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return oracleResponse{}, fmt.Errorf("oracle http: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return oracleResponse{}, fmt.Errorf("oracle http: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return oracleResponse{}, fmt.Errorf("oracle http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return oracleResponse{}, fmt.Errorf("oracle http: status %d: %s", resp.StatusCode, body)
	}

	var decoded oracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return oracleResponse{}, fmt.Errorf("oracle http: decode response: %w", err)
	}

	c.logger.Debug().Str("mode", string(reqBody.Mode)).Int64("latency_ms", decoded.LatencyMs).
		Msg("oracle responded")
	return decoded, nil
}
