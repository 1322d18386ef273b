package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openfrc/stats-api/internal/metrics"
)

// HTTPModel calls a remote scoring model server.
type HTTPModel struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPOption configures the remote model client
type HTTPOption func(*HTTPModel)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(m *HTTPModel) {
		m.httpClient = client
	}
}

// NewHTTPModel creates a client for the model server at baseURL.
func NewHTTPModel(baseURL string, opts ...HTTPOption) *HTTPModel {
	m := &HTTPModel{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Prediction float64 `json:"prediction"`
	Error      string  `json:"error,omitempty"`
}

// Predict posts the feature vector to /predict.
func (m *HTTPModel) Predict(ctx context.Context, features Features) (float64, error) {
	if err := features.Validate(); err != nil {
		return 0, err
	}

	body, err := json.Marshal(predictRequest{Features: features[:]})
	if err != nil {
		return 0, fmt.Errorf("encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		metrics.ScoringModelCalls.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("scoring model request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		metrics.ScoringModelCalls.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("scoring model error %d: %s", resp.StatusCode, string(msg))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.ScoringModelCalls.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("decode prediction: %w", err)
	}
	if out.Error != "" {
		metrics.ScoringModelCalls.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("scoring model: %s", out.Error)
	}

	metrics.ScoringModelCalls.WithLabelValues("ok").Inc()
	return out.Prediction, nil
}
