package logo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PlottingService is a client for the sidecar plotting application, which
// renders PlotData payloads into figures. Rendering happens out of process;
// this client only ships the data.
type PlottingService struct {
	config     PlottingServiceConfig
	httpClient *http.Client
	enabled    bool
}

// PlottingServiceConfig contains configuration for the plotting service.
type PlottingServiceConfig struct {
	BaseURL       string        `json:"base_url"`
	Timeout       time.Duration `json:"timeout"`
	RetryAttempts int           `json:"retry_attempts"`
	RetryDelay    time.Duration `json:"retry_delay"`
}

// PlottingResponse represents the response from the plotting service.
type PlottingResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	PlotURL   string `json:"plot_url,omitempty"`
	PlotID    string `json:"plot_id,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// DefaultPlottingServiceConfig returns default configuration for the plotting service.
func DefaultPlottingServiceConfig() PlottingServiceConfig {
	return PlottingServiceConfig{
		BaseURL:       "http://localhost:8080",
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    1 * time.Second,
	}
}

// NewPlottingService creates a new plotting service client. The client starts
// disabled so training runs do not depend on the sidecar being up.
func NewPlottingService(config PlottingServiceConfig) *PlottingService {
	if config.RetryAttempts < 1 {
		config.RetryAttempts = 1
	}
	return &PlottingService{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		enabled: false,
	}
}

// Enable enables the plotting service client.
func (ps *PlottingService) Enable() {
	ps.enabled = true
}

// Disable disables the plotting service client.
func (ps *PlottingService) Disable() {
	ps.enabled = false
}

// IsEnabled returns whether the plotting service client is enabled.
func (ps *PlottingService) IsEnabled() bool {
	return ps.enabled
}

// SendPlotData sends plot data to the sidecar plotting service, retrying
// failed attempts up to the configured count. A disabled client reports
// failure without touching the network.
func (ps *PlottingService) SendPlotData(plotData PlotData) (*PlottingResponse, error) {
	if !ps.enabled {
		return &PlottingResponse{
			Success: false,
			Message: "plotting service is disabled",
		}, nil
	}

	var lastErr error
	for attempt := 0; attempt < ps.config.RetryAttempts; attempt++ {
		resp, err := ps.send(plotData)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// Wait before retry (except for the last attempt)
		if attempt < ps.config.RetryAttempts-1 {
			time.Sleep(ps.config.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to send plot data after %d attempts: %w", ps.config.RetryAttempts, lastErr)
}

func (ps *PlottingService) send(plotData PlotData) (*PlottingResponse, error) {
	jsonData, err := json.Marshal(plotData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plot data: %w", err)
	}

	url := fmt.Sprintf("%s/plot", ps.config.BaseURL)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ps.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var plotResponse PlottingResponse
	if err := json.Unmarshal(respBody, &plotResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status %d: %s", resp.StatusCode, plotResponse.Message)
	}

	return &plotResponse, nil
}

// CheckHealth checks if the plotting service is available.
func (ps *PlottingService) CheckHealth() error {
	if !ps.enabled {
		return fmt.Errorf("plotting service is disabled")
	}

	url := fmt.Sprintf("%s/health", ps.config.BaseURL)
	resp, err := ps.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("failed to send health check request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}

	return nil
}
