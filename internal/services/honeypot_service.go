package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/vibecheck-lab/vibecheck/internal/constants"
	"github.com/vibecheck-lab/vibecheck/internal/models"
)

// HoneypotService runs the buy/sell simulation against honeypot.is.
type HoneypotService interface {
	CheckToken(ctx context.Context, address string) (models.HoneypotResult, error)
}

type honeypotService struct {
	baseURL    string
	httpClient *http.Client
}

func NewHoneypotService(baseURL string) HoneypotService {
	return &honeypotService{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type honeypotResponse struct {
	HoneypotResult struct {
		IsHoneypot bool `json:"isHoneypot"`
	} `json:"honeypotResult"`
	SimulationResult struct {
		BuyTax  float64 `json:"buyTax"`
		SellTax float64 `json:"sellTax"`
	} `json:"simulationResult"`
	SimulationError string `json:"simulationError"`
}

func (s *honeypotService) CheckToken(ctx context.Context, address string) (models.HoneypotResult, error) {
	endpoint := fmt.Sprintf("%s/v2/IsHoneypot?address=%s&chainID=%s",
		s.baseURL, address, strconv.Itoa(constants.BscChainID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.HoneypotResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.HoneypotResult{}, fmt.Errorf("honeypot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.HoneypotResult{}, fmt.Errorf("honeypot API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.HoneypotResult{}, fmt.Errorf("failed to read honeypot response: %w", err)
	}

	var parsed honeypotResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.HoneypotResult{}, fmt.Errorf("failed to decode honeypot response: %w", err)
	}

	return models.HoneypotResult{
		IsHoneypot: parsed.HoneypotResult.IsHoneypot,
		BuyTax:     parsed.SimulationResult.BuyTax,
		SellTax:    parsed.SimulationResult.SellTax,
		Error:      parsed.SimulationError,
	}, nil
}
