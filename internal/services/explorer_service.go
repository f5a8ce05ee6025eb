package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vibecheck-lab/vibecheck/internal/constants"
)

// ExplorerService is the BscScan client (etherscan v2 multichain API,
// chainid=56). Every lookup is keyed by API key and contract address.
type ExplorerService interface {
	GetContractSource(ctx context.Context, address string) (*ContractSource, error)
	GetTokenHolders(ctx context.Context, address string, count int) ([]ExplorerHolder, error)
	GetTokenTransfers(ctx context.Context, address string, count int) ([]ExplorerTransfer, error)
	GetContractCreation(ctx context.Context, address string) (*ContractCreation, error)
}

type ContractSource struct {
	IsVerified bool
	SourceCode string
	Compiler   string
}

type ExplorerHolder struct {
	Address  string `json:"TokenHolderAddress"`
	Quantity string `json:"TokenHolderQuantity"`
}

type ExplorerTransfer struct {
	Hash         string `json:"hash"`
	From         string `json:"from"`
	To           string `json:"to"`
	Value        string `json:"value"`
	TokenDecimal string `json:"tokenDecimal"`
	BlockNumber  string `json:"blockNumber"`
	TimeStamp    string `json:"timeStamp"`
}

type ContractCreation struct {
	Creator    string
	DeployedAt time.Time
}

type explorerService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewExplorerService(baseURL, apiKey string) ExplorerService {
	return &explorerService{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sourceResponse struct {
	Status string `json:"status"`
	Result []struct {
		SourceCode      string `json:"SourceCode"`
		CompilerVersion string `json:"CompilerVersion"`
	} `json:"result"`
}

func (s *explorerService) GetContractSource(ctx context.Context, address string) (*ContractSource, error) {
	body, err := s.get(ctx, url.Values{
		"module":  {"contract"},
		"action":  {"getsourcecode"},
		"address": {address},
	})
	if err != nil {
		return nil, err
	}

	var parsed sourceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode source response: %w", err)
	}

	if parsed.Status != "1" || len(parsed.Result) == 0 || parsed.Result[0].SourceCode == "" {
		return &ContractSource{IsVerified: false}, nil
	}

	return &ContractSource{
		IsVerified: true,
		SourceCode: parsed.Result[0].SourceCode,
		Compiler:   parsed.Result[0].CompilerVersion,
	}, nil
}

type holderResponse struct {
	Status string           `json:"status"`
	Result []ExplorerHolder `json:"result"`
}

func (s *explorerService) GetTokenHolders(ctx context.Context, address string, count int) ([]ExplorerHolder, error) {
	body, err := s.get(ctx, url.Values{
		"module":          {"token"},
		"action":          {"tokenholderlist"},
		"contractaddress": {address},
		"page":            {"1"},
		"offset":          {strconv.Itoa(count)},
	})
	if err != nil {
		return nil, err
	}

	var parsed holderResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode holder response: %w", err)
	}
	if parsed.Status != "1" {
		return nil, fmt.Errorf("explorer rejected holder lookup")
	}

	return parsed.Result, nil
}

type transferResponse struct {
	Status string             `json:"status"`
	Result []ExplorerTransfer `json:"result"`
}

func (s *explorerService) GetTokenTransfers(ctx context.Context, address string, count int) ([]ExplorerTransfer, error) {
	body, err := s.get(ctx, url.Values{
		"module":          {"account"},
		"action":          {"tokentx"},
		"contractaddress": {address},
		"page":            {"1"},
		"offset":          {strconv.Itoa(count)},
		"sort":            {"desc"},
	})
	if err != nil {
		return nil, err
	}

	var parsed transferResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode transfer response: %w", err)
	}
	if parsed.Status != "1" {
		return nil, fmt.Errorf("explorer rejected transfer lookup")
	}

	return parsed.Result, nil
}

type creationResponse struct {
	Status string `json:"status"`
	Result []struct {
		ContractCreator string `json:"contractCreator"`
		TimeStamp       string `json:"timestamp"`
	} `json:"result"`
}

func (s *explorerService) GetContractCreation(ctx context.Context, address string) (*ContractCreation, error) {
	body, err := s.get(ctx, url.Values{
		"module":            {"contract"},
		"action":            {"getcontractcreation"},
		"contractaddresses": {address},
	})
	if err != nil {
		return nil, err
	}

	var parsed creationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode creation response: %w", err)
	}
	if parsed.Status != "1" || len(parsed.Result) == 0 {
		return nil, fmt.Errorf("no creation record found")
	}

	creation := &ContractCreation{Creator: parsed.Result[0].ContractCreator}
	if ts, err := strconv.ParseInt(parsed.Result[0].TimeStamp, 10, 64); err == nil && ts > 0 {
		creation.DeployedAt = time.Unix(ts, 0)
	}
	return creation, nil
}

func (s *explorerService) get(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("chainid", strconv.Itoa(constants.BscChainID))
	params.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read explorer response: %w", err)
	}
	return body, nil
}
