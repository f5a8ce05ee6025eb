package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/vibecheck-lab/vibecheck/internal/constants"
)

// ChainService exposes the read interface the collectors need: ERC20-shaped
// metadata reads on arbitrary contracts and PancakeSwap factory/pair reads.
type ChainService interface {
	IsContract(ctx context.Context, address string) (bool, error)
	TokenName(ctx context.Context, token string) (string, error)
	TokenSymbol(ctx context.Context, token string) (string, error)
	TokenDecimals(ctx context.Context, token string) (uint8, error)
	TokenTotalSupply(ctx context.Context, token string) (*big.Int, error)
	TokenOwner(ctx context.Context, token string) (string, error)
	GetPair(ctx context.Context, tokenA, tokenB string) (string, error)
	PairReserves(ctx context.Context, pair string) (*big.Int, *big.Int, error)
	PairToken0(ctx context.Context, pair string) (string, error)
	PairTotalSupply(ctx context.Context, pair string) (*big.Int, error)
	BalanceOf(ctx context.Context, token, holder string) (*big.Int, error)
	Close()
}

type chainService struct {
	client     *ethclient.Client
	erc20ABI   abi.ABI
	factoryABI abi.ABI
	pairABI    abi.ABI
	factory    common.Address
}

// NewChainService dials the BSC RPC endpoint and parses the fixed ABIs.
func NewChainService(rpcURL string) (ChainService, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC: %w", err)
	}

	erc20ABI, err := abi.JSON(strings.NewReader(constants.ERC20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	factoryABI, err := abi.JSON(strings.NewReader(constants.FactoryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse factory ABI: %w", err)
	}
	pairABI, err := abi.JSON(strings.NewReader(constants.PairABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pair ABI: %w", err)
	}

	return &chainService{
		client:     client,
		erc20ABI:   erc20ABI,
		factoryABI: factoryABI,
		pairABI:    pairABI,
		factory:    common.HexToAddress(constants.PancakeFactory),
	}, nil
}

func (s *chainService) Close() {
	s.client.Close()
}

// IsContract checks for non-empty bytecode at the address.
func (s *chainService) IsContract(ctx context.Context, address string) (bool, error) {
	code, err := s.client.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return false, fmt.Errorf("failed to fetch bytecode: %w", err)
	}
	return len(code) > 0, nil
}

func (s *chainService) TokenName(ctx context.Context, token string) (string, error) {
	var name string
	if err := s.call(ctx, s.erc20ABI, token, "name", &name); err != nil {
		return "", err
	}
	return name, nil
}

func (s *chainService) TokenSymbol(ctx context.Context, token string) (string, error) {
	var symbol string
	if err := s.call(ctx, s.erc20ABI, token, "symbol", &symbol); err != nil {
		return "", err
	}
	return symbol, nil
}

func (s *chainService) TokenDecimals(ctx context.Context, token string) (uint8, error) {
	var decimals uint8
	if err := s.call(ctx, s.erc20ABI, token, "decimals", &decimals); err != nil {
		return 0, err
	}
	return decimals, nil
}

func (s *chainService) TokenTotalSupply(ctx context.Context, token string) (*big.Int, error) {
	supply := new(big.Int)
	if err := s.call(ctx, s.erc20ABI, token, "totalSupply", &supply); err != nil {
		return nil, err
	}
	return supply, nil
}

// TokenOwner reverts on contracts without an owner() function; callers treat
// that as renounced/unreadable.
func (s *chainService) TokenOwner(ctx context.Context, token string) (string, error) {
	var owner common.Address
	if err := s.call(ctx, s.erc20ABI, token, "owner", &owner); err != nil {
		return "", err
	}
	return owner.Hex(), nil
}

func (s *chainService) GetPair(ctx context.Context, tokenA, tokenB string) (string, error) {
	var pair common.Address
	err := s.callAt(ctx, s.factoryABI, s.factory, "getPair", &pair,
		common.HexToAddress(tokenA), common.HexToAddress(tokenB))
	if err != nil {
		return "", err
	}
	if pair == (common.Address{}) {
		return "", nil
	}
	return pair.Hex(), nil
}

func (s *chainService) PairReserves(ctx context.Context, pair string) (*big.Int, *big.Int, error) {
	data, err := s.pairABI.Pack("getReserves")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode getReserves call: %w", err)
	}

	to := common.HexToAddress(pair)
	output, err := s.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to call getReserves: %w", err)
	}

	results, err := s.pairABI.Unpack("getReserves", output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode getReserves result: %w", err)
	}
	if len(results) < 2 {
		return nil, nil, fmt.Errorf("short getReserves result")
	}

	reserve0, ok0 := results[0].(*big.Int)
	reserve1, ok1 := results[1].(*big.Int)
	if !ok0 || !ok1 {
		return nil, nil, fmt.Errorf("unexpected getReserves result types")
	}
	return reserve0, reserve1, nil
}

func (s *chainService) PairToken0(ctx context.Context, pair string) (string, error) {
	var token0 common.Address
	if err := s.call(ctx, s.pairABI, pair, "token0", &token0); err != nil {
		return "", err
	}
	return token0.Hex(), nil
}

func (s *chainService) PairTotalSupply(ctx context.Context, pair string) (*big.Int, error) {
	supply := new(big.Int)
	if err := s.call(ctx, s.pairABI, pair, "totalSupply", &supply); err != nil {
		return nil, err
	}
	return supply, nil
}

// BalanceOf works on any ERC20-shaped contract, including LP pair tokens.
func (s *chainService) BalanceOf(ctx context.Context, token, holder string) (*big.Int, error) {
	balance := new(big.Int)
	err := s.callAt(ctx, s.erc20ABI, common.HexToAddress(token), "balanceOf", &balance,
		common.HexToAddress(holder))
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (s *chainService) call(ctx context.Context, contractABI abi.ABI, contract, method string, result interface{}, args ...interface{}) error {
	return s.callAt(ctx, contractABI, common.HexToAddress(contract), method, result, args...)
}

func (s *chainService) callAt(ctx context.Context, contractABI abi.ABI, contract common.Address, method string, result interface{}, args ...interface{}) error {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to encode %s call: %w", method, err)
	}

	output, err := s.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	if len(output) == 0 {
		return fmt.Errorf("empty result from %s", method)
	}

	results, err := contractABI.Unpack(method, output)
	if err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no values decoded from %s", method)
	}

	return assignResult(result, results[0])
}

func assignResult(dst interface{}, value interface{}) error {
	switch d := dst.(type) {
	case *string:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string result, got %T", value)
		}
		*d = v
	case *uint8:
		v, ok := value.(uint8)
		if !ok {
			return fmt.Errorf("expected uint8 result, got %T", value)
		}
		*d = v
	case **big.Int:
		v, ok := value.(*big.Int)
		if !ok {
			return fmt.Errorf("expected *big.Int result, got %T", value)
		}
		*d = v
	case *common.Address:
		v, ok := value.(common.Address)
		if !ok {
			return fmt.Errorf("expected address result, got %T", value)
		}
		*d = v
	default:
		return fmt.Errorf("unsupported result type %T", dst)
	}
	return nil
}
