package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibecheck-lab/vibecheck/internal/constants"
	"github.com/vibecheck-lab/vibecheck/internal/models"
	"github.com/vibecheck-lab/vibecheck/internal/utils"
)

// ErrNotContract aborts a scan: the address has no deployed bytecode, so no
// analysis is meaningful. Every other collector failure degrades instead.
var ErrNotContract = errors.New("address is not a contract")

// Degradation records one collector that fell back to its default value.
// Degradations never change the scan outcome; they feed diagnostics only.
type Degradation struct {
	Collector string `json:"collector"`
	Reason    string `json:"reason"`
}

// CollectorService gathers all evidence about a token into one bundle.
type CollectorService interface {
	Aggregate(ctx context.Context, address string) (*models.AnalysisInput, []Degradation, error)
}

type collectorService struct {
	chain    ChainService
	explorer ExplorerService
	honeypot HoneypotService
	// stagger is the delay step between collectors hitting the
	// rate-limited explorer API. Zeroed in tests.
	stagger time.Duration
	log     zerolog.Logger
}

func NewCollectorService(chain ChainService, explorer ExplorerService, honeypot HoneypotService, log zerolog.Logger) CollectorService {
	return &collectorService{
		chain:    chain,
		explorer: explorer,
		honeypot: honeypot,
		stagger:  250 * time.Millisecond,
		log:      log,
	}
}

const (
	topHolderCount = 20
	transferCount  = 50
)

// Aggregate runs the three-phase pipeline: identity first (its total supply
// feeds holder math), then the independent collectors concurrently, then the
// LP-lock follow-up once the primary pair is known.
func (s *collectorService) Aggregate(ctx context.Context, address string) (*models.AnalysisInput, []Degradation, error) {
	input := &models.AnalysisInput{
		Holders:   []models.HolderInfo{},
		Liquidity: []models.LiquidityInfo{},
		Transfers: []models.TransferRecord{},
	}

	var (
		mu           sync.Mutex
		degradations []Degradation
	)
	degrade := func(collector, reason string) {
		mu.Lock()
		degradations = append(degradations, Degradation{Collector: collector, Reason: reason})
		mu.Unlock()
		s.log.Warn().Str("collector", collector).Str("reason", reason).Msg("collector degraded")
	}

	// Phase 1: identity. The only collector allowed to abort the scan.
	identity, err := s.collectIdentity(ctx, address, degrade)
	if err != nil {
		return nil, degradations, err
	}
	input.Token = *identity
	input.IsPegged = isPeggedToken(address)
	input.Patterns = utils.ScanContractPatterns(identity.SourceCode)

	totalSupply, ok := new(big.Int).SetString(identity.TotalSupply, 10)
	if !ok {
		totalSupply = big.NewInt(0)
	}

	// Phase 2: independent collectors. Explorer-bound ones are staggered to
	// stay under the per-second request ceiling without serializing.
	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		holders, err := s.collectHolders(ctx, address, totalSupply, identity.Decimals)
		if err != nil {
			degrade("holders", err.Error())
			return
		}
		input.Holders = holders
	}()

	go func() {
		defer wg.Done()
		sleepCtx(ctx, s.stagger)
		transfers, err := s.collectTransfers(ctx, address)
		if err != nil {
			degrade("transfers", err.Error())
			return
		}
		input.Transfers = transfers
	}()

	go func() {
		defer wg.Done()
		sleepCtx(ctx, 2*s.stagger)
		age, err := s.collectContractAge(ctx, address)
		if err != nil {
			degrade("contract_age", err.Error())
			return
		}
		// Identity is not yet published to any consumer, so the in-place
		// update is safe.
		input.Token.ContractAge = age.ageText
		if input.Token.Creator == "" {
			input.Token.Creator = age.creator
		}
	}()

	go func() {
		defer wg.Done()
		liquidity, err := s.collectLiquidity(ctx, address)
		if err != nil {
			degrade("liquidity", err.Error())
			return
		}
		input.Liquidity = liquidity
	}()

	go func() {
		defer wg.Done()
		result, err := s.honeypot.CheckToken(ctx, address)
		if err != nil {
			degrade("honeypot", err.Error())
			return
		}
		input.Honeypot = applyPeggedOverride(result, address, input.IsPegged)
	}()

	wg.Wait()

	// Phase 3: LP-lock status of the primary (first-found) pair.
	if len(input.Liquidity) > 0 {
		lock, err := s.collectLPLock(ctx, input.Liquidity[0].Pair)
		if err != nil {
			degrade("lp_lock", err.Error())
		} else {
			input.LPLock = lock
			input.Liquidity[0].IsLocked = lock.IsLocked
		}
	}

	return input, degradations, nil
}

// collectIdentity verifies the address is a deployed contract, then reads
// metadata with per-field degradation defaults and the explorer source.
func (s *collectorService) collectIdentity(ctx context.Context, address string, degrade func(collector, reason string)) (*models.TokenIdentity, error) {
	isContract, err := s.chain.IsContract(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to check bytecode: %w", err)
	}
	if !isContract {
		return nil, fmt.Errorf("%w: %s", ErrNotContract, address)
	}

	identity := &models.TokenIdentity{
		Address:     utils.ChecksumAddress(address),
		Name:        "Unknown",
		Symbol:      "???",
		Decimals:    18,
		TotalSupply: "0",
	}

	if name, err := s.chain.TokenName(ctx, address); err == nil {
		identity.Name = name
	} else {
		degrade("identity.name", err.Error())
	}
	if symbol, err := s.chain.TokenSymbol(ctx, address); err == nil {
		identity.Symbol = symbol
	} else {
		degrade("identity.symbol", err.Error())
	}
	if decimals, err := s.chain.TokenDecimals(ctx, address); err == nil {
		identity.Decimals = decimals
	} else {
		degrade("identity.decimals", err.Error())
	}
	if supply, err := s.chain.TokenTotalSupply(ctx, address); err == nil {
		identity.TotalSupply = supply.String()
	} else {
		degrade("identity.totalSupply", err.Error())
	}

	// Absence of owner() means renounced or unreadable; not a degradation.
	if owner, err := s.chain.TokenOwner(ctx, address); err == nil {
		identity.Owner = owner
	}

	source, err := s.explorer.GetContractSource(ctx, address)
	if err != nil {
		degrade("identity.source", err.Error())
	} else if source.IsVerified {
		identity.IsVerified = true
		identity.SourceCode = source.SourceCode
		identity.Compiler = source.Compiler
	}

	return identity, nil
}

func (s *collectorService) collectHolders(ctx context.Context, address string, totalSupply *big.Int, decimals uint8) ([]models.HolderInfo, error) {
	raw, err := s.explorer.GetTokenHolders(ctx, address, topHolderCount)
	if err != nil {
		return nil, err
	}

	holders := make([]models.HolderInfo, 0, len(raw))
	for _, h := range raw {
		balance, ok := new(big.Int).SetString(h.Quantity, 10)
		if !ok {
			continue
		}
		holders = append(holders, models.HolderInfo{
			Address:    h.Address,
			Balance:    formatUnits(balance, decimals),
			Percentage: supplyPercentage(balance, totalSupply),
			Label:      labelForAddress(h.Address),
		})
	}
	return holders, nil
}

func (s *collectorService) collectTransfers(ctx context.Context, address string) ([]models.TransferRecord, error) {
	raw, err := s.explorer.GetTokenTransfers(ctx, address, transferCount)
	if err != nil {
		return nil, err
	}

	transfers := make([]models.TransferRecord, 0, len(raw))
	for _, t := range raw {
		transfers = append(transfers, models.TransferRecord{
			Hash:         t.Hash,
			From:         t.From,
			To:           t.To,
			Value:        t.Value,
			TokenDecimal: t.TokenDecimal,
			BlockNumber:  t.BlockNumber,
			TimeStamp:    t.TimeStamp,
		})
	}
	return transfers, nil
}

type contractAge struct {
	ageText string
	creator string
}

func (s *collectorService) collectContractAge(ctx context.Context, address string) (contractAge, error) {
	creation, err := s.explorer.GetContractCreation(ctx, address)
	if err != nil {
		return contractAge{}, err
	}

	age := contractAge{creator: creation.Creator}
	if !creation.DeployedAt.IsZero() {
		age.ageText = humanizeAge(time.Since(creation.DeployedAt))
	}
	return age, nil
}

// collectLiquidity checks PancakeSwap V2 pairs against the three quote
// tokens. liquidityUSD = quoteReserve * quotePriceUSD * 2 (symmetric-value
// approximation of a constant-product pool).
func (s *collectorService) collectLiquidity(ctx context.Context, address string) ([]models.LiquidityInfo, error) {
	bnbPrice := s.fetchBNBPrice(ctx)

	quoteTokens := []struct {
		address string
		price   float64
	}{
		{constants.WBNB, bnbPrice},
		{constants.BUSD, 1},
		{constants.USDTBsc, 1},
	}

	pools := []models.LiquidityInfo{}
	for _, qt := range quoteTokens {
		pair, err := s.chain.GetPair(ctx, address, qt.address)
		if err != nil || pair == "" {
			continue
		}

		reserve0, reserve1, err := s.chain.PairReserves(ctx, pair)
		if err != nil {
			continue
		}
		token0, err := s.chain.PairToken0(ctx, pair)
		if err != nil {
			continue
		}

		tokenIsFirst := utils.NormalizeAddress(token0) == utils.NormalizeAddress(address)
		quoteReserve := reserve1
		if !tokenIsFirst {
			quoteReserve = reserve0
		}

		// All three quote tokens have 18 decimals on BSC.
		liquidityUSD := bigToFloat(quoteReserve, 18) * qt.price * 2

		pool := models.LiquidityInfo{
			Pair:         pair,
			Dex:          "PancakeSwap V2",
			Reserve0:     reserve0.String(),
			Reserve1:     reserve1.String(),
			LiquidityUSD: liquidityUSD,
		}
		if tokenIsFirst {
			pool.Token0, pool.Token1 = address, qt.address
		} else {
			pool.Token0, pool.Token1 = qt.address, address
		}
		pools = append(pools, pool)
	}

	return pools, nil
}

// fetchBNBPrice derives the BNB/USD rate from the WBNB/BUSD pair.
func (s *collectorService) fetchBNBPrice(ctx context.Context) float64 {
	pair, err := s.chain.GetPair(ctx, constants.WBNB, constants.BUSD)
	if err != nil || pair == "" {
		return constants.FallbackBNBPriceUSD
	}

	reserve0, reserve1, err := s.chain.PairReserves(ctx, pair)
	if err != nil {
		return constants.FallbackBNBPriceUSD
	}
	token0, err := s.chain.PairToken0(ctx, pair)
	if err != nil {
		return constants.FallbackBNBPriceUSD
	}

	bnbReserve, busdReserve := reserve0, reserve1
	if utils.NormalizeAddress(token0) != utils.NormalizeAddress(constants.WBNB) {
		bnbReserve, busdReserve = reserve1, reserve0
	}

	bnb := bigToFloat(bnbReserve, 18)
	busd := bigToFloat(busdReserve, 18)
	if bnb == 0 {
		return constants.FallbackBNBPriceUSD
	}
	return busd / bnb
}

// collectLPLock measures how much of the pair's LP supply sits in burn
// addresses or known locker contracts.
func (s *collectorService) collectLPLock(ctx context.Context, pair string) (models.LPLockInfo, error) {
	lpSupply, err := s.chain.PairTotalSupply(ctx, pair)
	if err != nil {
		return models.LPLockInfo{}, fmt.Errorf("failed to read LP supply: %w", err)
	}
	if lpSupply.Sign() == 0 {
		return models.LPLockInfo{}, nil
	}

	locked := new(big.Int)
	platform := ""
	for _, dead := range constants.DeadAddresses {
		if balance, err := s.chain.BalanceOf(ctx, pair, dead); err == nil {
			locked.Add(locked, balance)
		}
	}
	for locker, name := range constants.LockerContracts {
		balance, err := s.chain.BalanceOf(ctx, pair, locker)
		if err != nil || balance.Sign() == 0 {
			continue
		}
		locked.Add(locked, balance)
		platform = name
	}

	lockedPct := supplyPercentage(locked, lpSupply)
	info := models.LPLockInfo{
		IsLocked:      lockedPct > 50,
		LockedPercent: lockedPct,
		LockPlatform:  platform,
	}
	if platform == "" && lockedPct > 0 {
		info.LockPlatform = "Burned"
	}
	return info, nil
}

// applyPeggedOverride suppresses honeypot positives on official pegged
// tokens: detection regularly misfires on their proxy implementations.
func applyPeggedOverride(result models.HoneypotResult, address string, isPegged bool) models.HoneypotResult {
	if !result.IsHoneypot || !isPegged {
		return result
	}
	symbol := constants.BinancePeggedTokens[utils.NormalizeAddress(address)]
	result.IsHoneypot = false
	result.Error = fmt.Sprintf("honeypot signal suppressed: %s is an official Binance-pegged token (proxy false positive)", symbol)
	return result
}

func isPeggedToken(address string) bool {
	_, ok := constants.BinancePeggedTokens[utils.NormalizeAddress(address)]
	return ok
}

func labelForAddress(address string) string {
	normalized := utils.NormalizeAddress(address)
	if label, ok := constants.KnownAddresses[normalized]; ok {
		return label
	}
	for _, dead := range constants.DeadAddresses {
		if normalized == dead {
			return "Burn"
		}
	}
	return ""
}

// supplyPercentage computes balance/total*100 with two decimal places of
// precision, without leaving big.Int space until the final division.
func supplyPercentage(balance, total *big.Int) float64 {
	if total == nil || total.Sign() == 0 {
		return 0
	}
	scaled := new(big.Int).Mul(balance, big.NewInt(10000))
	scaled.Quo(scaled, total)
	return float64(scaled.Int64()) / 100
}

func formatUnits(value *big.Int, decimals uint8) string {
	return new(big.Float).Quo(
		new(big.Float).SetInt(value),
		new(big.Float).SetInt(pow10(decimals)),
	).Text('f', 4)
}

func bigToFloat(value *big.Int, decimals uint8) float64 {
	result, _ := new(big.Float).Quo(
		new(big.Float).SetInt(value),
		new(big.Float).SetInt(pow10(decimals)),
	).Float64()
	return result
}

func pow10(exp uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}

func humanizeAge(age time.Duration) string {
	days := int(age.Hours() / 24)
	switch {
	case days >= 365:
		years := days / 365
		if years == 1 {
			return "1 year"
		}
		return fmt.Sprintf("%d years", years)
	case days >= 30:
		months := days / 30
		if months == 1 {
			return "1 month"
		}
		return fmt.Sprintf("%d months", months)
	case days == 1:
		return "1 day"
	case days > 1:
		return fmt.Sprintf("%d days", days)
	default:
		return "less than a day"
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
