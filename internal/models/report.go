package models

import "time"

// RiskLevel is the overall verdict band of a report.
type RiskLevel string

const (
	RiskLevelSafe     RiskLevel = "SAFE"
	RiskLevelCaution  RiskLevel = "CAUTION"
	RiskLevelDanger   RiskLevel = "DANGER"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// CategoryLevel is the per-category risk band.
type CategoryLevel string

const (
	CategoryLevelSafe     CategoryLevel = "safe"
	CategoryLevelCaution  CategoryLevel = "caution"
	CategoryLevelDanger   CategoryLevel = "danger"
	CategoryLevelCritical CategoryLevel = "critical"
)

// Score-to-band thresholds shared by the rubric sent to the reasoning
// service and the deterministic fallback path.
const (
	SafeThreshold    = 70
	CautionThreshold = 50
	DangerThreshold  = 25
)

// RiskLevelForScore maps an overall score to its band.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= SafeThreshold:
		return RiskLevelSafe
	case score >= CautionThreshold:
		return RiskLevelCaution
	case score >= DangerThreshold:
		return RiskLevelDanger
	default:
		return RiskLevelCritical
	}
}

// ClampScore bounds a score to [0, 100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ValidCategoryLevel reports whether level is one of the four defined bands.
func ValidCategoryLevel(level CategoryLevel) bool {
	switch level {
	case CategoryLevelSafe, CategoryLevelCaution, CategoryLevelDanger, CategoryLevelCritical:
		return true
	}
	return false
}

// TokenIdentity is the on-chain and explorer identity of the scanned token.
// Built once per scan and embedded verbatim into the final report.
type TokenIdentity struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"totalSupply"` // decimal string, exceeds float precision
	IsVerified  bool   `json:"isVerified"`
	SourceCode  string `json:"sourceCode,omitempty"`
	Compiler    string `json:"compiler,omitempty"`
	Owner       string `json:"owner,omitempty"`   // empty means renounced or unreadable
	Creator     string `json:"creator,omitempty"`
	ContractAge string `json:"contractAge,omitempty"`
}

// HolderInfo is one entry of the top-N holder list. Percentages are computed
// per holder against total supply; they do not sum to 100.
type HolderInfo struct {
	Address    string  `json:"address"`
	Balance    string  `json:"balance"`
	Percentage float64 `json:"percentage"`
	Label      string  `json:"label,omitempty"`
}

// LiquidityInfo describes one DEX pool holding the token.
// LiquidityUSD is quoteReserve * quotePriceUSD * 2 (both sides of the pool).
type LiquidityInfo struct {
	Pair         string  `json:"pair"`
	Dex          string  `json:"dex"`
	Token0       string  `json:"token0"`
	Token1       string  `json:"token1"`
	Reserve0     string  `json:"reserve0"`
	Reserve1     string  `json:"reserve1"`
	LiquidityUSD float64 `json:"liquidityUSD"`
	IsLocked     bool    `json:"isLocked"`
	LockExpiry   int64   `json:"lockExpiry,omitempty"`
}

// HoneypotResult is the outcome of the buy/sell simulation. A positive
// result against the pegged-token allowlist is overridden to false with an
// explanatory note in Error.
type HoneypotResult struct {
	IsHoneypot bool    `json:"isHoneypot"`
	BuyTax     float64 `json:"buyTax"`
	SellTax    float64 `json:"sellTax"`
	Error      string  `json:"error,omitempty"`
}

// ContractPatterns holds the static-analysis flags derived from verified
// source. Never mutated after creation.
type ContractPatterns struct {
	HasProxy           bool     `json:"hasProxy"`
	HasMint            bool     `json:"hasMint"`
	HasBlacklist       bool     `json:"hasBlacklist"`
	HasPausable        bool     `json:"hasPausable"`
	HasFeeModifier     bool     `json:"hasFeeModifier"`
	HasMaxTxLimit      bool     `json:"hasMaxTxLimit"`
	HasAntiBot         bool     `json:"hasAntiBot"`
	HasHiddenOwner     bool     `json:"hasHiddenOwner"`
	SuspiciousPatterns []string `json:"suspiciousPatterns"`
}

// LPLockInfo describes how much of the primary pool's LP supply is out of
// the creator's reach (burned or parked in a locker contract).
type LPLockInfo struct {
	IsLocked      bool    `json:"isLocked"` // true iff LockedPercent > 50
	LockedPercent float64 `json:"lockedPercent"`
	LockPlatform  string  `json:"lockPlatform,omitempty"`
	LockExpiry    int64   `json:"lockExpiry,omitempty"`
}

// TransferRecord is one row of the explorer's token transfer history.
type TransferRecord struct {
	Hash         string `json:"hash"`
	From         string `json:"from"`
	To           string `json:"to"`
	Value        string `json:"value"`
	TokenDecimal string `json:"tokenDecimal"`
	BlockNumber  string `json:"blockNumber"`
	TimeStamp    string `json:"timeStamp"`
}

// AnalysisInput is the merged evidence bundle produced by the aggregator and
// consumed by the pre-processor and the reasoning delegate.
type AnalysisInput struct {
	Token     TokenIdentity    `json:"token"`
	Holders   []HolderInfo     `json:"holders"`
	Liquidity []LiquidityInfo  `json:"liquidity"`
	Transfers []TransferRecord `json:"transfers"`
	Honeypot  HoneypotResult   `json:"honeypot"`
	Patterns  ContractPatterns `json:"patterns"`
	LPLock    LPLockInfo       `json:"lpLock"`
	IsPegged  bool             `json:"isPegged"`
}

// RiskCategory is one of the four fixed report categories.
type RiskCategory struct {
	Name     string        `json:"name"`
	Score    int           `json:"score"` // clamped to [0,100]
	Level    CategoryLevel `json:"level"`
	Findings []string      `json:"findings"`
}

// ReportCategories holds the four fixed category slots, always present.
type ReportCategories struct {
	Contract      RiskCategory `json:"contract"`
	Concentration RiskCategory `json:"concentration"`
	Liquidity     RiskCategory `json:"liquidity"`
	Trading       RiskCategory `json:"trading"`
}

// VibeCheckReport is the terminal artifact of a scan. Created exactly once;
// AttestationTx is attached at most once afterwards.
type VibeCheckReport struct {
	Token          TokenIdentity    `json:"token"`
	OverallScore   int              `json:"overallScore"`
	RiskLevel      RiskLevel        `json:"riskLevel"`
	Summary        string           `json:"summary"`
	Categories     ReportCategories `json:"categories"`
	TopHolders     []HolderInfo     `json:"topHolders"`
	Liquidity      []LiquidityInfo  `json:"liquidity"`
	Flags          []string         `json:"flags"`
	Recommendation string           `json:"recommendation"`
	Timestamp      time.Time        `json:"timestamp"`
	AttestationTx  string           `json:"attestationTx,omitempty"`
}

// DerivedStats are the pure rule-derived summary statistics the fallback
// path and the prompt both rely on.
type DerivedStats struct {
	TotalLiquidityUSD float64 `json:"totalLiquidityUSD"`
	Top10HolderPct    float64 `json:"top10HolderPct"`
	BurnedPct         float64 `json:"burnedPct"`
}
