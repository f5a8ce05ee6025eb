package utils

import (
	"strings"

	"github.com/vibecheck-lab/vibecheck/internal/models"
)

// patternRule matches one suspicious construct in Solidity source. Matching
// is done on the lowercased source, so needles are lowercase.
type patternRule struct {
	needles []string
	flag    func(p *models.ContractPatterns)
}

var patternRules = []patternRule{
	{[]string{"delegatecall", "upgradeableproxy", "transparentproxy", "_implementation()"},
		func(p *models.ContractPatterns) { p.HasProxy = true }},
	{[]string{"function mint(", "function _mint(", "mintable"},
		func(p *models.ContractPatterns) { p.HasMint = true }},
	{[]string{"blacklist", "blocklist", "isblacklisted", "_isexcludedfrom"},
		func(p *models.ContractPatterns) { p.HasBlacklist = true }},
	{[]string{"whennotpaused", "function pause(", "pausable"},
		func(p *models.ContractPatterns) { p.HasPausable = true }},
	{[]string{"setfee", "settax", "updatefee", "changefee"},
		func(p *models.ContractPatterns) { p.HasFeeModifier = true }},
	{[]string{"maxtxamount", "maxtransaction", "maxwallet"},
		func(p *models.ContractPatterns) { p.HasMaxTxLimit = true }},
	{[]string{"antibot", "anti-bot", "botprotection", "sniperprotection"},
		func(p *models.ContractPatterns) { p.HasAntiBot = true }},
	{[]string{"hiddenowner", "_previousowner", "geUnlockTime"},
		func(p *models.ContractPatterns) { p.HasHiddenOwner = true }},
}

// suspiciousRules feed the open-ended pattern list rather than a boolean flag.
var suspiciousRules = []struct {
	needle  string
	finding string
}{
	{"selfdestruct", "Contract can self-destruct"},
	{"assembly", "Raw assembly block (possible hidden storage writes)"},
	{"block.number", "Block-number gated logic (possible trading window manipulation)"},
	{"type(uint256).max", "Unlimited approval pattern"},
}

// ScanContractPatterns derives the static-analysis flags from verified
// source text. Pure; called once per scan. Unverified contracts yield an
// empty result.
func ScanContractPatterns(sourceCode string) models.ContractPatterns {
	patterns := models.ContractPatterns{SuspiciousPatterns: []string{}}
	if sourceCode == "" {
		return patterns
	}

	lower := strings.ToLower(sourceCode)
	for _, rule := range patternRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, strings.ToLower(needle)) {
				rule.flag(&patterns)
				break
			}
		}
	}

	for _, rule := range suspiciousRules {
		if strings.Contains(lower, rule.needle) {
			patterns.SuspiciousPatterns = append(patterns.SuspiciousPatterns, rule.finding)
		}
	}

	return patterns
}
