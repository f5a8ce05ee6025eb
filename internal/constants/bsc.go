package constants

// BSC mainnet
const (
	BscRPC     = "https://bsc-dataseed1.binance.org"
	BscChainID = 56
)

// opBNB mainnet, where attestations are recorded
const (
	OpbnbRPC     = "https://opbnb-mainnet-rpc.bnbchain.org"
	OpbnbChainID = 204
)

// BscScan (etherscan v2 multichain API, v1 deprecated Jan 2026)
const BscScanAPI = "https://api.etherscan.io/v2/api"

// honeypot.is simulation API
const HoneypotAPI = "https://api.honeypot.is"

// OpenRouter completion API
const (
	OpenRouterAPI   = "https://openrouter.ai/api/v1/chat/completions"
	OpenRouterModel = "google/gemini-2.5-flash"
)

// PancakeSwap V2
const (
	PancakeFactory = "0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73"
	PancakeRouter  = "0x10ED43C718714eb63d5aA57B78B54704E256024E"
	WBNB           = "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"
	BUSD           = "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56"
	USDTBsc        = "0x55d398326f99059fF775485246999027B3197955"
)

// FallbackBNBPriceUSD is used when the WBNB/BUSD pair cannot be read.
const FallbackBNBPriceUSD = 600

// DeadAddresses receive burned supply.
var DeadAddresses = []string{
	"0x000000000000000000000000000000000000dead",
	"0x0000000000000000000000000000000000000000",
	"0x0000000000000000000000000000000000000001",
}

// LockerContracts hold LP tokens on behalf of projects. LP balances parked
// here count as locked liquidity.
var LockerContracts = map[string]string{
	"0x7ee058420e5937496f5a2096f04caa7721cf70cc": "PinkLock",
	"0xc765bddb93b0d1c1a88282ba0fa6b2d00e3e0c83": "Unicrypt",
	"0xeaed594b5926a7d5fbbc61985390baaf936a6b8d": "Mudra",
	"0x2d045410f002a95efcee67759a92518fa3fce677": "DxLock",
}

// BinancePeggedTokens are official bridge tokens. Honeypot simulation often
// flags them because of their proxy implementations, so a positive result
// against this allowlist is treated as a false alarm.
var BinancePeggedTokens = map[string]string{
	"0x1d2f0da169ceb9fc7b3144628db156f3f6c60dbe": "XRP",
	"0xf8a0bf9cf54bb92f17374d9e9a321e6a111a51bd": "LINK",
	"0x4b0f1812e5df2a09796481ff14017e6005508003": "TWT",
	"0xba2ae424d960c26247dd6c32edc70b295c744c43": "DOGE",
	"0x85eac5ac2f758618dfa09bdbe0cf174e7d574d5b": "TRX",
	"0x0d8ce2a99bb6e3b7db580ed848240e4a0f9ae153": "FIL",
	"0x4338665cbb7b2485a8855a139b75d5e34ab0db94": "LTC",
	"0x7083609fce4d1d8dc0c979aab8c869ea2c873402": "DOT",
	"0x3ee2200efb3400fabb9aacf31297cbdd1d435d47": "ADA",
	"0x1ce0c2827e2ef14d5c4f29a091d735a204794041": "AVAX",
	"0xa045e37a0d1dd3a45fefb8803d22457abc0a728a": "MATIC",
	"0x7130d2a12b9bcbfae4f2634d864a1ee1ce3ead9c": "BTCB",
	"0x2170ed0880ac9a755fd29b2688956bd959f933f8": "ETH",
	"0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c": "WBNB",
	"0xe9e7cea3dedca5984780bafc599bd69add087d56": "BUSD",
	"0x55d398326f99059ff775485246999027b3197955": "USDT",
	"0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d": "USDC",
	"0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82": "CAKE",
	"0xcf6bb5389c92bdda8a3747ddb454cb7a64626c63": "XVS",
	"0x14016e85a25aeb13065688cafb43044c2ef86784": "TUSD",
	"0x8ff795a6f4d97e7887c79bea79aba5cc76444adf": "BCH",
	"0x1fa4a73a3f0133f0025378af00236f3abdee5d63": "NEAR",
	"0xcc42724c6683b7e57334c4e856f4c9965ed682bd": "MATIC",
	"0x570a5d26f7765ecb712c0924e4de545b89fd43df": "SOL",
}

// KnownAddresses maps well-known BSC addresses to display labels.
var KnownAddresses = map[string]string{
	"0xca143ce32fe78f1f7019d7d551a6402fc5350c73": "PancakeSwap Factory",
	"0x10ed43c718714eb63d5aa57b78b54704e256024e": "PancakeSwap Router",
	"0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c": "WBNB",
	"0xe9e7cea3dedca5984780bafc599bd69add087d56": "BUSD",
	"0x55d398326f99059ff775485246999027b3197955": "USDT",
	"0x000000000000000000000000000000000000dead": "Burn Address",
	"0x0000000000000000000000000000000000000000": "Zero Address",
}
