package constants

// Minimal ABI fragments for the contract reads the pipeline performs. Only
// the functions we actually call are declared.

const ERC20ABI = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"owner","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

const FactoryABI = `[
	{"constant":true,"inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"name":"getPair","outputs":[{"name":"pair","type":"address"}],"stateMutability":"view","type":"function"}
]`

const PairABI = `[
	{"constant":true,"inputs":[],"name":"getReserves","outputs":[{"name":"reserve0","type":"uint112"},{"name":"reserve1","type":"uint112"},{"name":"blockTimestampLast","type":"uint32"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"token0","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"token1","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// AttestationABI is the fixed interface of the VibeCheck ledger contract on
// opBNB. The pipeline only uses submitAttestation; the read accessors back
// the display routes.
const AttestationABI = `[
	{"inputs":[{"name":"token","type":"address"},{"name":"score","type":"uint8"},{"name":"riskLevel","type":"string"},{"name":"reportCID","type":"string"}],"name":"submitAttestation","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"token","type":"address"}],"name":"getAttestations","outputs":[{"components":[{"name":"token","type":"address"},{"name":"score","type":"uint8"},{"name":"riskLevel","type":"string"},{"name":"reportCID","type":"string"},{"name":"timestamp","type":"uint256"},{"name":"scanner","type":"address"}],"type":"tuple[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"token","type":"address"}],"name":"getLatestScore","outputs":[{"name":"score","type":"uint8"},{"name":"riskLevel","type":"string"},{"name":"timestamp","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"totalScans","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"count","type":"uint256"}],"name":"getRecentTokens","outputs":[{"name":"","type":"address[]"}],"stateMutability":"view","type":"function"}
]`
