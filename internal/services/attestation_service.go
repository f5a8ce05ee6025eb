package services

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/vibecheck-lab/vibecheck/internal/constants"
	"github.com/vibecheck-lab/vibecheck/internal/models"
	"github.com/vibecheck-lab/vibecheck/internal/utils"
)

// AttestationService records (token, score, riskLevel, reportHash) on the
// ledger contract. Failures are the caller's to swallow: attestation is a
// best-effort side branch that never fails a scan.
type AttestationService interface {
	Attest(ctx context.Context, report *models.VibeCheckReport) (string, error)
}

type attestationService struct {
	client    *ethclient.Client
	ledgerABI abi.ABI
	contract  common.Address
	key       *ecdsa.PrivateKey
	from      common.Address
	chainID   *big.Int
}

// NewAttestationService dials the opBNB RPC and loads the attester key.
func NewAttestationService(rpcURL, contractAddress, privateKeyHex string) (AttestationService, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial attestation RPC: %w", err)
	}

	ledgerABI, err := abi.JSON(strings.NewReader(constants.AttestationABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse attestation ABI: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid attester private key: %w", err)
	}

	return &attestationService{
		client:    client,
		ledgerABI: ledgerABI,
		contract:  common.HexToAddress(contractAddress),
		key:       key,
		from:      crypto.PubkeyToAddress(key.PublicKey),
		chainID:   big.NewInt(constants.OpbnbChainID),
	}, nil
}

// Attest hashes the report and submits it to the ledger. Returns the
// transaction hash on success.
func (s *attestationService) Attest(ctx context.Context, report *models.VibeCheckReport) (string, error) {
	reportHash, err := utils.HashReport(report)
	if err != nil {
		return "", fmt.Errorf("failed to hash report: %w", err)
	}

	data, err := s.ledgerABI.Pack("submitAttestation",
		common.HexToAddress(report.Token.Address),
		uint8(report.OverallScore),
		string(report.RiskLevel),
		reportHash,
	)
	if err != nil {
		return "", fmt.Errorf("failed to encode submitAttestation call: %w", err)
	}

	nonce, err := s.client.PendingNonceAt(ctx, s.from)
	if err != nil {
		return "", fmt.Errorf("failed to fetch nonce: %w", err)
	}

	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &s.contract,
		Value:    big.NewInt(0),
		Gas:      300000,
		GasPrice: gasPrice,
		Data:     data,
	})

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign attestation: %w", err)
	}

	if err := s.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send attestation: %w", err)
	}

	return signedTx.Hash().Hex(), nil
}
