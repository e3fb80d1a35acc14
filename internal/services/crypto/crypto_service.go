package crypto

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/arvoinvest/backend/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	// ErrInvalidAddress is returned for a malformed hex address
	ErrInvalidAddress = errors.New("invalid ethereum address")

	// ErrTxNotFound is returned when the chain does not know the transaction
	ErrTxNotFound = errors.New("transaction not found")

	// ErrWrongRecipient is returned when a deposit tx does not pay the
	// platform deposit address
	ErrWrongRecipient = errors.New("transaction recipient is not the deposit address")

	// ErrNotConfirmed is returned while a tx lacks the required confirmations
	ErrNotConfirmed = errors.New("transaction does not have enough confirmations")
)

// weiPerEth converts wei amounts to whole ether for bookkeeping
var weiPerEth = new(big.Float).SetInt(big.NewInt(1e18))

// CryptoService verifies on-chain deposits against an Ethereum RPC node
type CryptoService struct {
	client           *ethclient.Client
	depositAddress   common.Address
	minConfirmations uint64
}

// NewCryptoService dials the configured RPC endpoint
func NewCryptoService(cfg config.CryptoConfig) (*CryptoService, error) {
	if !common.IsHexAddress(cfg.DepositAddress) {
		return nil, ErrInvalidAddress
	}

	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to ethereum node: %w", err)
	}

	return &CryptoService{
		client:           client,
		depositAddress:   common.HexToAddress(cfg.DepositAddress),
		minConfirmations: uint64(cfg.MinConfirmations),
	}, nil
}

// ValidateAddress reports whether the string is a well-formed hex address
func ValidateAddress(address string) bool {
	return common.IsHexAddress(address)
}

// DepositAddress returns the platform deposit address as a checksummed string
func (s *CryptoService) DepositAddress() string {
	return s.depositAddress.Hex()
}

// VerifyDeposit checks that the tx exists, pays the deposit address and is
// buried under enough confirmations. It returns the transferred amount in
// ether.
func (s *CryptoService) VerifyDeposit(ctx context.Context, txHash string) (float64, error) {
	hash := common.HexToHash(txHash)

	tx, pending, err := s.client.TransactionByHash(ctx, hash)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTxNotFound, err)
	}
	if pending {
		return 0, ErrNotConfirmed
	}

	to := tx.To()
	if to == nil || !strings.EqualFold(to.Hex(), s.depositAddress.Hex()) {
		return 0, ErrWrongRecipient
	}

	receipt, err := s.client.TransactionReceipt(ctx, hash)
	if err != nil {
		return 0, fmt.Errorf("error fetching receipt: %w", err)
	}
	if receipt.Status != 1 {
		return 0, fmt.Errorf("transaction %s reverted", txHash)
	}

	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("error fetching block number: %w", err)
	}
	confirmations := head - receipt.BlockNumber.Uint64() + 1
	if confirmations < s.minConfirmations {
		return 0, ErrNotConfirmed
	}

	amount, _ := new(big.Float).Quo(new(big.Float).SetInt(tx.Value()), weiPerEth).Float64()
	return amount, nil
}
