package wallet

import (
	"errors"

	"github.com/TEENet-io/liquid-wallet/lqman/assembler"
	"github.com/TEENet-io/liquid-wallet/lqman/confidential"
	"github.com/TEENet-io/liquid-wallet/lqman/netcfg"
	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
)

// Every failure returned by this package matches one of these with errors.Is.
var (
	ErrInvalidPsbt        = assembler.ErrInvalidPsbt
	ErrInsufficientFunds  = utxo.ErrInsufficientFunds
	ErrInvalidAssetID     = confidential.ErrInvalidAssetID
	ErrInvalidSignature   = assembler.ErrInvalidSignature
	ErrFinalizationFailed = assembler.ErrFinalizationFailed
	ErrInvalidNetwork     = netcfg.ErrUnknownNetwork

	ErrInvalidAddressOrNetwork = errors.New("wallet: invalid address or network")
	ErrInvalidKeypair          = errors.New("wallet: invalid keypair")
	ErrWalletCreationFailed    = errors.New("wallet: wallet creation failed")
)
