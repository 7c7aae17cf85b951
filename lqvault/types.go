package lqvault

import (
	"errors"

	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
)

var (
	ErrAlreadyExists = errors.New("lqvault: utxo already exists")
	ErrNotFound      = errors.New("lqvault: utxo not found")
	ErrInvalidID     = errors.New("lqvault: invalid vault id")
)

// VaultUTXO is an explicit Liquid output owned by the vault's address.
type VaultUTXO struct {
	TxID    string // 64-character hexadecimal string, display order
	Vout    uint32 // Output index
	Asset   string // 64-character hexadecimal asset id, display order
	Amount  uint64 // Amount in satoshis of Asset
	Script  []byte // Locking script (the vault address' script)
	Lockup  bool   // Lockup status, default is false
	Spent   bool   // Spent status, default is false
	Timeout int64  // Unix timestamp in seconds, set to 0 if untouched
}

// Unspent converts to the form the coin selector consumes.
func (v *VaultUTXO) Unspent() utxo.UnspentOutput {
	return utxo.UnspentOutput{TxID: v.TxID, Vout: v.Vout, Asset: v.Asset, Value: v.Amount}
}

// VaultUTXOStorage defines the interface for database operations on VaultUTXO
type VaultUTXOStorage interface {
	// InsertVaultUTXO inserts a new VaultUTXO into the database
	InsertVaultUTXO(u VaultUTXO) error

	// QueryByTxIDAndVout returns (nil, nil) when no such utxo is stored
	QueryByTxIDAndVout(txID string, vout uint32) (*VaultUTXO, error)

	// All utxos not yet spent, locked or not, in insertion order
	QueryAllUnspentUTXOs() ([]VaultUTXO, error)

	// Usable (not locked, not spent) utxos of asset, in insertion order
	QueryUsableByAsset(asset string) ([]VaultUTXO, error)

	// Locked utxos whose timeout is before t (unix seconds)
	QueryExpiredAndLockedUTXOs(t int64) ([]VaultUTXO, error)

	// SetLockup sets the lockup status and its expiry timepoint together
	SetLockup(txID string, vout uint32, lockup bool, timeout int64) error

	// SetSpent sets the spent status of a VaultUTXO
	SetSpent(txID string, vout uint32, spent bool) error

	// SumByAsset sums usable utxos per asset.
	// Excludes locked UTXOs.
	// Excludes spent UTXOs.
	SumByAsset() (map[string]uint64, error)

	Close() error
}
