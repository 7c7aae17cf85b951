/*
This file contains the unspent output model used across the wallet.
  - UnspentOutput: an explicit (unblinded) Liquid output we can spend.
  - SelectionResult: outcome of a coin selection round.
*/
package utxo

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

var (
	// ErrInsufficientFunds indicates the candidates cannot cover the target.
	ErrInsufficientFunds = errors.New("utxo: insufficient funds")

	// ErrInvalidTxID indicates a txid that is not 32 bytes of hex.
	ErrInvalidTxID = errors.New("utxo: invalid txid")
)

// Represents the unspent transaction output (UTXO)
// as returned by the explorer.
type UnspentOutput struct {
	TxID  string `json:"txid"`  // Identifier, human readable (display order)
	Vout  uint32 `json:"vout"`  // index of the Tx's outputs to be spent
	Asset string `json:"asset"` // asset id, human readable (display order)
	Value uint64 `json:"value"` // in satoshi
}

// Hash returns the txid in internal byte order,
// the form referenced by a transaction input.
func (u *UnspentOutput) Hash() (*chainhash.Hash, error) {
	h, err := chainhash.NewHashFromStr(u.TxID)
	if err != nil || len(u.TxID) != chainhash.MaxHashStringSize {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTxID, u.TxID)
	}
	return h, nil
}

// Outpoint returns "txid:vout".
func (u *UnspentOutput) Outpoint() string {
	return fmt.Sprintf("%s:%d", u.TxID, u.Vout)
}

// Return a human-readable amount
// eg. 1e8 (satoshi) = 1.0
func (u *UnspentOutput) AmountHuman() float64 {
	return float64(u.Value) / 1e8
}

// SelectionResult holds the outputs picked to cover a target
// and the leftover that should go back to the spender.
type SelectionResult struct {
	Chosen []UnspentOutput
	Change uint64
}

// Total is the sum of the chosen outputs.
func (r *SelectionResult) Total() uint64 {
	return Sum(r.Chosen)
}

// Sum adds up the value of every output.
func Sum(list []UnspentOutput) uint64 {
	var sum uint64
	for _, item := range list {
		sum += item.Value
	}
	return sum
}
