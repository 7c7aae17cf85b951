/*
UnsignedTxBuilder is the capability the assembler needs from a
partially signed transaction: append inputs, append outputs, serialize.

The assembler never removes or reorders entries, it only appends.
How the PSET is laid out on the wire is up to the implementation
(see pset_builder.go for the go-elements backed one).
*/
package assembler

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/TEENet-io/liquid-wallet/lqman/confidential"
)

// InputEntry references a previous output and describes what it locks.
type InputEntry struct {
	Hash   *chainhash.Hash     // previous txid, internal byte order
	Index  uint32              // previous vout
	Script []byte              // locking script of the previous output
	Field  *confidential.Field // asset/value/nonce of the previous output
}

// OutputEntry is a new output paying Field to Script.
type OutputEntry struct {
	Script []byte
	Field  *confidential.Field
}

type UnsignedTxBuilder interface {
	// Append an input together with its witness utxo.
	AddInput(in InputEntry) error
	// Append an output.
	AddOutput(out OutputEntry) error
	NumInputs() int
	NumOutputs() int
	// Serialize back to base64.
	ToBase64() (string, error)
}

// Decoder opens a base64 PSET as a fresh UnsignedTxBuilder.
type Decoder func(psetBase64 string) (UnsignedTxBuilder, error)
