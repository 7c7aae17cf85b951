package assembler

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/vulpemventures/go-elements/pset"
	"github.com/vulpemventures/go-elements/transaction"
)

const (
	psetTxVersion  = 2
	psetTxLockTime = 0
)

// PsetBuilder implements UnsignedTxBuilder on top of a go-elements PSET.
type PsetBuilder struct {
	p       *pset.Pset
	updater *pset.Updater
}

// Compile-time interface check.
var _ UnsignedTxBuilder = (*PsetBuilder)(nil)

// NewPset returns an empty PSET (no inputs, no outputs) in base64.
func NewPset() (string, error) {
	p, err := pset.New([]*transaction.TxInput{}, []*transaction.TxOutput{}, psetTxVersion, psetTxLockTime)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPsbt, err)
	}
	return p.ToBase64()
}

// DecodePset is the default Decoder.
func DecodePset(psetBase64 string) (UnsignedTxBuilder, error) {
	p, err := decodePset(psetBase64)
	if err != nil {
		return nil, err
	}
	updater, err := pset.NewUpdater(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPsbt, err)
	}
	return &PsetBuilder{p: p, updater: updater}, nil
}

func decodePset(psetBase64 string) (*pset.Pset, error) {
	if psetBase64 == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidPsbt)
	}
	p, err := pset.NewPsetFromBase64(psetBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPsbt, err)
	}
	return p, nil
}

// AddInput appends the outpoint to the unsigned tx, then attaches the
// witness utxo and a SIGHASH_ALL type to the new partial input.
func (b *PsetBuilder) AddInput(in InputEntry) error {
	if in.Hash == nil || in.Field == nil {
		return fmt.Errorf("%w: incomplete input entry", ErrInvalidPsbt)
	}

	b.p.UnsignedTx.AddInput(transaction.NewTxInput(in.Hash[:], in.Index))
	b.p.Inputs = append(b.p.Inputs, pset.PInput{})
	idx := len(b.p.Inputs) - 1

	prevout := transaction.NewTxOutput(in.Field.Asset, in.Field.Value, in.Script)
	prevout.Nonce = in.Field.Nonce
	if err := b.updater.AddInWitnessUtxo(prevout, idx); err != nil {
		return fmt.Errorf("%w: witness utxo for input %d: %v", ErrInvalidPsbt, idx, err)
	}
	if err := b.updater.AddInSighashType(txscript.SigHashAll, idx); err != nil {
		return fmt.Errorf("%w: sighash for input %d: %v", ErrInvalidPsbt, idx, err)
	}
	return nil
}

// AddOutput appends an explicit output to the unsigned tx.
func (b *PsetBuilder) AddOutput(out OutputEntry) error {
	if out.Field == nil {
		return fmt.Errorf("%w: incomplete output entry", ErrInvalidPsbt)
	}
	txOut := transaction.NewTxOutput(out.Field.Asset, out.Field.Value, out.Script)
	txOut.Nonce = out.Field.Nonce

	b.p.UnsignedTx.AddOutput(txOut)
	b.p.Outputs = append(b.p.Outputs, pset.POutput{})
	return nil
}

func (b *PsetBuilder) NumInputs() int {
	return len(b.p.Inputs)
}

func (b *PsetBuilder) NumOutputs() int {
	return len(b.p.Outputs)
}

func (b *PsetBuilder) ToBase64() (string, error) {
	s, err := b.p.ToBase64()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPsbt, err)
	}
	return s, nil
}
