package assembler

import (
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/liquid-wallet/lqman/confidential"
	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
)

type Assembler struct {
	Script []byte  // locking script owned by the wallet, used for every new input/output
	Decode Decoder // how to open a PSET. Defaults to DecodePset.
}

func NewAssembler(script []byte) *Assembler {
	return &Assembler{Script: script, Decode: DecodePset}
}

// Pick inputs of inputAsset out of candidates, then craft input entries
// that spend them and output entries for the payment and the change.
// Nothing is appended here, so a failure leaves the caller's PSET intact.
func (myAss *Assembler) craft(
	candidates []utxo.UnspentOutput,
	inputAmount uint64, // amount of inputAsset to cover
	outputAmount uint64, // amount of outputAsset to pay
	inputAsset string,
	outputAsset string,
) ([]InputEntry, []OutputEntry, error) {
	// Encode the payment first, a bad output asset id must fail before selection.
	paymentField, err := confidential.EncodeFieldHex(outputAsset, outputAmount)
	if err != nil {
		return nil, nil, err
	}
	if _, err := confidential.EncodeFieldHex(inputAsset, 0); err != nil {
		return nil, nil, err
	}

	sel, err := utxo.Select(utxo.FilterByAsset(candidates, inputAsset), inputAmount)
	if err != nil {
		return nil, nil, err
	}

	inputs := make([]InputEntry, 0, len(sel.Chosen))
	for _, item := range sel.Chosen {
		hash, err := item.Hash()
		if err != nil {
			return nil, nil, err
		}
		field, err := confidential.EncodeFieldHex(inputAsset, item.Value)
		if err != nil {
			return nil, nil, err
		}
		inputs = append(inputs, InputEntry{
			Hash:   hash,
			Index:  item.Vout,
			Script: myAss.Script,
			Field:  field,
		})
	}

	// 1st output: the payment
	outputs := []OutputEntry{{Script: myAss.Script, Field: paymentField}}

	// 2nd output: the change (if change > 0)
	if sel.Change > 0 {
		changeField, err := confidential.EncodeFieldHex(inputAsset, sel.Change)
		if err != nil {
			return nil, nil, err
		}
		outputs = append(outputs, OutputEntry{Script: myAss.Script, Field: changeField})
	}

	return inputs, outputs, nil
}

// UpdateTx appends inputs covering inputAmount of inputAsset, one payment
// output of outputAmount of outputAsset, and a change output when the
// selected inputs exceed inputAmount. Existing entries are left untouched.
func (myAss *Assembler) UpdateTx(
	psetBase64 string,
	candidates []utxo.UnspentOutput,
	inputAmount uint64,
	outputAmount uint64,
	inputAsset string,
	outputAsset string,
) (string, error) {
	decode := myAss.Decode
	if decode == nil {
		decode = DecodePset
	}
	builder, err := decode(psetBase64)
	if err != nil {
		return "", err
	}

	inputs, outputs, err := myAss.craft(candidates, inputAmount, outputAmount, inputAsset, outputAsset)
	if err != nil {
		return "", err
	}

	for _, in := range inputs {
		if err := builder.AddInput(in); err != nil {
			return "", err
		}
	}
	for _, out := range outputs {
		if err := builder.AddOutput(out); err != nil {
			return "", err
		}
	}

	logger.WithFields(logger.Fields{
		"inputs":      len(inputs),
		"outputs":     len(outputs),
		"inputAsset":  inputAsset,
		"outputAsset": outputAsset,
		"totalIn":     builder.NumInputs(),
		"totalOut":    builder.NumOutputs(),
	}).Debug("pset updated")

	return builder.ToBase64()
}

// Wrap errors that are not already classified.
func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
