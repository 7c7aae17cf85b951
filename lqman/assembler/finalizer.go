package assembler

import (
	"github.com/vulpemventures/go-elements/pset"
)

// FinalizeAndExtract validates every input signature, finalizes the
// PSET and returns the network-serialized transaction in hex.
func FinalizeAndExtract(psetBase64 string) (string, error) {
	p, err := decodePset(psetBase64)
	if err != nil {
		return "", err
	}

	for i := range p.Inputs {
		if err := ValidateInputSignatures(p, i); err != nil {
			return "", err
		}
	}

	if err := pset.FinalizeAll(p); err != nil {
		return "", wrapf(ErrFinalizationFailed, "%v", err)
	}
	tx, err := pset.Extract(p)
	if err != nil {
		return "", wrapf(ErrFinalizationFailed, "%v", err)
	}
	txHex, err := tx.ToHex()
	if err != nil {
		return "", wrapf(ErrFinalizationFailed, "%v", err)
	}
	return txHex, nil
}
