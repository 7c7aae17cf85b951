package assembler

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	logger "github.com/sirupsen/logrus"
	"github.com/vulpemventures/go-elements/pset"
)

// P2WPKHScript returns 0x00 0x14 <hash160(pubKey)>.
func P2WPKHScript(pubKey []byte) []byte {
	return append([]byte{txscript.OP_0, 0x14}, btcutil.Hash160(pubKey)...)
}

// Segwit v0 signs p2wpkh inputs against the equivalent p2pkh script.
func p2pkhScriptCode(pubKey []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(btcutil.Hash160(pubKey)).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// SignInputs signs every input whose witness utxo pays to ownScript.
// Other inputs are left as they are. Each produced signature is
// validated before the PSET is re-serialized.
// Returns the updated PSET and the indexes of the inputs it signed.
func SignInputs(psetBase64 string, ownScript []byte, privKey *btcec.PrivateKey) (string, []int, error) {
	if privKey == nil {
		return "", nil, wrapf(ErrInvalidSignature, "no private key")
	}
	p, err := decodePset(psetBase64)
	if err != nil {
		return "", nil, err
	}
	updater, err := pset.NewUpdater(p)
	if err != nil {
		return "", nil, wrapf(ErrInvalidPsbt, "%v", err)
	}

	pubKey := privKey.PubKey().SerializeCompressed()
	scriptCode, err := p2pkhScriptCode(pubKey)
	if err != nil {
		return "", nil, wrapf(ErrInvalidSignature, "%v", err)
	}

	signed := []int{}
	for i, in := range p.Inputs {
		if in.WitnessUtxo == nil || !bytes.Equal(in.WitnessUtxo.Script, ownScript) {
			continue
		}

		hash := p.UnsignedTx.HashForWitnessV0(i, scriptCode, in.WitnessUtxo.Value, txscript.SigHashAll)
		sig := ecdsa.Sign(privKey, hash[:])
		sigWithHashType := append(sig.Serialize(), byte(txscript.SigHashAll))

		if _, err := updater.Sign(i, sigWithHashType, pubKey, nil, nil); err != nil {
			return "", nil, wrapf(ErrInvalidSignature, "input %d: %v", i, err)
		}
		if err := ValidateInputSignatures(p, i); err != nil {
			return "", nil, err
		}
		signed = append(signed, i)
	}

	logger.WithFields(logger.Fields{
		"inputs": len(p.Inputs),
		"signed": signed,
	}).Debug("pset signed")

	out, err := p.ToBase64()
	if err != nil {
		return "", nil, wrapf(ErrInvalidPsbt, "%v", err)
	}
	return out, signed, nil
}

// ValidateInputSignatures checks that input i carries at least one partial
// signature and that every one of them verifies against its public key.
func ValidateInputSignatures(p *pset.Pset, i int) error {
	if i < 0 || i >= len(p.Inputs) {
		return wrapf(ErrInvalidSignature, "input %d out of range", i)
	}
	in := p.Inputs[i]
	if len(in.PartialSigs) == 0 {
		return wrapf(ErrInvalidSignature, "input %d is not signed", i)
	}
	if in.WitnessUtxo == nil {
		return wrapf(ErrInvalidSignature, "input %d has no witness utxo", i)
	}

	for _, partial := range in.PartialSigs {
		if !bytes.Equal(in.WitnessUtxo.Script, P2WPKHScript(partial.PubKey)) {
			return wrapf(ErrInvalidSignature, "input %d: pubkey does not match script", i)
		}
		pub, err := btcec.ParsePubKey(partial.PubKey)
		if err != nil {
			return wrapf(ErrInvalidSignature, "input %d: %v", i, err)
		}
		if len(partial.Signature) < 2 {
			return wrapf(ErrInvalidSignature, "input %d: signature too short", i)
		}
		der := partial.Signature[:len(partial.Signature)-1]
		hashType := txscript.SigHashType(partial.Signature[len(partial.Signature)-1])

		sig, err := ecdsa.ParseDERSignature(der)
		if err != nil {
			return wrapf(ErrInvalidSignature, "input %d: %v", i, err)
		}
		scriptCode, err := p2pkhScriptCode(partial.PubKey)
		if err != nil {
			return wrapf(ErrInvalidSignature, "input %d: %v", i, err)
		}
		hash := p.UnsignedTx.HashForWitnessV0(i, scriptCode, in.WitnessUtxo.Value, hashType)
		if !sig.Verify(hash[:], pub) {
			return wrapf(ErrInvalidSignature, "input %d: verification failed", i)
		}
	}
	return nil
}
