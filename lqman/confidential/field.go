/*
Package confidential encodes the explicit (unblinded) form of the
confidential transaction fields carried by every Liquid output:
the asset tag, the value and the nonce.

Blinded assets and Pedersen value commitments are never produced here.
*/
package confidential

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/vulpemventures/go-elements/elementsutil"
)

const (
	AssetIDLength = 32

	// prefix byte of an explicit (unblinded) asset or value
	ExplicitPrefix = 0x01

	AssetFieldLength = 1 + AssetIDLength
	ValueFieldLength = 9
)

var (
	// ErrInvalidAssetID indicates the asset id is not 32 bytes.
	ErrInvalidAssetID = errors.New("confidential: asset id must be 32 bytes")

	// ErrInvalidField indicates a field that is not an explicit encoding.
	ErrInvalidField = errors.New("confidential: not an explicit field")
)

// Field holds the three confidential fields of an output in explicit form.
type Field struct {
	Asset []byte // 0x01 || asset id in internal (reversed) order
	Value []byte // 0x01 || amount big-endian
	Nonce []byte // single zero byte, no blinding nonce
}

// EncodeField encodes an asset id (display order) and an amount.
func EncodeField(assetID []byte, amount uint64) (*Field, error) {
	if len(assetID) != AssetIDLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidAssetID, len(assetID))
	}

	asset := make([]byte, 0, AssetFieldLength)
	asset = append(asset, ExplicitPrefix)
	asset = append(asset, reverse(assetID)...)

	value, err := elementsutil.ValueToBytes(amount)
	if err != nil {
		return nil, fmt.Errorf("confidential: encode value %d: %w", amount, err)
	}

	return &Field{
		Asset: asset,
		Value: value,
		Nonce: []byte{0x00},
	}, nil
}

// EncodeFieldHex is EncodeField for a hex asset id as shown by explorers.
func EncodeFieldHex(assetHex string, amount uint64) (*Field, error) {
	assetID, err := hex.DecodeString(assetHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not hex", ErrInvalidAssetID, assetHex)
	}
	return EncodeField(assetID, amount)
}

// DecodeAssetID recovers the display-order asset id from an asset field.
func DecodeAssetID(assetField []byte) ([]byte, error) {
	if len(assetField) != AssetFieldLength || assetField[0] != ExplicitPrefix {
		return nil, ErrInvalidField
	}
	return reverse(assetField[1:]), nil
}

// DecodeValue recovers the satoshi amount from an explicit value field.
func DecodeValue(valueField []byte) (uint64, error) {
	if len(valueField) != ValueFieldLength || valueField[0] != ExplicitPrefix {
		return 0, ErrInvalidField
	}
	var v uint64
	for _, b := range valueField[1:] {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

func reverse(buf []byte) []byte {
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[len(buf)-1-i] = b
	}
	return out
}
