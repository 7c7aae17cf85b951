package assembler

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/go-elements/pset"

	"github.com/TEENet-io/liquid-wallet/lqman/confidential"
	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
)

const (
	regtestAsset = "5ac9f65c0efcc4775e0baec4ec03abdde22473cd3cf33c0419ca290e0751b225"
	otherAsset   = "25b251070e29ca19043cf33ccd7324e2ddab03ecc4ae0b5e77c4fc0e5cf6c95a"
)

var (
	txid1 = strings.Repeat("aa", 32)
	txid2 = strings.Repeat("bb", 32)
	txid3 = strings.Repeat("cc", 32)
)

func testKey(seed string) *btcec.PrivateKey {
	sum := sha256.Sum256([]byte(seed))
	priv, _ := btcec.PrivKeyFromBytes(sum[:])
	return priv
}

func testScript(seed string) []byte {
	return P2WPKHScript(testKey(seed).PubKey().SerializeCompressed())
}

func emptyPset(t *testing.T) string {
	b64, err := NewPset()
	require.NoError(t, err)
	return b64
}

func decode(t *testing.T, b64 string) *pset.Pset {
	p, err := pset.NewPsetFromBase64(b64)
	require.NoError(t, err)
	return p
}

func twoCandidates() []utxo.UnspentOutput {
	return []utxo.UnspentOutput{
		{TxID: txid1, Vout: 0, Asset: regtestAsset, Value: 100000},
		{TxID: txid2, Vout: 1, Asset: regtestAsset, Value: 50000},
	}
}

func TestNewPsetIsEmpty(t *testing.T) {
	p := decode(t, emptyPset(t))
	assert.Equal(t, 0, len(p.Inputs))
	assert.Equal(t, 0, len(p.Outputs))
	assert.Equal(t, 0, len(p.UnsignedTx.Inputs))
	assert.Equal(t, 0, len(p.UnsignedTx.Outputs))
}

func TestUpdateTxPaymentAndChange(t *testing.T) {
	script := testScript("alice")
	ass := NewAssembler(script)

	out, err := ass.UpdateTx(emptyPset(t), twoCandidates(), 120000, 120000, regtestAsset, regtestAsset)
	require.NoError(t, err)

	p := decode(t, out)
	require.Equal(t, 2, len(p.Inputs))
	require.Equal(t, 2, len(p.Outputs))

	// inputs reference the selected outpoints, in selection order
	h1, _ := chainhash.NewHashFromStr(txid1)
	h2, _ := chainhash.NewHashFromStr(txid2)
	assert.Equal(t, h1[:], p.UnsignedTx.Inputs[0].Hash)
	assert.Equal(t, uint32(0), p.UnsignedTx.Inputs[0].Index)
	assert.Equal(t, h2[:], p.UnsignedTx.Inputs[1].Hash)
	assert.Equal(t, uint32(1), p.UnsignedTx.Inputs[1].Index)

	// witness utxos carry the wallet script and the explicit fields
	for i, want := range []uint64{100000, 50000} {
		require.NotNil(t, p.Inputs[i].WitnessUtxo)
		assert.Equal(t, script, p.Inputs[i].WitnessUtxo.Script)
		v, err := confidential.DecodeValue(p.Inputs[i].WitnessUtxo.Value)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}

	payment := p.UnsignedTx.Outputs[0]
	v, err := confidential.DecodeValue(payment.Value)
	require.NoError(t, err)
	assert.Equal(t, uint64(120000), v)
	assert.Equal(t, script, payment.Script)
	asset, err := confidential.DecodeAssetID(payment.Asset)
	require.NoError(t, err)
	assert.Equal(t, regtestAsset, hex.EncodeToString(asset))

	change := p.UnsignedTx.Outputs[1]
	v, err = confidential.DecodeValue(change.Value)
	require.NoError(t, err)
	assert.Equal(t, uint64(30000), v)
}

func TestUpdateTxNoChangeOnExactMatch(t *testing.T) {
	ass := NewAssembler(testScript("alice"))
	out, err := ass.UpdateTx(emptyPset(t), twoCandidates(), 150000, 150000, regtestAsset, regtestAsset)
	require.NoError(t, err)

	p := decode(t, out)
	assert.Equal(t, 2, len(p.Inputs))
	assert.Equal(t, 1, len(p.Outputs))
}

func TestUpdateTxIsAppendOnly(t *testing.T) {
	ass := NewAssembler(testScript("alice"))

	first, err := ass.UpdateTx(emptyPset(t), twoCandidates(), 80000, 80000, regtestAsset, regtestAsset)
	require.NoError(t, err)
	p1 := decode(t, first)
	require.Equal(t, 1, len(p1.Inputs))
	require.Equal(t, 2, len(p1.Outputs))

	more := []utxo.UnspentOutput{{TxID: txid3, Vout: 4, Asset: otherAsset, Value: 700}}
	second, err := ass.UpdateTx(first, more, 500, 400, otherAsset, regtestAsset)
	require.NoError(t, err)
	p2 := decode(t, second)
	require.Equal(t, 2, len(p2.Inputs))
	require.Equal(t, 4, len(p2.Outputs))

	// earlier entries untouched
	assert.Equal(t, p1.UnsignedTx.Inputs[0].Hash, p2.UnsignedTx.Inputs[0].Hash)
	assert.Equal(t, p1.UnsignedTx.Outputs[0].Value, p2.UnsignedTx.Outputs[0].Value)
	assert.Equal(t, p1.UnsignedTx.Outputs[1].Value, p2.UnsignedTx.Outputs[1].Value)

	// only inputs of the requested asset are spent
	h3, _ := chainhash.NewHashFromStr(txid3)
	assert.Equal(t, h3[:], p2.UnsignedTx.Inputs[1].Hash)
}

// fakeBuilder records calls so failures can be checked for side effects.
type fakeBuilder struct {
	inputs  []InputEntry
	outputs []OutputEntry
}

func (f *fakeBuilder) AddInput(in InputEntry) error    { f.inputs = append(f.inputs, in); return nil }
func (f *fakeBuilder) AddOutput(out OutputEntry) error { f.outputs = append(f.outputs, out); return nil }
func (f *fakeBuilder) NumInputs() int                  { return len(f.inputs) }
func (f *fakeBuilder) NumOutputs() int                 { return len(f.outputs) }
func (f *fakeBuilder) ToBase64() (string, error)       { return "fake", nil }

func TestUpdateTxFailuresAppendNothing(t *testing.T) {
	fake := &fakeBuilder{}
	ass := &Assembler{
		Script: testScript("alice"),
		Decode: func(string) (UnsignedTxBuilder, error) { return fake, nil },
	}

	_, err := ass.UpdateTx("ignored", twoCandidates(), 200000, 200000, regtestAsset, regtestAsset)
	assert.ErrorIs(t, err, utxo.ErrInsufficientFunds)
	assert.Equal(t, 0, fake.NumInputs())
	assert.Equal(t, 0, fake.NumOutputs())

	_, err = ass.UpdateTx("ignored", twoCandidates(), 1000, 1000, regtestAsset, "abcd")
	assert.ErrorIs(t, err, confidential.ErrInvalidAssetID)
	assert.Equal(t, 0, fake.NumInputs())
	assert.Equal(t, 0, fake.NumOutputs())

	// candidates of another asset do not count
	_, err = ass.UpdateTx("ignored", twoCandidates(), 1000, 1000, otherAsset, otherAsset)
	assert.ErrorIs(t, err, utxo.ErrInsufficientFunds)
	assert.Equal(t, 0, fake.NumInputs())

	bad := []utxo.UnspentOutput{{TxID: "zz", Vout: 0, Asset: regtestAsset, Value: 5000}}
	_, err = ass.UpdateTx("ignored", bad, 1000, 1000, regtestAsset, regtestAsset)
	assert.ErrorIs(t, err, utxo.ErrInvalidTxID)
	assert.Equal(t, 0, fake.NumInputs())
}

func TestUpdateTxInvalidPset(t *testing.T) {
	ass := NewAssembler(testScript("alice"))
	_, err := ass.UpdateTx("not-a-pset", twoCandidates(), 1000, 1000, regtestAsset, regtestAsset)
	assert.ErrorIs(t, err, ErrInvalidPsbt)

	_, err = ass.UpdateTx("", twoCandidates(), 1000, 1000, regtestAsset, regtestAsset)
	assert.ErrorIs(t, err, ErrInvalidPsbt)
}
