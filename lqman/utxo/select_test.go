package utxo

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	assetA = "5ac9f65c0efcc4775e0baec4ec03abdde22473cd3cf33c0419ca290e0751b225"
	assetB = "6f0279e9ed041c3d710a9f57d0c02928416460c4b722ae3457a11eec381c526d"
)

func txid(b byte) string {
	return strings.Repeat(string("0123456789abcdef"[b%16]), 64)
}

func TestSelectCoversTarget(t *testing.T) {
	inputs := []UnspentOutput{
		{TxID: txid(1), Vout: 0, Asset: assetA, Value: 100000},
		{TxID: txid(2), Vout: 1, Asset: assetA, Value: 50000},
	}

	res, err := Select(inputs, 120000)
	require.NoError(t, err)
	assert.Len(t, res.Chosen, 2)
	assert.Equal(t, uint64(30000), res.Change)
	assert.Equal(t, uint64(150000), res.Total())
}

func TestSelectStopsAtPrefix(t *testing.T) {
	inputs := []UnspentOutput{
		{TxID: txid(1), Asset: assetA, Value: 70},
		{TxID: txid(2), Asset: assetA, Value: 30},
		{TxID: txid(3), Asset: assetA, Value: 500},
	}

	res, err := Select(inputs, 100)
	require.NoError(t, err)
	assert.Equal(t, inputs[:2], res.Chosen)
	assert.Equal(t, uint64(0), res.Change)
}

func TestSelectInsufficient(t *testing.T) {
	inputs := []UnspentOutput{
		{TxID: txid(1), Asset: assetA, Value: 50000},
	}

	res, err := Select(inputs, 120000)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))

	_, err = Select(nil, 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestSelectZeroTarget(t *testing.T) {
	res, err := Select(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Chosen)
	assert.Equal(t, uint64(0), res.Change)
}

func TestSelectInvariants(t *testing.T) {
	inputs := []UnspentOutput{}
	for i := 1; i <= 12; i++ {
		inputs = append(inputs, UnspentOutput{TxID: txid(byte(i)), Vout: uint32(i), Asset: assetA, Value: uint64(i * 1000)})
	}
	total := Sum(inputs)

	for target := uint64(0); target <= total+2000; target += 777 {
		res, err := Select(inputs, target)
		if total < target {
			assert.ErrorIs(t, err, ErrInsufficientFunds, "target %d", target)
			continue
		}
		require.NoError(t, err, "target %d", target)
		assert.GreaterOrEqual(t, res.Total(), target)
		assert.Equal(t, res.Total()-target, res.Change)

		// same input, same answer
		again, err := Select(inputs, target)
		require.NoError(t, err)
		assert.Equal(t, res, again)
	}
}

func TestSelectDoesNotAliasInput(t *testing.T) {
	inputs := []UnspentOutput{{TxID: txid(1), Asset: assetA, Value: 10}}
	res, err := Select(inputs, 5)
	require.NoError(t, err)
	res.Chosen[0].Value = 99
	assert.Equal(t, uint64(10), inputs[0].Value)
}

func TestFilterByAsset(t *testing.T) {
	inputs := []UnspentOutput{
		{TxID: txid(1), Asset: assetA, Value: 10},
		{TxID: txid(2), Asset: assetB, Value: 5},
		{TxID: txid(3), Asset: strings.ToUpper(assetA), Value: 7},
	}

	got := FilterByAsset(inputs, assetA)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(10), got[0].Value)
	assert.Equal(t, uint64(7), got[1].Value)

	assert.Empty(t, FilterByAsset(inputs, "00"))
}

func TestUnspentOutputHash(t *testing.T) {
	u := UnspentOutput{TxID: "00000000000000000000000000000000000000000000000000000000000000ff"}
	h, err := u.Hash()
	require.NoError(t, err)
	// internal order is reversed
	assert.Equal(t, byte(0xff), h[0])
	assert.Equal(t, u.TxID, h.String())

	bad := UnspentOutput{TxID: "abcd"}
	_, err = bad.Hash()
	assert.ErrorIs(t, err, ErrInvalidTxID)

	assert.Equal(t, u.TxID+":0", u.Outpoint())
}
