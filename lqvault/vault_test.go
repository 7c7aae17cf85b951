package lqvault

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
)

const (
	assetA = "5ac9f65c0efcc4775e0baec4ec03abdde22473cd3cf33c0419ca290e0751b225"
	assetB = "25b251070e29ca19043cf33ccd7324e2ddab03ecc4ae0b5e77c4fc0e5cf6c95a"
	addr   = "ert1qexampleaddress"
)

var script = []byte{0x00, 0x14, 1, 2, 3}

func txid(b string) string {
	return strings.Repeat(b, 32)
}

func newVault(t *testing.T) (*TreasureVault, *VaultSQLiteStorage) {
	dbPath := filepath.Join(t.TempDir(), "vault.db")
	storage, err := NewVaultSQLiteStorage(dbPath, addr)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return NewTreasureVault(addr, storage, time.Minute), storage
}

func seed() []utxo.UnspentOutput {
	return []utxo.UnspentOutput{
		{TxID: txid("01"), Vout: 0, Asset: assetA, Value: 100000},
		{TxID: txid("02"), Vout: 1, Asset: assetB, Value: 5},
		{TxID: txid("03"), Vout: 2, Asset: assetA, Value: 50000},
	}
}

func TestInvalidTableID(t *testing.T) {
	_, err := NewVaultSQLiteStorage(filepath.Join(t.TempDir(), "x.db"), "bad id;")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestAddUTXONoDuplicates(t *testing.T) {
	tv, storage := newVault(t)

	u := seed()[0]
	require.NoError(t, tv.AddUTXO(u, script))
	assert.ErrorIs(t, tv.AddUTXO(u, script), ErrAlreadyExists)

	stored, err := storage.QueryByTxIDAndVout(u.TxID, u.Vout)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, u.Value, stored.Amount)
	assert.Equal(t, script, stored.Script)
	assert.False(t, stored.Lockup)
	assert.False(t, stored.Spent)

	missing, err := storage.QueryByTxIDAndVout(txid("ff"), 9)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSync(t *testing.T) {
	tv, _ := newVault(t)

	added, spent, err := tv.Sync(seed(), script)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, 0, spent)

	// second listing: first utxo gone, one new
	next := append(seed()[1:], utxo.UnspentOutput{TxID: txid("04"), Vout: 0, Asset: assetA, Value: 7})
	added, spent, err = tv.Sync(next, script)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, spent)

	balances, err := tv.Balances()
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{assetA: 50007, assetB: 5}, balances)
}

func TestChooseAndLock(t *testing.T) {
	tv, storage := newVault(t)
	_, _, err := tv.Sync(seed(), script)
	require.NoError(t, err)

	chosen, err := tv.ChooseAndLock(assetA, 120000)
	require.NoError(t, err)
	require.Equal(t, 2, len(chosen))
	assert.Equal(t, txid("01"), chosen[0].TxID)
	assert.Equal(t, txid("03"), chosen[1].TxID)

	locked, err := storage.QueryByTxIDAndVout(txid("01"), 0)
	require.NoError(t, err)
	assert.True(t, locked.Lockup)
	assert.Greater(t, locked.Timeout, time.Now().Unix())

	// locked utxos are not handed out twice
	_, err = tv.ChooseAndLock(assetA, 1)
	assert.ErrorIs(t, err, utxo.ErrInsufficientFunds)

	balances, err := tv.Balances()
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{assetB: 5}, balances)
}

func TestReleaseByExpire(t *testing.T) {
	tv, _ := newVault(t)
	_, _, err := tv.Sync(seed(), script)
	require.NoError(t, err)

	_, err = tv.ChooseAndLock(assetA, 1)
	require.NoError(t, err)

	n, err := tv.ReleaseByExpire()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// jump past the lock timeout
	tv.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	n, err = tv.ReleaseByExpire()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	chosen, err := tv.ChooseAndLock(assetA, 1)
	require.NoError(t, err)
	assert.Equal(t, txid("01"), chosen[0].TxID)
}

func TestReleaseByCommandAndMarkSpent(t *testing.T) {
	tv, storage := newVault(t)
	_, _, err := tv.Sync(seed(), script)
	require.NoError(t, err)

	chosen, err := tv.ChooseAndLock(assetB, 5)
	require.NoError(t, err)
	require.Equal(t, 1, len(chosen))

	require.NoError(t, tv.ReleaseByCommand(chosen[0].TxID, chosen[0].Vout))
	u, err := storage.QueryByTxIDAndVout(chosen[0].TxID, chosen[0].Vout)
	require.NoError(t, err)
	assert.False(t, u.Lockup)
	assert.Equal(t, int64(0), u.Timeout)

	require.NoError(t, tv.MarkSpent(chosen[0].TxID, chosen[0].Vout))
	_, err = tv.ChooseAndLock(assetB, 1)
	assert.ErrorIs(t, err, utxo.ErrInsufficientFunds)

	assert.ErrorIs(t, tv.ReleaseByCommand(txid("ee"), 0), ErrNotFound)
	assert.ErrorIs(t, tv.MarkSpent(txid("ee"), 0), ErrNotFound)
}
