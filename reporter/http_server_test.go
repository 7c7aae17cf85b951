package reporter

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/liquid-wallet/lqman/explorer"
	"github.com/TEENet-io/liquid-wallet/lqman/netcfg"
	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
	"github.com/TEENet-io/liquid-wallet/wallet"
)

const regtestAsset = "5ac9f65c0efcc4775e0baec4ec03abdde22473cd3cf33c0419ca290e0751b225"

type fakeSource struct {
	utxos []utxo.UnspentOutput
	err   error
}

func (f *fakeSource) FetchUtxos(ctx context.Context, address string) ([]utxo.UnspentOutput, error) {
	return f.utxos, f.err
}

func funding() []utxo.UnspentOutput {
	return []utxo.UnspentOutput{
		{TxID: strings.Repeat("11", 32), Vout: 0, Asset: regtestAsset, Value: 100000},
		{TxID: strings.Repeat("22", 32), Vout: 1, Asset: regtestAsset, Value: 50000},
	}
}

// Start the reporter behind httptest and point a reader at it.
func startReporter(t *testing.T, source UtxoSource, signer *wallet.Wallet) *HttpReader {
	gin.SetMode(gin.TestMode)
	h := NewHttpReporter("127.0.0.1", "0", netcfg.Regtest, source, signer)
	srv := httptest.NewServer(h.SetupRouter())
	t.Cleanup(srv.Close)

	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	return NewHttpReader(host, port)
}

func TestHello(t *testing.T) {
	hr := startReporter(t, &fakeSource{}, nil)
	msg, err := hr.GetHello()
	require.NoError(t, err)
	assert.Equal(t, "world", msg)
}

func TestUtxosAndBalances(t *testing.T) {
	w, err := wallet.FromRandom(netcfg.Regtest)
	require.NoError(t, err)
	hr := startReporter(t, &fakeSource{utxos: funding()}, nil)

	utxos, err := hr.GetUtxos(w.Address)
	require.NoError(t, err)
	assert.Equal(t, funding(), utxos)

	balances, err := hr.GetBalances(w.Address)
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{regtestAsset: 150000}, balances)

	_, err = hr.GetUtxos("not-an-address")
	assert.ErrorContains(t, err, "400")
}

func TestExplorerFailureIsBadGateway(t *testing.T) {
	w, err := wallet.FromRandom(netcfg.Regtest)
	require.NoError(t, err)
	hr := startReporter(t, &fakeSource{err: explorer.ErrRequestFailed}, nil)

	_, err = hr.GetBalances(w.Address)
	assert.ErrorContains(t, err, "502")
}

func TestTxFlow(t *testing.T) {
	w, err := wallet.FromRandom(netcfg.Regtest)
	require.NoError(t, err)
	hr := startReporter(t, &fakeSource{utxos: funding()}, w)

	ptx, err := hr.CreateTx()
	require.NoError(t, err)

	ptx, err = hr.UpdateTx(UpdateRequest{
		Pset:         ptx,
		InputAmount:  120000,
		OutputAmount: 120000,
		InputAsset:   regtestAsset,
		OutputAsset:  regtestAsset,
	})
	require.NoError(t, err)

	// not signed yet
	_, err = hr.ToHex(ptx)
	assert.ErrorContains(t, err, "400")

	signed, err := hr.SignTx(ptx)
	require.NoError(t, err)

	txHex, err := hr.ToHex(signed)
	require.NoError(t, err)
	assert.NotEmpty(t, txHex)
}

func TestUpdateErrors(t *testing.T) {
	w, err := wallet.FromRandom(netcfg.Regtest)
	require.NoError(t, err)
	hr := startReporter(t, &fakeSource{utxos: funding()}, nil)

	ptx, err := hr.CreateTx()
	require.NoError(t, err)

	_, err = hr.UpdateTx(UpdateRequest{
		Pset:         ptx,
		Address:      w.Address,
		InputAmount:  1000000,
		OutputAmount: 1,
		InputAsset:   regtestAsset,
		OutputAsset:  regtestAsset,
	})
	assert.ErrorContains(t, err, "422")

	// explicit utxos override the source
	_, err = hr.UpdateTx(UpdateRequest{
		Pset:         ptx,
		Address:      w.Address,
		InputAmount:  10,
		OutputAmount: 10,
		InputAsset:   regtestAsset,
		OutputAsset:  regtestAsset,
		Utxos:        []utxo.UnspentOutput{{TxID: strings.Repeat("33", 32), Asset: regtestAsset, Value: 10}},
	})
	assert.NoError(t, err)
}

func TestSignWithoutKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHttpReporter("127.0.0.1", "0", netcfg.Regtest, &fakeSource{}, nil)
	router := h.SetupRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, ROUTE_TX_SIGN, strings.NewReader(`{"pset":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, ROUTE_TX_HEX, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
