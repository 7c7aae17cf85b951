// This is a http type of reporter.
// It publishes the wallet operations and explorer data on http routes.

package reporter

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/liquid-wallet/lqman/explorer"
	"github.com/TEENet-io/liquid-wallet/lqman/netcfg"
	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
	"github.com/TEENet-io/liquid-wallet/wallet"
)

const (
	ROUTE_HELLO     = "/hello"
	ROUTE_UTXOS     = "/utxos"
	ROUTE_BALANCES  = "/balances"
	ROUTE_TX_CREATE = "/tx/create"
	ROUTE_TX_UPDATE = "/tx/update"
	ROUTE_TX_SIGN   = "/tx/sign"
	ROUTE_TX_HEX    = "/tx/hex"
)

// UtxoSource lists the unspent outputs of an address.
// *explorer.Client satisfies it.
type UtxoSource interface {
	FetchUtxos(ctx context.Context, address string) ([]utxo.UnspentOutput, error)
}

type HttpReporter struct {
	serverIP   string // listen ip
	serverPort string // listen port

	network netcfg.Name
	source  UtxoSource     // upstream data source
	signer  *wallet.Wallet // optional, enables /tx/sign
}

func NewHttpReporter(serverIP string, serverPort string, network netcfg.Name, source UtxoSource, signer *wallet.Wallet) *HttpReporter {
	return &HttpReporter{
		serverIP:   serverIP,
		serverPort: serverPort,
		network:    network,
		source:     source,
		signer:     signer,
	}
}

// PsetRequest carries a base64 PSET.
type PsetRequest struct {
	Pset string `json:"pset" binding:"required"`
}

// UpdateRequest mirrors WatchOnlyWallet.UpdateTx.
// Utxos may be omitted, then they are fetched for Address.
type UpdateRequest struct {
	Pset         string               `json:"pset" binding:"required"`
	Address      string               `json:"address"`
	InputAmount  uint64               `json:"input_amount"`
	OutputAmount uint64               `json:"output_amount"`
	InputAsset   string               `json:"input_asset" binding:"required"`
	OutputAsset  string               `json:"output_asset" binding:"required"`
	Utxos        []utxo.UnspentOutput `json:"utxos,omitempty"`
}

// Hook up routes & handlers
func (h *HttpReporter) SetupRouter() *gin.Engine {
	router := gin.Default()

	// Define routes & handlers
	router.GET(ROUTE_HELLO, Hello)
	router.GET(ROUTE_UTXOS, h.Utxos)
	router.GET(ROUTE_BALANCES, h.Balances)
	router.POST(ROUTE_TX_CREATE, h.CreateTx)
	router.POST(ROUTE_TX_UPDATE, h.UpdateTx)
	router.POST(ROUTE_TX_SIGN, h.SignTx)
	router.POST(ROUTE_TX_HEX, h.ToHex)

	return router
}

// Hook up router & ip:port
func (h *HttpReporter) Run() error {
	router := h.SetupRouter()
	address := h.serverIP + ":" + h.serverPort
	logger.WithField("address", address).Info("http reporter listening")
	return router.Run(address)
}

// Example route.
func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "world",
	})
}

// Map wallet and explorer errors to http status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, wallet.ErrInvalidPsbt),
		errors.Is(err, wallet.ErrInvalidAssetID),
		errors.Is(err, wallet.ErrInvalidAddressOrNetwork),
		errors.Is(err, wallet.ErrInvalidSignature),
		errors.Is(err, utxo.ErrInvalidTxID):
		return http.StatusBadRequest
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, explorer.ErrRequestFailed),
		errors.Is(err, explorer.ErrInvalidResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.WithFields(logger.Fields{
			"route": c.FullPath(),
			"err":   err,
		}).Error("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// The address must belong to the reporter's network.
func (h *HttpReporter) watch(address string) (*wallet.WatchOnlyWallet, error) {
	if address == "" && h.signer != nil {
		return &h.signer.WatchOnlyWallet, nil
	}
	return wallet.FromAddress(address, h.network)
}

func (h *HttpReporter) Utxos(c *gin.Context) {
	w, err := h.watch(c.Query("address"))
	if err != nil {
		fail(c, err)
		return
	}
	utxos, err := h.source.FetchUtxos(c.Request.Context(), w.Address)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": w.Address, "data": utxos})
}

func (h *HttpReporter) Balances(c *gin.Context) {
	w, err := h.watch(c.Query("address"))
	if err != nil {
		fail(c, err)
		return
	}
	utxos, err := h.source.FetchUtxos(c.Request.Context(), w.Address)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": w.Address, "data": explorer.AggregateBalances(utxos)})
}

func (h *HttpReporter) CreateTx(c *gin.Context) {
	b64, err := wallet.CreateTx(h.network)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pset": b64})
}

func (h *HttpReporter) UpdateTx(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.watch(req.Address)
	if err != nil {
		fail(c, err)
		return
	}

	candidates := req.Utxos
	if candidates == nil {
		candidates, err = h.source.FetchUtxos(c.Request.Context(), w.Address)
		if err != nil {
			fail(c, err)
			return
		}
	}

	b64, err := w.UpdateTx(req.Pset, candidates, req.InputAmount, req.OutputAmount, req.InputAsset, req.OutputAsset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pset": b64})
}

func (h *HttpReporter) SignTx(c *gin.Context) {
	if h.signer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no signing key configured"})
		return
	}
	var req PsetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b64, err := h.signer.Sign(req.Pset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pset": b64})
}

func (h *HttpReporter) ToHex(c *gin.Context) {
	var req PsetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txHex, err := wallet.ToHex(req.Pset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hex": txHex})
}
