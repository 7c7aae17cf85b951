// Loop over the explorer to keep a vault in step with the chain.
//
// Each scan lists the address' utxos, adds new ones to the vault,
// marks vanished ones spent and frees expired locks.

package lqsync

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
	"github.com/TEENet-io/liquid-wallet/lqvault"
)

const (
	SCAN_INTERVAL = 30 * time.Second // then we scan again
)

// UtxoSource lists the unspent outputs of an address.
type UtxoSource interface {
	FetchUtxos(ctx context.Context, address string) ([]utxo.UnspentOutput, error)
}

// ScanResult counts what one scan changed.
type ScanResult struct {
	Added    int
	Spent    int
	Released int
}

type Monitor struct {
	Address  string                 // address being watched
	Script   []byte                 // its locking script, stored with each utxo
	Source   UtxoSource             // explorer
	Vault    *lqvault.TreasureVault // vault to keep up to date
	Interval time.Duration
}

func NewMonitor(address string, script []byte, source UtxoSource, vault *lqvault.TreasureVault) *Monitor {
	return &Monitor{
		Address:  address,
		Script:   script,
		Source:   source,
		Vault:    vault,
		Interval: SCAN_INTERVAL,
	}
}

// Scan runs one round.
func (m *Monitor) Scan(ctx context.Context) (*ScanResult, error) {
	utxos, err := m.Source.FetchUtxos(ctx, m.Address)
	if err != nil {
		return nil, err
	}
	added, spent, err := m.Vault.Sync(utxos, m.Script)
	if err != nil {
		return nil, err
	}
	released, err := m.Vault.ReleaseByExpire()
	if err != nil {
		return nil, err
	}

	res := &ScanResult{Added: added, Spent: spent, Released: released}
	if added+spent+released > 0 {
		logger.WithFields(logger.Fields{
			"address":  m.Address,
			"added":    added,
			"spent":    spent,
			"released": released,
		}).Info("vault updated")
	}
	return res, nil
}

// ScanLoop scans every Interval until ctx is cancelled.
func (m *Monitor) ScanLoop(ctx context.Context) {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		if _, err := m.Scan(ctx); err != nil {
			logger.Warnf("vault ScanLoop error: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
