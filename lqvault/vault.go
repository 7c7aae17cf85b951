package lqvault

import (
	"fmt"
	"strings"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
)

const (
	DefaultLockTimeout = 30 * time.Minute
)

// TreasureVault keeps track of the utxos of a single Liquid address
// and hands them out to transaction builders without double use.
type TreasureVault struct {
	Address     string           // the wallet holds the money
	lockTimeout time.Duration    // how long a chosen utxo stays locked
	backend     VaultUTXOStorage // the backend engine
	updateMu    sync.Mutex       // prevent concurrent updates
	now         func() time.Time
}

// NewTreasureVault uses any backend that implements VaultUTXOStorage.
// A zero lockTimeout means DefaultLockTimeout.
func NewTreasureVault(address string, backend VaultUTXOStorage, lockTimeout time.Duration) *TreasureVault {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &TreasureVault{
		Address:     address,
		lockTimeout: lockTimeout,
		backend:     backend,
		now:         time.Now,
	}
}

// AddUTXO adds a new UTXO to the vault.
// It returns ErrAlreadyExists if the outpoint is already known.
func (tv *TreasureVault) AddUTXO(u utxo.UnspentOutput, script []byte) error {
	tv.updateMu.Lock()
	defer tv.updateMu.Unlock()
	return tv.addUTXO(u, script)
}

func (tv *TreasureVault) addUTXO(u utxo.UnspentOutput, script []byte) error {
	// Don't duplicate insert!
	old, err := tv.backend.QueryByTxIDAndVout(u.TxID, u.Vout)
	if err != nil {
		return err
	}
	if old != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, u.Outpoint())
	}

	return tv.backend.InsertVaultUTXO(VaultUTXO{
		TxID:   u.TxID,
		Vout:   u.Vout,
		Asset:  strings.ToLower(u.Asset),
		Amount: u.Value,
		Script: script,
	})
}

// Sync reconciles the vault with a fresh explorer listing:
// new outpoints are added, stored ones missing from the listing are marked spent.
func (tv *TreasureVault) Sync(current []utxo.UnspentOutput, script []byte) (added int, spent int, err error) {
	tv.updateMu.Lock()
	defer tv.updateMu.Unlock()

	seen := make(map[string]struct{}, len(current))
	for _, u := range current {
		seen[u.Outpoint()] = struct{}{}
		old, err := tv.backend.QueryByTxIDAndVout(u.TxID, u.Vout)
		if err != nil {
			return added, spent, err
		}
		if old != nil {
			continue
		}
		if err := tv.addUTXO(u, script); err != nil {
			return added, spent, err
		}
		added++
	}

	stored, err := tv.backend.QueryAllUnspentUTXOs()
	if err != nil {
		return added, spent, err
	}
	for _, s := range stored {
		u := s.Unspent()
		if _, ok := seen[u.Outpoint()]; ok {
			continue
		}
		if err := tv.backend.SetSpent(s.TxID, s.Vout, true); err != nil {
			return added, spent, err
		}
		spent++
	}

	logger.WithFields(logger.Fields{
		"address": tv.Address,
		"added":   added,
		"spent":   spent,
	}).Debug("vault synced")
	return added, spent, nil
}

// ChooseAndLock selects usable utxos of asset that sum to at least amount
// and locks them until the lock timeout passes.
func (tv *TreasureVault) ChooseAndLock(asset string, amount uint64) ([]utxo.UnspentOutput, error) {
	// protection against concurrent updates
	tv.updateMu.Lock()
	defer tv.updateMu.Unlock()

	usable, err := tv.backend.QueryUsableByAsset(strings.ToLower(asset))
	if err != nil {
		return nil, err
	}
	candidates := make([]utxo.UnspentOutput, 0, len(usable))
	for i := range usable {
		candidates = append(candidates, usable[i].Unspent())
	}

	sel, err := utxo.Select(candidates, amount)
	if err != nil {
		return nil, err
	}

	timepoint := tv.now().Add(tv.lockTimeout).Unix()
	for _, u := range sel.Chosen {
		if err := tv.backend.SetLockup(u.TxID, u.Vout, true, timepoint); err != nil {
			return nil, err
		}
	}

	logger.WithFields(logger.Fields{
		"address": tv.Address,
		"asset":   asset,
		"amount":  amount,
		"locked":  len(sel.Chosen),
		"until":   timepoint,
	}).Debug("vault utxos locked")
	return sel.Chosen, nil
}

// ReleaseByExpire releases utxos that have passed their timeout.
func (tv *TreasureVault) ReleaseByExpire() (int, error) {
	tv.updateMu.Lock()
	defer tv.updateMu.Unlock()

	expired, err := tv.backend.QueryExpiredAndLockedUTXOs(tv.now().Unix())
	if err != nil {
		return 0, err
	}
	for _, u := range expired {
		if err := tv.backend.SetLockup(u.TxID, u.Vout, false, 0); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}

// ReleaseByCommand releases a utxo by its transaction ID and vout
func (tv *TreasureVault) ReleaseByCommand(txID string, vout uint32) error {
	tv.updateMu.Lock()
	defer tv.updateMu.Unlock()

	if _, err := tv.find(txID, vout); err != nil {
		return err
	}
	return tv.backend.SetLockup(txID, vout, false, 0)
}

// MarkSpent flags a utxo as consumed by a broadcast transaction.
func (tv *TreasureVault) MarkSpent(txID string, vout uint32) error {
	tv.updateMu.Lock()
	defer tv.updateMu.Unlock()

	if _, err := tv.find(txID, vout); err != nil {
		return err
	}
	if err := tv.backend.SetSpent(txID, vout, true); err != nil {
		return err
	}
	return tv.backend.SetLockup(txID, vout, false, 0)
}

func (tv *TreasureVault) find(txID string, vout uint32) (*VaultUTXO, error) {
	u, err := tv.backend.QueryByTxIDAndVout(txID, vout)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %s:%d", ErrNotFound, txID, vout)
	}
	return u, nil
}

// Balances sums usable utxos per asset.
func (tv *TreasureVault) Balances() (map[string]uint64, error) {
	return tv.backend.SumByAsset()
}
