// WalletUser presents an entity that
// 1) Holds user credentials (WIF, keystore) or just an address
// 2) Builds and signs txns spending from that address
// 3) Monitors user's status (utxos, balances) through the explorer

package cmd

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/liquid-wallet/keystore"
	"github.com/TEENet-io/liquid-wallet/lqman/explorer"
	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
	"github.com/TEENet-io/liquid-wallet/lqsync"
	"github.com/TEENet-io/liquid-wallet/lqvault"
	"github.com/TEENet-io/liquid-wallet/wallet"
)

var ErrWatchOnly = errors.New("cmd: watch-only wallet cannot sign")

type WalletUser struct {
	Explorer     *explorer.Client        // explorer client
	Watch        *wallet.WatchOnlyWallet // user's address & script
	Signer       *wallet.Wallet          // user's signer, nil when watch-only
	Vault        *lqvault.TreasureVault  // optional utxo vault
	Monitor      *lqsync.Monitor         // keeps Vault in step with the explorer
	MyUserConfig *WalletUserConfig       // contains a copy of user's config.
	storage      *lqvault.VaultSQLiteStorage
}

// Create a new wallet user.
// The wallet comes from the WIF, the keystore, or the address, in that order.
func NewWalletUser(cfg *WalletUserConfig) (*WalletUser, error) {
	wu := &WalletUser{
		Explorer:     SetupExplorer(cfg.ExplorerURL),
		MyUserConfig: cfg,
	}

	switch {
	case cfg.WIF != "":
		w, err := wallet.FromWIF(cfg.WIF, cfg.Network)
		if err != nil {
			logger.WithField("network", cfg.Network).Error("cannot create wallet from WIF")
			return nil, err
		}
		wu.Signer = w
	case cfg.KeystorePath != "":
		_, wif, err := keystore.Load(cfg.KeystorePath, cfg.KeystorePassword)
		if err != nil {
			logger.WithField("keystore", cfg.KeystorePath).Error("cannot open keystore")
			return nil, err
		}
		w, err := wallet.FromWIF(wif, cfg.Network)
		if err != nil {
			return nil, err
		}
		wu.Signer = w
	default:
		w, err := wallet.FromAddress(cfg.Address, cfg.Network)
		if err != nil {
			logger.WithField("address", cfg.Address).Error("cannot create watch-only wallet")
			return nil, err
		}
		wu.Watch = w
	}
	if wu.Signer != nil {
		wu.Watch = &wu.Signer.WatchOnlyWallet
	}

	// A declared address must match the key.
	if cfg.Address != "" && cfg.Address != wu.Watch.Address {
		logger.WithFields(logger.Fields{
			"declared_addr": cfg.Address,
			"actual_addr":   wu.Watch.Address,
		}).Error("user address mismatch from provided and decoded")
		return nil, wallet.ErrInvalidAddressOrNetwork
	}

	if cfg.VaultDBPath != "" {
		vault, storage, err := SetupVault(cfg.VaultDBPath, cfg, wu.Watch.Address)
		if err != nil {
			return nil, err
		}
		wu.Vault = vault
		wu.storage = storage
		wu.Monitor = lqsync.NewMonitor(wu.Watch.Address, wu.Watch.ScriptBytes(), wu.Explorer, vault)
	}
	return wu, nil
}

func (wu *WalletUser) Close() {
	if wu.storage != nil {
		wu.storage.Close() // release db connection.
	}
}

func (wu *WalletUser) Address() string {
	return wu.Watch.Address
}

func (wu *WalletUser) GetUtxos(ctx context.Context) ([]utxo.UnspentOutput, error) {
	utxos, err := wu.Explorer.FetchUtxos(ctx, wu.Address())
	if err != nil {
		logger.WithFields(logger.Fields{
			"user_address": wu.Address(),
			"error":        err,
		}).Error("cannot retrieve utxos from explorer")
		return nil, err
	}
	if len(utxos) == 0 {
		logger.WithField("user_address", wu.Address()).Info("no utxos to spend, send some funds to this address first")
	}
	return utxos, nil
}

func (wu *WalletUser) GetBalances(ctx context.Context) (map[string]uint64, error) {
	utxos, err := wu.GetUtxos(ctx)
	if err != nil {
		return nil, err
	}
	return explorer.AggregateBalances(utxos), nil
}

// SyncVault refreshes the vault from the explorer and frees expired locks.
func (wu *WalletUser) SyncVault(ctx context.Context) (int, int, error) {
	if wu.Monitor == nil {
		return 0, 0, nil
	}
	res, err := wu.Monitor.Scan(ctx)
	if err != nil {
		logger.WithFields(logger.Fields{
			"user_address": wu.Address(),
			"error":        err,
		}).Error("cannot sync vault")
		return 0, 0, err
	}
	return res.Added, res.Spent, nil
}

// Candidates to spend. With a vault they are chosen and locked there,
// the returned release func undoes the lock.
func (wu *WalletUser) candidates(ctx context.Context, asset string, amount uint64) ([]utxo.UnspentOutput, func(), error) {
	if wu.Vault == nil {
		utxos, err := wu.GetUtxos(ctx)
		return utxos, func() {}, err
	}

	if _, _, err := wu.SyncVault(ctx); err != nil {
		return nil, nil, err
	}
	chosen, err := wu.Vault.ChooseAndLock(asset, amount)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		for _, u := range chosen {
			if err := wu.Vault.ReleaseByCommand(u.TxID, u.Vout); err != nil {
				logger.WithField("outpoint", u.Outpoint()).Error("cannot release vault lock")
			}
		}
	}
	return chosen, release, nil
}

// BuildTx creates a PSET spending amount of asset from the user's
// address back to it (payment + change), signs it and returns the raw hex.
func (wu *WalletUser) BuildTx(ctx context.Context, asset string, amount uint64) (string, error) {
	if wu.Signer == nil {
		return "", ErrWatchOnly
	}

	candidates, release, err := wu.candidates(ctx, asset, amount)
	if err != nil {
		logger.WithField("error", err).Error("cannot select enough utxos")
		return "", err
	}

	txHex, err := wu.buildTx(candidates, asset, amount)
	if err != nil {
		release()
		logger.WithField("error", err).Error("cannot create Tx")
		return "", err
	}
	return txHex, nil
}

func (wu *WalletUser) buildTx(candidates []utxo.UnspentOutput, asset string, amount uint64) (string, error) {
	ptx, err := wallet.CreateTx(wu.MyUserConfig.Network)
	if err != nil {
		return "", err
	}
	ptx, err = wu.Signer.UpdateTx(ptx, candidates, amount, amount, asset, asset)
	if err != nil {
		return "", err
	}
	ptx, err = wu.Signer.Sign(ptx)
	if err != nil {
		return "", err
	}
	return wallet.ToHex(ptx)
}
