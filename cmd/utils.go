package cmd

import (
	"os"

	"github.com/TEENet-io/liquid-wallet/lqman/explorer"
	"github.com/TEENet-io/liquid-wallet/lqvault"
)

// FileExists checks if a file exists and is readable
func FileExists(filePath string) bool {
	file, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer file.Close()
	return true
}

// Shared Helper function. Create an explorer client.
func SetupExplorer(baseURL string) *explorer.Client {
	return explorer.NewClient(baseURL, explorer.DefaultTimeout)
}

// Shared Helper function. Open the sqlite vault of address.
func SetupVault(dbPath string, cfg *WalletUserConfig, address string) (*lqvault.TreasureVault, *lqvault.VaultSQLiteStorage, error) {
	storage, err := lqvault.NewVaultSQLiteStorage(dbPath, address)
	if err != nil {
		return nil, nil, err
	}
	return lqvault.NewTreasureVault(address, storage, cfg.LockTimeout), storage, nil
}
