package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/viper"

	"github.com/TEENet-io/liquid-wallet/cmd"
	"github.com/TEENet-io/liquid-wallet/keystore"
	"github.com/TEENet-io/liquid-wallet/logconfig"
	"github.com/TEENet-io/liquid-wallet/lqman/netcfg"
	"github.com/TEENet-io/liquid-wallet/wallet"
)

func main() {
	v := viper.New()
	if err := cmd.InitViper(v); err != nil {
		fmt.Println(err)
		return
	}

	if len(os.Args) > 1 && os.Args[1] == "new" {
		newWallet(v)
		return
	}

	wuc, err := cmd.LoadWalletUserConfig(v)
	if err != nil {
		fmt.Printf("Error prepare wallet user configuration: %s\n", err)
		return
	}
	if err := logconfig.Setup(logconfig.Options{Level: wuc.LogLevel}); err != nil {
		fmt.Println(err)
		return
	}

	wu, err := cmd.NewWalletUser(wuc)
	if err != nil {
		fmt.Printf("Error creating wallet user: %s\n", err)
		return
	}
	defer wu.Close()

	fmt.Println(strings.Repeat("=", 30))
	fmt.Println("Welcome to the Liquid wallet command line tool.")
	fmt.Printf("Network: %s\n", wuc.Network)
	fmt.Printf("Your address: %s\n", wu.Address())
	if wu.Signer == nil {
		fmt.Println("Watch-only: no key configured")
	}

	// *** user interactive program ***

	// Create a cancelable context and signal handler for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handler to catch Ctrl-C.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		_captured := <-sig
		fmt.Printf("\nReceived interrupt signal, shutting down... %v\n", _captured)
		cancel()
		wu.Close()
		os.Exit(0)
	}()

	// gather user inputs
	scanner := bufio.NewScanner(os.Stdin)
	for {
		// Check if context is done (just in case)
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Print options
		fmt.Println("What to do:")
		fmt.Println("1) View balances")
		fmt.Println("2) View UTXOs")
		fmt.Println("3) Sync vault")
		fmt.Println("4) Build & sign a transaction")
		fmt.Println("5) Show key material")
		fmt.Print("Type option and press Enter: ")

		// Wait for input.
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())

		// Process user input.
		switch input {
		case "1":
			_balances, err := wu.GetBalances(ctx)
			if err != nil {
				fmt.Printf("Error getting balances: %s\n", err)
			} else {
				for asset, amount := range _balances {
					fmt.Printf("%s: %d\n", asset, amount)
				}
			}
		case "2":
			_utxos, err := wu.GetUtxos(ctx)
			if err != nil {
				fmt.Printf("Error getting UTXOs: %s\n", err)
			} else {
				for idx, _utxo := range _utxos {
					fmt.Printf("[%d]: %s, asset %s, %d satoshi\n", idx, _utxo.Outpoint(), _utxo.Asset, _utxo.Value)
				}
			}
		case "3":
			added, spent, err := wu.SyncVault(ctx)
			if err != nil {
				fmt.Printf("Error syncing vault: %s\n", err)
			} else if wu.Vault == nil {
				fmt.Println("No vault configured, set VAULT_DB_PATH")
			} else {
				fmt.Printf("Vault synced: %d new, %d spent\n", added, spent)
			}
		case "4":
			buildTx(ctx, wu, scanner)
		case "5":
			if wu.Signer == nil {
				fmt.Println("Watch-only wallet, no keys.")
			} else {
				fmt.Printf("Public key: %s\n", wu.Signer.PublicKey)
				fmt.Printf("Script: %s\n", wu.Signer.Script)
			}
		default:
			fmt.Println("Unknown option, try again.")
		}
		fmt.Println()
	}
}

func buildTx(ctx context.Context, wu *cmd.WalletUser, scanner *bufio.Scanner) {
	fmt.Printf("Enter asset id (empty = %s): ", wu.Watch.PolicyAsset())
	scanner.Scan()
	asset := strings.TrimSpace(scanner.Text())
	if asset == "" {
		asset = wu.Watch.PolicyAsset()
	}

	fmt.Print("Enter amount (in satoshis): ")
	scanner.Scan()
	amount, err := strconv.ParseUint(strings.TrimSpace(scanner.Text()), 10, 64)
	if err != nil {
		fmt.Printf("Invalid amount: %s\n", err)
		return
	}

	txHex, err := wu.BuildTx(ctx, asset, amount)
	if err != nil {
		fmt.Printf("Error building transaction: %s\n", err)
		return
	}
	fmt.Printf("Signed transaction:\n%s\n", txHex)
}

// Create a random wallet, print it, and store it encrypted when
// WALLET_KEYSTORE and WALLET_PASSWORD are set.
func newWallet(v *viper.Viper) {
	network := netcfg.Name(v.GetString(cmd.KEY_NETWORK))
	w, err := wallet.FromRandom(network)
	if err != nil {
		fmt.Printf("Error creating wallet: %s\n", err)
		return
	}
	fmt.Printf("Network: %s\n", w.NetworkName)
	fmt.Printf("Address: %s\n", w.Address)
	fmt.Printf("Public key: %s\n", w.PublicKey)

	path := v.GetString(cmd.KEY_WALLET_KEYSTORE)
	password := v.GetString(cmd.KEY_WALLET_PASSWORD)
	if path == "" || password == "" {
		fmt.Printf("Private key (WIF): %s\n", w.PrivateKey)
		return
	}
	if err := keystore.Save(filepath.Clean(path), string(w.NetworkName), w.Address, w.PrivateKey, password, keystore.DefaultParams); err != nil {
		fmt.Printf("Error saving keystore: %s\n", err)
		return
	}
	fmt.Printf("Key saved to %s\n", path)
}
