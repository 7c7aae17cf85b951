package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/TEENet-io/liquid-wallet/cmd"
	"github.com/TEENet-io/liquid-wallet/logconfig"
)

func main() {
	v := viper.New()
	if err := cmd.InitViper(v); err != nil {
		fmt.Println(err)
		return
	}

	// Make the configuration
	wuc, err := cmd.LoadWalletUserConfig(v)
	if err != nil {
		fmt.Printf("Error loading wallet server configuration: %s\n", err)
		return
	}
	if err := logconfig.Setup(logconfig.Options{Level: wuc.LogLevel, JSON: true}); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("Starting wallet server... press Ctrl+C to kill the server")
	// Start server and block.
	if err := cmd.StartServerAndWait(wuc); err != nil {
		fmt.Printf("Wallet server stopped: %s\n", err)
	}
}
