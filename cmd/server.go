package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/liquid-wallet/reporter"
)

// NewReporter exposes the user's wallet over http.
func NewReporter(wu *WalletUser) *reporter.HttpReporter {
	cfg := wu.MyUserConfig
	return reporter.NewHttpReporter(cfg.ServerIP, cfg.ServerPort, cfg.Network, wu.Explorer, wu.Signer)
}

// Create, then start the reporter and wait.
// Press Ctrl-C to kill the server.
func StartServerAndWait(cfg *WalletUserConfig) error {
	wu, err := NewWalletUser(cfg)
	if err != nil {
		return err
	}
	defer wu.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up a signal channel to listen for Ctrl-C (SIGINT) or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if wu.Monitor != nil {
		go wu.Monitor.ScanLoop(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- NewReporter(wu).Run()
	}()

	logger.WithFields(logger.Fields{
		"address": wu.Address(),
		"network": cfg.Network,
		"signing": wu.Signer != nil,
	}).Info("wallet server started")

	select {
	case sig := <-sigCh:
		fmt.Printf("Received signal: %v, shutting down...\n", sig)
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
