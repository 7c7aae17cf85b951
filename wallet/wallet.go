package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	logger "github.com/sirupsen/logrus"
	"github.com/vulpemventures/go-elements/network"
	"github.com/vulpemventures/go-elements/payment"

	"github.com/TEENet-io/liquid-wallet/lqman/assembler"
	"github.com/TEENet-io/liquid-wallet/lqman/netcfg"
)

type KeyMaterial struct {
	PrivateKey string // WIF, compressed
	PublicKey  string // hex, compressed
}

// Wallet is a WatchOnlyWallet that also owns the key of its address.
type Wallet struct {
	WatchOnlyWallet
	KeyMaterial

	privKey *btcec.PrivateKey
}

// FromWIF restores a wallet from a compressed WIF private key.
// The WIF version byte must match the network.
func FromWIF(wif string, name netcfg.Name) (*Wallet, error) {
	net, err := netcfg.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeypair, err)
	}
	decoded, err := btcutil.DecodeWIF(wif)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
	}
	if !decoded.IsForNet(netcfg.WIFParams(net)) {
		return nil, fmt.Errorf("%w: key is not for %s", ErrInvalidKeypair, net.Name)
	}
	if !decoded.CompressPubKey {
		return nil, fmt.Errorf("%w: uncompressed keys cannot own a segwit address", ErrInvalidKeypair)
	}

	w, err := newWallet(decoded.PrivKey, net, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
	}
	return w, nil
}

// FromRandom creates a wallet around a freshly generated key.
func FromRandom(name netcfg.Name) (*Wallet, error) {
	net, err := netcfg.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWalletCreationFailed, err)
	}
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWalletCreationFailed, err)
	}
	w, err := newWallet(priv, net, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWalletCreationFailed, err)
	}
	return w, nil
}

func newWallet(priv *btcec.PrivateKey, net *network.Network, name netcfg.Name) (*Wallet, error) {
	pub := priv.PubKey()

	address, err := payment.FromPublicKey(pub, net, nil).WitnessPubKeyHash()
	if err != nil {
		return nil, err
	}
	wif, err := btcutil.NewWIF(priv, netcfg.WIFParams(net), true)
	if err != nil {
		return nil, err
	}

	pubBytes := pub.SerializeCompressed()
	return &Wallet{
		WatchOnlyWallet: *newWatchOnly(name, net, address, assembler.P2WPKHScript(pubBytes)),
		KeyMaterial: KeyMaterial{
			PrivateKey: wif.String(),
			PublicKey:  hex.EncodeToString(pubBytes),
		},
		privKey: priv,
	}, nil
}

// Sign signs every input spending from this wallet's script and
// verifies each new signature. Inputs of other scripts are left alone.
func (w *Wallet) Sign(psetBase64 string) (string, error) {
	signed, idx, err := assembler.SignInputs(psetBase64, w.script, w.privKey)
	if err != nil {
		return "", err
	}
	logger.WithFields(logger.Fields{
		"address": w.Address,
		"inputs":  idx,
	}).Debug("wallet signed pset")
	return signed, nil
}

// CreateTx returns an empty PSET for the network (empty = default network).
func CreateTx(name netcfg.Name) (string, error) {
	if _, err := netcfg.Get(name); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWalletCreationFailed, err)
	}
	b64, err := assembler.NewPset()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWalletCreationFailed, err)
	}
	return b64, nil
}

// ToHex checks every input is signed, finalizes the PSET
// and returns the raw transaction, ready to broadcast.
func ToHex(psetBase64 string) (string, error) {
	return assembler.FinalizeAndExtract(psetBase64)
}
