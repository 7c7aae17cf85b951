// Package netcfg is the closed set of Liquid networks the wallet knows.
package netcfg

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/vulpemventures/go-elements/network"
)

// Name selects a network parameter table.
type Name string

const (
	Liquid  Name = "liquid"
	Testnet Name = "testnet"
	Regtest Name = "regtest"

	Default = Liquid
)

// ErrUnknownNetwork indicates a name outside the supported set.
var ErrUnknownNetwork = errors.New("netcfg: unknown network")

var predefined = map[Name]*network.Network{
	Liquid:  &network.Liquid,
	Testnet: &network.Testnet,
	Regtest: &network.Regtest,
}

// Get returns the parameters for name. An empty name selects Default.
func Get(name Name) (*network.Network, error) {
	if name == "" {
		name = Default
	}
	if net, ok := predefined[name]; ok {
		return net, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
}

// Names lists the supported networks.
func Names() []Name {
	return []Name{Liquid, Testnet, Regtest}
}

// WIFParams exposes the network's WIF version byte in the form btcutil
// expects, so WIF strings can be checked and produced per network.
func WIFParams(net *network.Network) *chaincfg.Params {
	return &chaincfg.Params{
		Name:         net.Name,
		PrivateKeyID: net.Wif,
	}
}

// PolicyAsset returns the network's native asset id (display hex).
func PolicyAsset(net *network.Network) string {
	return net.AssetID
}
