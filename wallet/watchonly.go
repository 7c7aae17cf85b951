package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/vulpemventures/go-elements/network"

	"github.com/TEENet-io/liquid-wallet/lqman/assembler"
	"github.com/TEENet-io/liquid-wallet/lqman/netcfg"
	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
)

const (
	witnessVersion0    = 0
	witnessPubKeyHash  = 20
	p2wpkhScriptLength = 2 + witnessPubKeyHash
)

// WatchOnlyWallet knows a single P2WPKH address and can build
// transactions spending from it, but cannot sign.
type WatchOnlyWallet struct {
	NetworkName netcfg.Name
	Network     *network.Network
	Address     string
	Script      string // hex locking script of Address

	script []byte
}

// FromAddress creates a watch-only wallet for a native segwit v0
// pubkey-hash address of the given network (empty = default network).
func FromAddress(address string, name netcfg.Name) (*WatchOnlyWallet, error) {
	net, err := netcfg.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddressOrNetwork, err)
	}
	script, err := addressToScript(address, net)
	if err != nil {
		return nil, err
	}
	return newWatchOnly(name, net, address, script), nil
}

func newWatchOnly(name netcfg.Name, net *network.Network, address string, script []byte) *WatchOnlyWallet {
	if name == "" {
		name = netcfg.Default
	}
	return &WatchOnlyWallet{
		NetworkName: name,
		Network:     net,
		Address:     address,
		Script:      hex.EncodeToString(script),
		script:      script,
	}
}

// Decode a bech32 P2WPKH address and check it belongs to net.
func addressToScript(address string, net *network.Network) ([]byte, error) {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddressOrNetwork, err)
	}
	if hrp != net.Bech32 {
		return nil, fmt.Errorf("%w: prefix %q is not %s's %q", ErrInvalidAddressOrNetwork, hrp, net.Name, net.Bech32)
	}
	if len(data) < 1 || data[0] != witnessVersion0 {
		return nil, fmt.Errorf("%w: not a segwit v0 address", ErrInvalidAddressOrNetwork)
	}
	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddressOrNetwork, err)
	}
	if len(program) != witnessPubKeyHash {
		return nil, fmt.Errorf("%w: witness program is %d bytes, want %d", ErrInvalidAddressOrNetwork, len(program), witnessPubKeyHash)
	}

	script := make([]byte, 0, p2wpkhScriptLength)
	script = append(script, 0x00, witnessPubKeyHash)
	return append(script, program...), nil
}

// ScriptBytes returns a copy of the raw locking script.
func (w *WatchOnlyWallet) ScriptBytes() []byte {
	return append([]byte(nil), w.script...)
}

// PolicyAsset is the network's native asset, the one fees are paid in.
func (w *WatchOnlyWallet) PolicyAsset() string {
	return netcfg.PolicyAsset(w.Network)
}

// UpdateTx appends inputs of inputAsset chosen from candidates to cover
// inputAmount, a payment of outputAmount of outputAsset, and a change
// output when needed. All new inputs and outputs use this wallet's script.
func (w *WatchOnlyWallet) UpdateTx(
	psetBase64 string,
	candidates []utxo.UnspentOutput,
	inputAmount uint64,
	outputAmount uint64,
	inputAsset string,
	outputAsset string,
) (string, error) {
	return assembler.NewAssembler(w.script).UpdateTx(psetBase64, candidates, inputAmount, outputAmount, inputAsset, outputAsset)
}
