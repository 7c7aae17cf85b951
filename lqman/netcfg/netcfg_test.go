package netcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/go-elements/network"
)

func TestGetDefaultsToLiquid(t *testing.T) {
	net, err := Get("")
	require.NoError(t, err)
	assert.Equal(t, &network.Liquid, net)
}

func TestGetKnownNetworks(t *testing.T) {
	tests := []struct {
		name   Name
		bech32 string
	}{
		{Liquid, network.Liquid.Bech32},
		{Testnet, network.Testnet.Bech32},
		{Regtest, network.Regtest.Bech32},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			net, err := Get(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.bech32, net.Bech32)
		})
	}
	assert.Len(t, Names(), 3)
}

func TestGetUnknown(t *testing.T) {
	_, err := Get("mainnet")
	assert.ErrorIs(t, err, ErrUnknownNetwork)
}

func TestWIFParams(t *testing.T) {
	params := WIFParams(&network.Regtest)
	assert.Equal(t, network.Regtest.Wif, params.PrivateKeyID)
	assert.Equal(t, "5ac9f65c0efcc4775e0baec4ec03abdde22473cd3cf33c0419ca290e0751b225", PolicyAsset(&network.Regtest))
}
