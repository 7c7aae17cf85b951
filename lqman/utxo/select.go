/*
This file contains filter/select operations on UTXO.
*/
package utxo

import (
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"
)

// FilterByAsset keeps the outputs of the wanted asset, preserving order.
func FilterByAsset(inputs []UnspentOutput, asset string) []UnspentOutput {
	r := []UnspentOutput{}
	for _, item := range inputs {
		if strings.EqualFold(item.Asset, asset) {
			r = append(r, item)
		}
	}
	return r
}

// Select chooses some UTXO(s) for future spending.
// Outputs are accumulated in the given order until the sum reaches target,
// so the chosen set is always a prefix of inputs.
// Candidates are expected to be of a single asset already.
func Select(inputs []UnspentOutput, target uint64) (*SelectionResult, error) {
	var sum uint64
	topIdx := 0
	for topIdx < len(inputs) && sum < target {
		sum += inputs[topIdx].Value
		topIdx++
	}
	if sum < target {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, sum, target)
	}

	chosen := make([]UnspentOutput, topIdx)
	copy(chosen, inputs[:topIdx])

	logger.WithFields(logger.Fields{
		"candidates": len(inputs),
		"chosen":     topIdx,
		"target":     target,
		"change":     sum - target,
	}).Debug("utxo selection")

	return &SelectionResult{Chosen: chosen, Change: sum - target}, nil
}
