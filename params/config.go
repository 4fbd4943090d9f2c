// Copyright 2015 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

// Package params holds the chain-wide constants the stake-seal engine
// verifies headers and transactions against.
package params

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// ChainParams bundles the constants a header or transaction is checked
// against. Validate rejects a zero divisor, inverted gas-limit bounds, a
// zero minimum difficulty and an empty BLS domain; the other fields are
// not checked.
type ChainParams struct {
	ChainID               uint64 `yaml:"chainId"`
	MinimumDifficulty     uint64 `yaml:"minimumDifficulty"`
	MinGasLimit           uint64 `yaml:"minGasLimit"`
	MaxGasLimit           uint64 `yaml:"maxGasLimit"`
	GasLimitBoundDivisor  uint64 `yaml:"gasLimitBoundDivisor"`
	MaximumExtraDataSize  uint64 `yaml:"maximumExtraDataSize"`
	// BLSDomain separates stake-signature and block-signature hash-to-curve
	// operations on this chain from every other chain's, so a signature
	// valid here cannot be replayed as valid on a fork or sibling network.
	BLSDomain string `yaml:"blsDomain"`
}

// MainnetChainParams are the parameters used when none are supplied
// explicitly; the divisor and floor values match the historical Byzantium
// gas-limit and difficulty-retarget constants.
var MainnetChainParams = ChainParams{
	ChainID:              1,
	MinimumDifficulty:    131072,
	MinGasLimit:          5000,
	MaxGasLimit:          0x7fffffffffffffff,
	GasLimitBoundDivisor: 1024,
	MaximumExtraDataSize: 32,
	BLSDomain:            "stakeseal-mainnet-v1",
}

// Validate checks that the parameters are internally consistent enough to
// be used by the seal engine.
func (p *ChainParams) Validate() error {
	if p.GasLimitBoundDivisor == 0 {
		return errors.New("params: gasLimitBoundDivisor must be non-zero")
	}
	if p.MinGasLimit > p.MaxGasLimit {
		return errors.New("params: minGasLimit exceeds maxGasLimit")
	}
	if p.MinimumDifficulty == 0 {
		return errors.New("params: minimumDifficulty must be non-zero")
	}
	if p.BLSDomain == "" {
		return errors.New("params: blsDomain must not be empty")
	}
	return nil
}

// Load reads a ChainParams from a YAML file at path.
func Load(path string) (*ChainParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "params: read config")
	}
	p := &ChainParams{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.Wrap(err, "params: parse config")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes p to path as YAML.
func Save(path string, p *ChainParams) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "params: marshal config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "params: write config")
}
