// Copyright 2024 The go-probeum Authors
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

package miner

import (
	"math/big"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/probechain/stakeseal/common"
	"github.com/probechain/stakeseal/consensus/stakeseal"
	"github.com/probechain/stakeseal/core/types"
	"github.com/probechain/stakeseal/crypto/bls"
	"github.com/probechain/stakeseal/params"
)

type constantBalance struct{ bal *uint256.Int }

func (c constantBalance) Balance(common.Address, uint64) *uint256.Int { return c.bal }

func TestSealerWinsAndDropsConcurrentRequest(t *testing.T) {
	hugeBalance, _ := uint256.FromBig(new(big.Int).Lsh(big.NewInt(1), 240))
	p := params.MainnetChainParams
	p.MinimumDifficulty = 1
	engine := stakeseal.NewEngine(p, constantBalance{bal: hugeBalance})

	secret, err := bls.GenerateSecret()
	require.NoError(t, err)
	pub, err := bls.ToPublic(secret)
	require.NoError(t, err)

	parent := &types.Header{
		Number:     5,
		Difficulty: uint256.NewInt(1),
		Timestamp:  uint256.NewInt(uint64(time.Now().Unix()) - 10),
		GasLimit:   uint256.NewInt(8_000_000),
		GasUsed:    uint256.NewInt(0),
	}
	candidate := &types.Header{Number: 6, GasLimit: uint256.NewInt(8_000_000), GasUsed: uint256.NewInt(0)}

	sealer := NewSealer(engine, []KeyPair{{Secret: secret, Public: pub}}, nil)

	sealed := make(chan *types.Header, 1)
	sealer.GenerateSeal(candidate, parent, func(h *types.Header) { sealed <- h })
	sealer.GenerateSeal(candidate, parent, func(h *types.Header) { t.Fatal("second concurrent request must be dropped") })

	select {
	case h := <-sealed:
		require.NoError(t, engine.VerifySeal(h, parent))
	case <-time.After(2 * time.Second):
		t.Fatal("sealer did not emit within timeout")
	}
}

func TestSealerCancel(t *testing.T) {
	p := params.MainnetChainParams
	p.MinimumDifficulty = 1
	engine := stakeseal.NewEngine(p, constantBalance{bal: uint256.NewInt(0)})

	secret, err := bls.GenerateSecret()
	require.NoError(t, err)
	pub, err := bls.ToPublic(secret)
	require.NoError(t, err)

	parent := &types.Header{
		Number:     5,
		Difficulty: uint256.NewInt(1_000_000),
		Timestamp:  uint256.NewInt(uint64(time.Now().Unix()) + 5),
		GasLimit:   uint256.NewInt(8_000_000),
		GasUsed:    uint256.NewInt(0),
	}
	candidate := &types.Header{Number: 6, GasLimit: uint256.NewInt(8_000_000), GasUsed: uint256.NewInt(0)}

	sealer := NewSealer(engine, []KeyPair{{Secret: secret, Public: pub}}, nil)
	called := false
	sealer.GenerateSeal(candidate, parent, func(h *types.Header) { called = true })
	sealer.Cancel()

	require.False(t, called)
	require.Equal(t, Idle, sealer.State())
}
