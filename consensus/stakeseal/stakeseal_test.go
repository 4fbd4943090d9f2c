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

package stakeseal

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/probechain/stakeseal/common"
	"github.com/probechain/stakeseal/core/types"
	"github.com/probechain/stakeseal/crypto/bls"
	"github.com/probechain/stakeseal/params"
)

// constantBalance reports the same fixed balance for every address and
// height.
type constantBalance struct{ bal *uint256.Int }

func (c constantBalance) Balance(common.Address, uint64) *uint256.Int { return c.bal }

func testEngine(bal *uint256.Int) *Engine {
	p := params.MainnetChainParams
	p.MinimumDifficulty = 1
	return NewEngine(p, constantBalance{bal: bal})
}

func buildSealedChild(t *testing.T, e *Engine, parent *types.Header, secret bls.Secret, timestamp uint64) *types.Header {
	t.Helper()
	pub, err := bls.ToPublic(secret)
	require.NoError(t, err)

	child := parent.Copy()
	child.Number = parent.Number + 1
	child.Timestamp = uint256.NewInt(timestamp)
	diff, err := e.CalculateDifficulty(child.Number, parent.Difficulty, parent.Timestamp, child.Timestamp)
	require.NoError(t, err)
	child.Difficulty = diff
	child.Extra = nil

	dst := []byte(e.Params.BLSDomain)
	stakeMsg := StakeMessage(parent.StakeModifier, child.Timestamp)
	stakeSig, err := bls.Sign(dst, secret, stakeMsg)
	require.NoError(t, err)

	modifier := ChildStakeModifier(parent.StakeModifier, pub, stakeSig)
	child.SetSeal(modifier, pub, stakeSig, bls.Signature{})

	blockSig, err := bls.Sign(dst, secret, child.HashWithoutSeal())
	require.NoError(t, err)
	child.SetSeal(modifier, pub, stakeSig, blockSig)
	return child
}

func genesisHeader() *types.Header {
	return &types.Header{
		Number:      0,
		Difficulty:  uint256.NewInt(1_048_576),
		Timestamp:   uint256.NewInt(1_000_000),
		GasLimit:    uint256.NewInt(8_000_000),
		GasUsed:     uint256.NewInt(0),
		Extra:       nil,
	}
}

func TestGenesisSuccessorAcceptsThenRejectsMutation(t *testing.T) {
	hugeBalance, _ := uint256.FromBig(new(big.Int).Lsh(big.NewInt(1), 240))
	e := testEngine(hugeBalance)

	secret, err := bls.GenerateSecret()
	require.NoError(t, err)
	parent := genesisHeader()

	child := buildSealedChild(t, e, parent, secret, 1_000_010)
	require.NoError(t, e.Verify(child, parent, true))

	tampered := child.Copy()
	tampered.StakeSig[len(tampered.StakeSig)-1] ^= 0xff
	err = e.Verify(tampered, parent, true)
	require.Error(t, err)
	require.IsType(t, &InvalidBlockNonceError{}, err)
}

func TestRetargetFastBlock(t *testing.T) {
	e := testEngine(uint256.NewInt(1))
	parentDifficulty := uint256.NewInt(1_000_000)
	parentTimestamp := uint256.NewInt(100)
	timestamp := uint256.NewInt(101)

	got, err := e.CalculateDifficulty(1, parentDifficulty, parentTimestamp, timestamp)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_488), got.Uint64())
}

func TestRetargetSlowBlock(t *testing.T) {
	e := testEngine(uint256.NewInt(1))
	parentDifficulty := uint256.NewInt(1_000_000)
	parentTimestamp := uint256.NewInt(100)
	timestamp := uint256.NewInt(200)

	got, err := e.CalculateDifficulty(1, parentDifficulty, parentTimestamp, timestamp)
	require.NoError(t, err)
	require.Equal(t, uint64(995_120), got.Uint64())
}

func TestGasLimitEnvelope(t *testing.T) {
	e := testEngine(uint256.NewInt(1))
	parent := &types.Header{GasLimit: uint256.NewInt(8_000_000)}

	accept := &types.Header{GasLimit: uint256.NewInt(8_007_811)}
	require.NoError(t, e.verifyGasLimitEnvelope(accept, parent))

	reject := &types.Header{GasLimit: uint256.NewInt(8_007_813)}
	require.Error(t, e.verifyGasLimitEnvelope(reject, parent))
}

func TestCalculateDifficultyRejectsGenesis(t *testing.T) {
	e := testEngine(uint256.NewInt(1))
	_, err := e.CalculateDifficulty(0, uint256.NewInt(1), uint256.NewInt(0), uint256.NewInt(1))
	require.IsType(t, &GenesisBlockCannotBeCalculatedError{}, err)
}

func TestVerifySealRejectsBitFlips(t *testing.T) {
	hugeBalance, _ := uint256.FromBig(new(big.Int).Lsh(big.NewInt(1), 240))
	e := testEngine(hugeBalance)
	secret, err := bls.GenerateSecret()
	require.NoError(t, err)
	parent := genesisHeader()
	child := buildSealedChild(t, e, parent, secret, 1_000_010)
	require.NoError(t, e.VerifySeal(child, parent))

	cases := []func(*types.Header){
		func(h *types.Header) { h.StakeModifier[0] ^= 1 },
		func(h *types.Header) { h.StakeSig[0] ^= 1 },
		func(h *types.Header) { h.BlockSig[0] ^= 1 },
		func(h *types.Header) { h.PublicKey[0] ^= 1 },
	}
	for _, mutate := range cases {
		mutant := child.Copy()
		mutate(mutant)
		require.Error(t, e.VerifySeal(mutant, parent))
	}
}
