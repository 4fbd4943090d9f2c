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

// Package stakeseal implements the stake-weighted block sealing and
// verification algorithm: the stake modifier chain, difficulty retarget,
// boundary check and the four-conjunct verify-seal predicate.
package stakeseal

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/probechain/stakeseal/common"
	"github.com/probechain/stakeseal/core/types"
	"github.com/probechain/stakeseal/crypto"
	"github.com/probechain/stakeseal/crypto/bls"
	"github.com/probechain/stakeseal/params"
)

// BalanceReader supplies the minter balance a seal is weighted against.
// It is an external collaborator: the seal engine never touches account
// state directly.
type BalanceReader interface {
	Balance(addr common.Address, height uint64) *uint256.Int
}

var maxU256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Engine bundles the chain parameters and balance collaborator needed to
// verify and compute stake seals. It carries no mutable state and is safe
// for concurrent use.
type Engine struct {
	Params  params.ChainParams
	Balance BalanceReader
}

// NewEngine constructs an Engine over the given parameters and balance
// collaborator.
func NewEngine(p params.ChainParams, bal BalanceReader) *Engine {
	return &Engine{Params: p, Balance: bal}
}

// ChildStakeModifier computes stakeModifier(H) from the parent's stake
// modifier and H's own public key and stake signature:
// keccak(parentModifier ‖ publicKey ‖ stakeSignature).
func ChildStakeModifier(parentModifier common.Hash, publicKey bls.Public, stakeSig bls.Signature) common.Hash {
	return common.BytesToHash(crypto.Keccak256(parentModifier[:], publicKey[:], stakeSig[:]))
}

// StakeMessage computes keccak(parentModifier ‖ u256_be(timestamp)), the
// message a stake signature is over.
func StakeMessage(parentModifier common.Hash, timestamp *uint256.Int) common.Hash {
	tsBytes := timestamp.Bytes32()
	return common.BytesToHash(crypto.Keccak256(parentModifier[:], tsBytes[:]))
}

// Boundary computes (2^256 / difficulty) * balance, saturating at the u256
// maximum rather than wrapping. A zero (or missing) difficulty fails
// closed to the zero hash, since dividing by it has no defined boundary
// and a zero boundary can never be met.
func Boundary(difficulty, balance *uint256.Int) common.Hash {
	if difficulty == nil || difficulty.IsZero() {
		return common.Hash{}
	}
	quotient := new(big.Int).Div(new(big.Int).Lsh(big.NewInt(1), 256), difficulty.ToBig())
	product := new(big.Int).Mul(quotient, balance.ToBig())
	if product.Cmp(maxU256) > 0 {
		product = maxU256
	}
	return common.BigToHash(product)
}

// CalculateDifficulty applies the Byzantium-style, bomb-free retarget:
//
//	adj    = max(1 - (timestamp - parent.timestamp) / 9, -99)
//	target = parent.difficulty + parent.difficulty/2048 * adj
//	difficulty = clamp(target, minimumDifficulty, 2^256-1)
//
// Timestamp subtraction is signed and division truncates toward zero, both
// requiring the wider big.Int rather than a u256 intermediate. number is the
// height of the block whose difficulty is computed. Requesting the
// difficulty of block 0 is an error: genesis has none to retarget from.
func (e *Engine) CalculateDifficulty(number uint64, parentDifficulty, parentTimestamp, timestamp *uint256.Int) (*uint256.Int, error) {
	if number == 0 {
		return nil, &GenesisBlockCannotBeCalculatedError{}
	}

	bigTimestamp := timestamp.ToBig()
	bigParentTimestamp := parentTimestamp.ToBig()
	elapsed := new(big.Int).Sub(bigTimestamp, bigParentTimestamp)

	nine := big.NewInt(9)
	quotient := new(big.Int).Quo(elapsed, nine) // truncates toward zero
	adj := new(big.Int).Sub(big.NewInt(1), quotient)

	negNinetyNine := big.NewInt(-99)
	if adj.Cmp(negNinetyNine) < 0 {
		adj = negNinetyNine
	}

	bigParentDifficulty := parentDifficulty.ToBig()
	step := new(big.Int).Div(bigParentDifficulty, big.NewInt(2048))
	delta := new(big.Int).Mul(step, adj)
	target := new(big.Int).Add(bigParentDifficulty, delta)

	minDiff := new(big.Int).SetUint64(e.Params.MinimumDifficulty)
	if target.Cmp(minDiff) < 0 {
		target = minDiff
	}
	if target.Cmp(maxU256) > 0 {
		target = maxU256
	}
	if target.Sign() < 0 {
		target = minDiff
	}

	result, overflow := uint256.FromBig(target)
	if overflow {
		return nil, &InvalidStateError{What: "retarget produced a value wider than u256"}
	}
	return result, nil
}

// VerifySeal checks the four-conjunct seal predicate against parent P for
// candidate H. It does not perform the envelope checks (difficulty
// magnitude, gas-limit bounds, extra-data size) — those live in Verify.
func (e *Engine) VerifySeal(h, parent *types.Header) error {
	sigHash := common.BytesToHash(crypto.Keccak256(h.StakeSig[:]))
	if h.Number != parent.Number+1 {
		return &InvalidBlockNonceError{Hash: sigHash, Difficulty: h.Difficulty}
	}

	minterAddr := ToAddress(h.PublicKey)
	balance := e.Balance.Balance(minterAddr, h.Number-1)
	boundary := Boundary(h.Difficulty, balance)
	if !sigHash.LessOrEqual(boundary) {
		return &InvalidBlockNonceError{Hash: sigHash, Difficulty: h.Difficulty}
	}

	expectedModifier := ChildStakeModifier(parent.StakeModifier, h.PublicKey, h.StakeSig)
	if expectedModifier != h.StakeModifier {
		return &InvalidBlockNonceError{Hash: sigHash, Difficulty: h.Difficulty}
	}

	dst := []byte(e.Params.BLSDomain)
	stakeMsg := StakeMessage(parent.StakeModifier, h.Timestamp)
	if !bls.Verify(dst, h.PublicKey, h.StakeSig, stakeMsg) {
		return &InvalidBlockNonceError{Hash: sigHash, Difficulty: h.Difficulty}
	}
	if !bls.Verify(dst, h.PublicKey, h.BlockSig, h.HashWithoutSeal()) {
		return &InvalidBlockNonceError{Hash: sigHash, Difficulty: h.Difficulty}
	}
	return nil
}

// ToAddress derives the minter address a BLS public key's stake balance is
// tracked under, the same right160(keccak(encodedKey)) rule crypto.ToAddress
// applies to secp256k1 keys.
func ToAddress(pub bls.Public) common.Address {
	return common.BytesToAddress(crypto.Keccak256(pub[:])[12:])
}

// Verify runs the envelope checks and, when seal is true, the seal
// predicate, in the fixed order the invariants must be checked: minimum
// difficulty, absolute gas-limit bounds, extra-data size, the retarget
// match, the gas-limit-vs-parent envelope, then the seal predicate.
func (e *Engine) Verify(h, parent *types.Header, seal bool) error {
	if h.Difficulty.LtUint64(e.Params.MinimumDifficulty) {
		return &InvalidDifficultyError{Expected: uint256.NewInt(e.Params.MinimumDifficulty), Got: h.Difficulty}
	}
	if h.GasLimit.LtUint64(e.Params.MinGasLimit) || h.GasLimit.GtUint64(e.Params.MaxGasLimit) {
		return &InvalidGasLimitError{Min: e.Params.MinGasLimit, Got: h.GasLimit.Uint64(), Max: e.Params.MaxGasLimit}
	}
	if uint64(len(h.Extra)) > e.Params.MaximumExtraDataSize {
		return &ExtraDataTooBigError{Max: e.Params.MaximumExtraDataSize, Got: uint64(len(h.Extra))}
	}

	expectedDifficulty, err := e.CalculateDifficulty(h.Number, parent.Difficulty, parent.Timestamp, h.Timestamp)
	if err != nil {
		return err
	}
	if !expectedDifficulty.Eq(h.Difficulty) {
		return &InvalidDifficultyError{Expected: expectedDifficulty, Got: h.Difficulty}
	}

	if err := e.verifyGasLimitEnvelope(h, parent); err != nil {
		return err
	}

	if seal {
		return e.VerifySeal(h, parent)
	}
	return nil
}

func (e *Engine) verifyGasLimitEnvelope(h, parent *types.Header) error {
	d := e.Params.GasLimitBoundDivisor
	g := parent.GasLimit.Uint64()
	step := g / d

	lowerBound := g - step + 1
	if e.Params.MinGasLimit > lowerBound {
		lowerBound = e.Params.MinGasLimit
	}
	upperBound := g + step - 1
	if e.Params.MaxGasLimit < upperBound {
		upperBound = e.Params.MaxGasLimit
	}

	got := h.GasLimit.Uint64()
	if got < lowerBound || got > upperBound {
		return &InvalidGasLimitError{Min: lowerBound, Got: got, Max: upperBound}
	}
	return nil
}

// ChildGasLimit computes the next block's gas limit from its parent,
// converging toward floor with mild elasticity toward utilization.
func (e *Engine) ChildGasLimit(parent *types.Header, floor uint64) uint64 {
	d := e.Params.GasLimitBoundDivisor
	g := parent.GasLimit.Uint64()

	if g < floor {
		candidate := g + g/d - 1
		if candidate > floor {
			return floor
		}
		return candidate
	}

	used := parent.GasUsed.Uint64()
	elasticity := (used * 6 / 5) / d
	candidate := g - g/d + 1 + elasticity
	if candidate < floor {
		return floor
	}
	return candidate
}

// CheckTransaction runs the transaction pre-flight checks for tx against
// header h with running gas usage used. requireSignatureBinding gates the
// chain-ID check and requireIntrinsicGas gates the intrinsic-gas floor
// check. auth is nil when the caller doesn't need account-signature
// authentication (e.g. it already happened upstream); otherwise its
// Authenticate error, if any, is reported as an InvalidTransactionError.
func (e *Engine) CheckTransaction(tx Transaction, schedule GasSchedule, auth AccountAuthenticator, h *types.Header, used uint64, requireSignatureBinding, requireIntrinsicGas bool) error {
	if requireSignatureBinding && tx.ChainID() != e.Params.ChainID {
		return &InvalidTransactionError{Reason: "chain id does not match"}
	}
	if auth != nil {
		if err := auth.Authenticate(tx.SignerPublicKey(), tx.Signature(), tx.SigningHash()); err != nil {
			return &InvalidTransactionError{Reason: "account signature: " + err.Error()}
		}
	}
	if requireIntrinsicGas {
		intrinsic := schedule.IntrinsicGas(h.Number, tx)
		if intrinsic > tx.Gas() {
			return &OutOfGasIntrinsicError{Intrinsic: intrinsic, Got: tx.Gas()}
		}
	}
	limit := h.GasLimit.Uint64()
	if used+tx.Gas() > limit {
		return &BlockGasLimitReachedError{Used: used, GasLimit: limit, TxGas: tx.Gas()}
	}
	return nil
}
