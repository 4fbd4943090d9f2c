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
	"fmt"

	"github.com/holiman/uint256"

	"github.com/probechain/stakeseal/common"
)

// InvalidDifficultyError reports a difficulty that does not match the
// retarget formula's expected value.
type InvalidDifficultyError struct {
	Expected, Got *uint256.Int
}

func (e *InvalidDifficultyError) Error() string {
	return fmt.Sprintf("invalid difficulty: expected %s, got %s", e.Expected, e.Got)
}

// InvalidGasLimitError reports a gas limit outside its allowed envelope.
type InvalidGasLimitError struct {
	Min, Got, Max uint64
}

func (e *InvalidGasLimitError) Error() string {
	return fmt.Sprintf("invalid gas limit %d: want [%d, %d]", e.Got, e.Min, e.Max)
}

// ExtraDataTooBigError reports extra-data exceeding the chain's bound.
type ExtraDataTooBigError struct {
	Max, Got uint64
}

func (e *ExtraDataTooBigError) Error() string {
	return fmt.Sprintf("extra-data too big: %d bytes exceeds max %d", e.Got, e.Max)
}

// InvalidBlockNonceError reports a header that failed the seal predicate:
// its difficulty did not certify a genuine winning stake signature.
type InvalidBlockNonceError struct {
	Hash       common.Hash
	Difficulty *uint256.Int
}

func (e *InvalidBlockNonceError) Error() string {
	return fmt.Sprintf("invalid seal: hash %s does not satisfy difficulty %s", e.Hash, e.Difficulty)
}

// InvalidTransactionError wraps a transaction pre-flight failure.
type InvalidTransactionError struct {
	Reason string
}

func (e *InvalidTransactionError) Error() string { return "invalid transaction: " + e.Reason }

// OutOfGasIntrinsicError reports a transaction whose gas limit is below its
// own intrinsic cost.
type OutOfGasIntrinsicError struct {
	Intrinsic, Got uint64
}

func (e *OutOfGasIntrinsicError) Error() string {
	return fmt.Sprintf("intrinsic gas %d exceeds transaction gas limit %d", e.Intrinsic, e.Got)
}

// BlockGasLimitReachedError reports a transaction that would push the
// block's running gas usage past its limit.
type BlockGasLimitReachedError struct {
	Used, GasLimit, TxGas uint64
}

func (e *BlockGasLimitReachedError) Error() string {
	return fmt.Sprintf("block gas limit reached: used=%d + tx=%d > limit=%d", e.Used, e.TxGas, e.GasLimit)
}

// GenesisBlockCannotBeCalculatedError is returned when difficulty is
// requested for block 0, which has none.
type GenesisBlockCannotBeCalculatedError struct{}

func (e *GenesisBlockCannotBeCalculatedError) Error() string {
	return "genesis block difficulty cannot be calculated"
}

// InvalidStateError reports an internal cryptographic invariant violation:
// a programming bug, never a consequence of untrusted input.
type InvalidStateError struct {
	What string
}

func (e *InvalidStateError) Error() string { return "invalid internal state: " + e.What }

// CryptoError wraps a low-level cryptographic operation failure, such as a
// key-derivation function rejecting its parameters.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string { return fmt.Sprintf("crypto error in %s: %v", e.Op, e.Err) }
func (e *CryptoError) Unwrap() error { return e.Err }
