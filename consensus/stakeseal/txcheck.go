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

import "github.com/probechain/stakeseal/common"

// Transaction is the minimal view of a transaction the pre-flight checks
// need. The seal engine never inspects a transaction beyond these fields:
// gas accounting, chain-ID binding, and account-signature authentication
// are its only concerns here.
type Transaction interface {
	ChainID() uint64
	Gas() uint64
	// DataLen and ContractCreation feed GasSchedule.IntrinsicGas; kept on
	// Transaction rather than folded into a single Data() []byte so a
	// caller can implement this over a transaction that never materializes
	// its payload as one contiguous slice.
	DataLen() int
	ContractCreation() bool
	// SigningHash, Signature and SignerPublicKey feed AccountAuthenticator;
	// the seal engine treats their encoding as opaque bytes it never
	// interprets itself.
	SigningHash() common.Hash
	Signature() []byte
	SignerPublicKey() []byte
}

// AccountAuthenticator verifies a transaction's account-level signature
// against its declared sender, independent of the seal's own BLS/ECDSA
// machinery. Wiring a different implementation lets a chain accept an
// alternate signature scheme without CheckTransaction caring which one.
type AccountAuthenticator interface {
	Authenticate(signerPublicKey, signature []byte, signingHash common.Hash) error
}

// GasSchedule computes the intrinsic gas cost of a transaction at a given
// block height, an external collaborator so this package never hardcodes
// per-hard-fork gas costs.
type GasSchedule interface {
	IntrinsicGas(blockNumber uint64, tx Transaction) uint64
}

// StandardGasSchedule is a GasSchedule using the historical txGas and
// txDataZeroGas constants for every block height;
// callers whose chain enables cheaper calldata at some height should
// implement their own GasSchedule instead.
type StandardGasSchedule struct {
	// TxGas is the flat per-transaction cost.
	TxGas uint64
	// TxGasContractCreation is the flat cost for a contract-creation
	// transaction, if higher than TxGas.
	TxGasContractCreation uint64
	// DataZeroGas is charged for every calldata byte: this schedule does
	// not distinguish zero from non-zero calldata bytes because Transaction
	// only reports a length, not the bytes themselves.
	DataZeroGas uint64
}

// IntrinsicGas returns the flat transaction cost plus a per-byte calldata
// cost; it ignores blockNumber since StandardGasSchedule applies uniformly.
func (s StandardGasSchedule) IntrinsicGas(blockNumber uint64, tx Transaction) uint64 {
	base := s.TxGas
	if tx.ContractCreation() && s.TxGasContractCreation > base {
		base = s.TxGasContractCreation
	}
	return base + uint64(tx.DataLen())*s.DataZeroGas
}

// DefaultGasSchedule matches the historical values: 21000 gas per
// transaction, 53000 for contract creation, 4 gas per calldata byte.
var DefaultGasSchedule = StandardGasSchedule{
	TxGas:                 21000,
	TxGasContractCreation: 53000,
	DataZeroGas:           4,
}
