// Copyright 2014 The go-probeum Authors
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

// Package types contains the header model the stake-seal engine verifies
// and produces.
package types

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/probechain/stakeseal/common"
	"github.com/probechain/stakeseal/crypto"
	"github.com/probechain/stakeseal/crypto/bls"
)

// BloomByteLength is the number of bytes in a logs bloom filter. There is
// no EVM in this engine, so Bloom is carried as an opaque, always-zero
// placeholder for the external state layer that would populate it.
const BloomByteLength = 256

// Bloom represents a 2048 bit filter over external-state log topics.
type Bloom [BloomByteLength]byte

// Header is the 13(+4 seal) field header the stake-seal engine reads and
// writes. Field order below is the RLP wire order and is frozen: changing
// it changes every hash and breaks cross-node consensus.
type Header struct {
	ParentHash    common.Hash    `json:"parentHash"`
	UnclesHash    common.Hash    `json:"sha3Uncles"`   // always the zero hash; there are no uncles
	Coinbase      common.Address `json:"miner"`        // always the zero address; unused by this engine
	StateRoot     common.Hash    `json:"stateRoot"`     // external state layer, opaque here
	TxRoot        common.Hash    `json:"transactionsRoot"`
	ReceiptRoot   common.Hash    `json:"receiptsRoot"`
	Bloom         Bloom          `json:"logsBloom"`
	Difficulty    *uint256.Int   `json:"difficulty"`
	Number        uint64         `json:"number"`
	GasLimit      *uint256.Int   `json:"gasLimit"`
	GasUsed       *uint256.Int   `json:"gasUsed"`
	Timestamp     *uint256.Int   `json:"timestamp"`
	Extra         []byte         `json:"extraData"`
	StakeModifier common.Hash    `json:"stakeModifier"`
	PublicKey     bls.Public     `json:"publicKey"`
	StakeSig      bls.Signature  `json:"stakeSignature"`
	BlockSig      bls.Signature  `json:"blockSignature"`
}

// sealHeader is the RLP shape of Header with all four seal fields omitted,
// used to compute HashWithoutSeal. It mirrors Header's first 13 fields in
// the same order so the encoding of the shared fields is byte-identical.
type sealHeader struct {
	ParentHash  common.Hash
	UnclesHash  common.Hash
	Coinbase    common.Address
	StateRoot   common.Hash
	TxRoot      common.Hash
	ReceiptRoot common.Hash
	Bloom       Bloom
	Difficulty  *uint256.Int
	Number      uint64
	GasLimit    *uint256.Int
	GasUsed     *uint256.Int
	Timestamp   *uint256.Int
	Extra       []byte
}

// Copy returns a deep copy of h; *uint256.Int and slice fields are shared
// state that callers must not mutate through the original.
func (h *Header) Copy() *Header {
	cp := *h
	if h.Difficulty != nil {
		cp.Difficulty = new(uint256.Int).Set(h.Difficulty)
	}
	if h.GasLimit != nil {
		cp.GasLimit = new(uint256.Int).Set(h.GasLimit)
	}
	if h.GasUsed != nil {
		cp.GasUsed = new(uint256.Int).Set(h.GasUsed)
	}
	if h.Timestamp != nil {
		cp.Timestamp = new(uint256.Int).Set(h.Timestamp)
	}
	cp.Extra = common.CopyBytes(h.Extra)
	return &cp
}

// Hash returns keccak256(rlp(h)), including the seal fields.
func (h *Header) Hash() common.Hash {
	enc, err := rlp.EncodeToBytes(h)
	if err != nil {
		panic("types: encode header: " + err.Error())
	}
	return common.BytesToHash(crypto.Keccak256(enc))
}

// HashWithoutSeal returns keccak256(rlp(h)) with the four seal fields
// omitted from the encoding, the message every block signature is over.
func (h *Header) HashWithoutSeal() common.Hash {
	sh := sealHeader{
		ParentHash:  h.ParentHash,
		UnclesHash:  h.UnclesHash,
		Coinbase:    h.Coinbase,
		StateRoot:   h.StateRoot,
		TxRoot:      h.TxRoot,
		ReceiptRoot: h.ReceiptRoot,
		Bloom:       h.Bloom,
		Difficulty:  h.Difficulty,
		Number:      h.Number,
		GasLimit:    h.GasLimit,
		GasUsed:     h.GasUsed,
		Timestamp:   h.Timestamp,
		Extra:       h.Extra,
	}
	enc, err := rlp.EncodeToBytes(&sh)
	if err != nil {
		panic("types: encode sealless header: " + err.Error())
	}
	return common.BytesToHash(crypto.Keccak256(enc))
}

// SetSeal fills the four seal fields, the only mutation the sealer ever
// performs on a header once its non-seal fields are fixed.
func (h *Header) SetSeal(stakeModifier common.Hash, publicKey bls.Public, stakeSig, blockSig bls.Signature) {
	h.StakeModifier = stakeModifier
	h.PublicKey = publicKey
	h.StakeSig = stakeSig
	h.BlockSig = blockSig
}

// SanityCheck rejects headers whose unbounded fields are stuffed with
// values no verify call would ever need to inspect closely, before any
// consensus check runs.
func (h *Header) SanityCheck() error {
	if len(h.Extra) > 1<<20 {
		return &common.ErrInvalidLength{Field: "extraData", Want: 1 << 20, Got: len(h.Extra)}
	}
	if h.Difficulty != nil && h.Difficulty.BitLen() > 256 {
		return &common.ErrInvalidLength{Field: "difficulty", Want: 256, Got: h.Difficulty.BitLen()}
	}
	return nil
}
