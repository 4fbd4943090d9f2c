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

// Package crypto holds the hash and ECDSA primitives the stake-seal engine
// is built on. It does not implement FIPS-202 SHA3: consensus depends on
// the original Keccak-256 padding, so everything here goes through
// golang.org/x/crypto/sha3's "legacy Keccak" constructors.
package crypto

import (
	"hash"

	"golang.org/x/crypto/sha3"
)

// DigestLength is the length in bytes of a Keccak256 digest.
const DigestLength = 32

// KeccakState wraps sha3.state. In addition to the usual hash.Hash methods
// it supports Read to pull a variable amount of data out of the sponge
// without copying internal state.
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// NewKeccakState returns a new legacy (pre-FIPS-202) Keccak-256 state.
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// Keccak256 hashes the concatenation of data with the original Keccak-256
// padding.
func Keccak256(data ...[]byte) []byte {
	b := make([]byte, DigestLength)
	d := NewKeccakState()
	for _, chunk := range data {
		d.Write(chunk)
	}
	d.Read(b)
	return b
}

// Sha3MAC computes keccak(nonce || key), writing the digest into out. It is
// used only by KDF (nonce.go), never on the consensus path.
func Sha3MAC(nonce, key, out []byte) {
	d := NewKeccakState()
	d.Write(nonce)
	d.Write(key)
	d.Read(out)
}
