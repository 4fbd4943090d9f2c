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

package crypto

import (
	"crypto/rand"
	"sync"

	"github.com/probechain/stakeseal/common"
)

// NonceStream is a chained pseudo-random byte generator for non-consensus
// initialization vectors: m <- keccak(m), next() = keccak(~m). It is never
// read on the consensus path.
//
// Callers own an instance explicitly rather than sharing a package-level
// singleton, so its lifetime and seeding stay under their control.
type NonceStream struct {
	mu sync.Mutex
	m  common.Hash
	on bool
}

// NewNonceStream returns an unseeded stream; it seeds itself from
// crypto/rand on the first call to Next.
func NewNonceStream() *NonceStream {
	return &NonceStream{}
}

// Next advances the chain and returns the next 32 byte value.
func (n *NonceStream) Next() (common.Hash, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.on {
		var seed [32]byte
		if _, err := rand.Read(seed[:]); err != nil {
			return common.Hash{}, err
		}
		n.m = common.BytesToHash(seed[:])
		n.on = true
	}
	n.m = common.BytesToHash(Keccak256(n.m[:]))

	inverted := make([]byte, len(n.m))
	for i, b := range n.m {
		inverted[i] = ^b
	}
	return common.BytesToHash(Keccak256(inverted)), nil
}

// KDF derives a 32 byte key from a secp256k1 secret and a hash, per
// H(H(r||k)^h). It is used only for non-consensus symmetric key wrapping,
// never for signing.
func KDF(secret Secret, digest common.Hash) (common.Hash, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return common.Hash{}, err
	}
	var mixed [32]byte
	Sha3MAC(seed[:], secret[:], mixed[:])

	var xored common.Hash
	for i := range xored {
		xored[i] = mixed[i] ^ digest[i]
	}
	return common.BytesToHash(Keccak256(xored[:])), nil
}
