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

// Package common holds the fixed-width hash and address types shared by the
// stake-seal engine: 256/128/64/512-bit hashes and the 160-bit address
// derived from them.
package common

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Lengths of hashes and addresses in bytes.
const (
	HashLength    = 32
	Hash128Length = 16
	Hash64Length  = 8
	Hash512Length = 64
	AddressLength = 20
)

// Hash represents the 32 byte Keccak256 hash of arbitrary data (h256).
type Hash [HashLength]byte

// BytesToHash sets b to hash. If b is larger than len(h), b is cropped from
// the left, matching the big-endian, most-significant-byte-first
// interpretation the data model specifies.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// BigToHash sets the byte representation of b to a hash.
func BigToHash(b *big.Int) Hash { return BytesToHash(b.Bytes()) }

// HexToHash sets the byte representation of s (with or without a leading
// 0x) to a hash.
func HexToHash(s string) Hash { return BytesToHash(FromHex(s)) }

// Bytes returns the byte representation of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Big interprets the hash as a big-endian unsigned integer.
func (h Hash) Big() *big.Int { return new(big.Int).SetBytes(h[:]) }

// Hex returns the 0x-prefixed hex encoding of the hash.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// IsZero reports whether the hash is the all-zero value.
func (h Hash) IsZero() bool { return h == Hash{} }

// SetBytes sets the hash to the value of b, cropping from the left if b is
// longer than the hash.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// Cmp performs a big-endian byte-wise comparison, matching the "hash as
// unsigned 256-bit integer" interpretation used by the boundary check.
func (h Hash) Cmp(other Hash) int { return bytes.Compare(h[:], other[:]) }

// LessOrEqual reports whether h <= other under the big-endian integer
// interpretation, i.e. the seal boundary check "hash(sig) <= boundary".
func (h Hash) LessOrEqual(other Hash) bool { return h.Cmp(other) <= 0 }

// Address represents the 20 byte address derived by right-truncating a
// Keccak256 hash of a public key (h160).
type Address [AddressLength]byte

// BytesToAddress sets b to an address, cropping from the left if
// necessary.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress parses s as a hex string into an Address.
func HexToAddress(s string) Address { return BytesToAddress(FromHex(s)) }

// Bytes returns the byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the 0x-prefixed hex encoding of the address.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// IsZero reports whether the address is the all-zero value.
func (a Address) IsZero() bool { return a == Address{} }

// SetBytes sets the address to the value of b, cropping from the left if b
// is longer than the address.
func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// Hash128 is a 128 bit fixed-width hash/tag (h128), used for encryption IVs.
type Hash128 [Hash128Length]byte

// Bytes returns the byte representation of the value.
func (h Hash128) Bytes() []byte { return h[:] }

// Hash64 is a 64 bit fixed-width hash/tag (h64).
type Hash64 [Hash64Length]byte

// Bytes returns the byte representation of the value.
func (h Hash64) Bytes() []byte { return h[:] }

// Hash512 is a 512 bit fixed-width hash (h512), sized for a wide MAC or an
// uncompressed pairing-curve encoding.
type Hash512 [Hash512Length]byte

// Bytes returns the byte representation of the value.
func (h Hash512) Bytes() []byte { return h[:] }

// FromHex decodes a hex string with an optional 0x/0X prefix, returning nil
// on error rather than panicking: header/signature fields built from
// untrusted wire bytes should fail their own validity checks, not this
// helper.
func FromHex(s string) []byte {
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// CopyBytes returns an independent copy of b.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// ErrInvalidLength reports a fixed-width field decoded from the wrong
// number of bytes.
type ErrInvalidLength struct {
	Field string
	Want  int
	Got   int
}

func (e *ErrInvalidLength) Error() string {
	return fmt.Sprintf("invalid %s length: want %d bytes, got %d", e.Field, e.Want, e.Got)
}
