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

// Package bls wraps BLS12-381 signatures from cloudflare/circl for the
// stake-signature half of a stake seal. Secrets sign on G1 over a message
// hashed to the curve with an explicit, caller-supplied domain separator;
// public keys live on G2.
//
// Hashing a message straight into a scalar and multiplying a fixed
// generator by it lets an attacker forge a signature for any linear
// combination of previously seen messages. This package instead hashes to
// the curve with circl's simplified SWU (SSWU) map and isogeny
// (RFC 9380 §6.6.3), threading an explicit dst through every entry point
// for domain separation.
package bls

import (
	"crypto/rand"

	blsgroup "github.com/cloudflare/circl/ecc/bls12381"
	"github.com/pkg/errors"

	"github.com/probechain/stakeseal/common"
)

// Sizes of the wire encodings used by the stake signature scheme.
const (
	SecretLength = 32
	PublicLength = 96 // compressed G2
	sigPointLen  = 48 // compressed G1

	// SignatureLength is the compressed G1 point plus the bound public
	// key, matching the data model's "serialization of a G1 point plus
	// the bound public key".
	SignatureLength = sigPointLen + PublicLength
)

// ErrInvalidSecret is returned by ToPublic/Sign when the secret scalar is
// zero.
var ErrInvalidSecret = errors.New("invalid bls secret: zero scalar")

// ErrInvalidPublic is returned when a Public does not decode to a point on
// G2.
var ErrInvalidPublic = errors.New("invalid bls public key encoding")

// ErrInvalidSignature is returned when a Signature does not decode to a
// point on G1.
var ErrInvalidSignature = errors.New("invalid bls signature encoding")

// Secret is a 32 byte big-endian BLS12-381 scalar.
type Secret [SecretLength]byte

// GenerateSecret draws a uniformly random non-zero scalar.
func GenerateSecret() (Secret, error) {
	for {
		var s Secret
		sc := &blsgroup.Scalar{}
		if err := sc.Random(rand.Reader); err != nil {
			return Secret{}, err
		}
		b, err := sc.MarshalBinary()
		if err != nil {
			return Secret{}, err
		}
		copy(s[SecretLength-len(b):], b)
		if s != (Secret{}) {
			return s, nil
		}
	}
}

func (s Secret) scalar() (*blsgroup.Scalar, error) {
	sc := &blsgroup.Scalar{}
	if err := sc.UnmarshalBinary(s[:]); err != nil {
		return nil, errors.Wrap(err, "bls: decode secret scalar")
	}
	if sc.IsZero() == 1 {
		return nil, ErrInvalidSecret
	}
	return sc, nil
}

// Public is a compressed G2 point (96 bytes).
type Public [PublicLength]byte

func (p Public) point() (*blsgroup.G2, error) {
	g := &blsgroup.G2{}
	if err := g.SetBytes(p[:]); err != nil {
		return nil, errors.Wrap(ErrInvalidPublic, err.Error())
	}
	return g, nil
}

// ToPublic derives the G2 public key for secret.
func ToPublic(secret Secret) (Public, error) {
	sc, err := secret.scalar()
	if err != nil {
		return Public{}, err
	}
	g := &blsgroup.G2{}
	g.ScalarMult(sc, blsgroup.G2Generator())

	var pub Public
	copy(pub[:], g.BytesCompressed())
	return pub, nil
}

// Signature is a compressed G1 point (secret * hashToG1(dst, msg)) with the
// signer's public key bound alongside it, so a signature carries everything
// needed to verify itself against a message.
type Signature [SignatureLength]byte

// point returns the raw G1 signature point, with the bound public key
// stripped.
func (s Signature) point() (*blsgroup.G1, error) {
	g := &blsgroup.G1{}
	if err := g.SetBytes(s[:sigPointLen]); err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return g, nil
}

// Pub returns the public key bound into the signature.
func (s Signature) Pub() Public {
	var p Public
	copy(p[:], s[sigPointLen:])
	return p
}

func newSignature(sigBytes []byte, pub Public) Signature {
	var out Signature
	copy(out[:sigPointLen], sigBytes)
	copy(out[sigPointLen:], pub[:])
	return out
}

// hashToG1 maps pub‖msg onto G1 under domain separator dst. Folding pub
// into the preimage is load-bearing: it is what stops a scalar multiple of
// one signer's hash point from being replayed as a valid point for another
// signer's key.
func hashToG1(dst []byte, pub Public, msg []byte) *blsgroup.G1 {
	g := &blsgroup.G1{}
	preimage := make([]byte, 0, PublicLength+len(msg))
	preimage = append(preimage, pub[:]...)
	preimage = append(preimage, msg...)
	g.Hash(preimage, dst)
	return g
}

// Sign produces a deterministic BLS signature over msg, binding pub (the
// signer's own public key) into the result. Since hashToG1 and scalar
// multiplication are both deterministic functions of their inputs, signing
// the same (dst, msg) with the same secret always yields the same
// signature, matching the no-grinding requirement.
func Sign(dst []byte, secret Secret, msg common.Hash) (Signature, error) {
	sc, err := secret.scalar()
	if err != nil {
		return Signature{}, err
	}
	pub, err := ToPublic(secret)
	if err != nil {
		return Signature{}, err
	}
	h := hashToG1(dst, pub, msg[:])

	sig := &blsgroup.G1{}
	sig.ScalarMult(sc, h)

	return newSignature(sig.BytesCompressed(), pub), nil
}

// Verify checks that sig was produced by pub over msg under domain dst:
// the bound public key inside sig must match pub, and
// e(sig, G2Generator) must equal e(hashToG1(dst, pub, msg), pub).
func Verify(dst []byte, pub Public, sig Signature, msg common.Hash) bool {
	if sig.Pub() != pub {
		return false
	}
	pubPoint, err := pub.point()
	if err != nil {
		return false
	}
	sigPoint, err := sig.point()
	if err != nil {
		return false
	}
	h := hashToG1(dst, pub, msg[:])

	lhs := blsgroup.Pair(sigPoint, blsgroup.G2Generator())
	rhs := blsgroup.Pair(h, pubPoint)
	return lhs.IsEqual(rhs)
}
