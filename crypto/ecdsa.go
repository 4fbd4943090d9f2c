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
	"crypto/subtle"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	becdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/probechain/stakeseal/common"
)

// SecretLength, PublicLength and SignatureLength are the wire sizes of the
// secp256k1 types (data model §3).
const (
	SecretLength    = 32
	PublicLength    = 64
	SignatureLength = 65
)

// secp256k1N is the order of the secp256k1 group.
var secp256k1N, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
var secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)

// ErrInvalidSecret is returned when a Secret is zero or >= the group order.
var ErrInvalidSecret = errors.New("invalid secp256k1 secret: zero or >= group order")

// ErrInvalidPublic is returned when a Public does not parse to a point on
// the curve.
var ErrInvalidPublic = errors.New("invalid secp256k1 public key")

// ErrInvalidSignature is returned when a Signature fails the validity
// invariant (v <= 1, 0 < r,s < n).
var ErrInvalidSignature = errors.New("invalid secp256k1 signature")

// Secret is a 32 byte secp256k1 private scalar. Callers should Zero it once
// done; comparisons are constant time.
type Secret [SecretLength]byte

// Equal performs a constant-time comparison.
func (s Secret) Equal(other Secret) bool {
	return subtle.ConstantTimeCompare(s[:], other[:]) == 1
}

// Zero overwrites the secret in place. Best-effort: Go does not guarantee a
// non-inlined write survives compiler optimization, but this matches the
// zeroize-on-drop contract of the data model as closely as the language
// allows.
func (s *Secret) Zero() {
	for i := range s {
		s[i] = 0
	}
}

// Valid reports whether s is in [1, n-1], as required for ECDSA use.
func (s Secret) Valid() bool {
	v := new(big.Int).SetBytes(s[:])
	return v.Sign() > 0 && v.Cmp(secp256k1N) < 0
}

// GenerateSecret draws a uniformly random valid secp256k1 secret.
func GenerateSecret() (Secret, error) {
	var s Secret
	for {
		if _, err := rand.Read(s[:]); err != nil {
			return Secret{}, err
		}
		if s.Valid() {
			return s, nil
		}
	}
}

// Public is the 64 byte uncompressed secp256k1 point with the leading 0x04
// header stripped.
type Public [PublicLength]byte

// Valid reports whether p parses back to a point on the curve.
func (p Public) Valid() bool {
	_, err := parsePublic(p)
	return err == nil
}

func parsePublic(p Public) (*btcec.PublicKey, error) {
	uncompressed := make([]byte, 65)
	uncompressed[0] = 0x04
	copy(uncompressed[1:], p[:])
	return btcec.ParsePubKey(uncompressed)
}

func publicFromPoint(pk *btcec.PublicKey) Public {
	uncompressed := pk.SerializeUncompressed()
	var p Public
	copy(p[:], uncompressed[1:])
	return p
}

// ToPublic derives the public key for secret, failing if the secret is out
// of range.
func ToPublic(secret Secret) (Public, error) {
	if !secret.Valid() {
		return Public{}, ErrInvalidSecret
	}
	var scalar secp256k1.ModNScalar
	scalar.SetByteSlice(secret[:])
	var point secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&scalar, &point)
	point.ToAffine()
	pubKey := btcec.NewPublicKey(&point.X, &point.Y)
	return publicFromPoint(pubKey), nil
}

// Signature is a 65 byte r||s||v ECDSA signature with v in {0,1}.
type Signature [SignatureLength]byte

// R, S and V split the signature into its components.
func (s Signature) R() *big.Int { return new(big.Int).SetBytes(s[0:32]) }
func (s Signature) S() *big.Int { return new(big.Int).SetBytes(s[32:64]) }
func (s Signature) V() byte     { return s[64] }

// Valid checks the ECDSA validity invariant: v <= 1, 0 < r,s < n.
func (s Signature) Valid() bool {
	if s.V() > 1 {
		return false
	}
	r, sv := s.R(), s.S()
	zero := big.NewInt(0)
	return r.Cmp(zero) > 0 && r.Cmp(secp256k1N) < 0 && sv.Cmp(zero) > 0 && sv.Cmp(secp256k1N) < 0
}

// Canonical checks the low-s canonicalization invariant: s <= n/2.
func (s Signature) Canonical() bool {
	return s.S().Cmp(secp256k1HalfN) <= 0
}

// Sign produces a deterministic (RFC 6979), low-s canonicalized,
// recoverable signature over msg.
func Sign(secret Secret, msg common.Hash) (Signature, error) {
	if !secret.Valid() {
		return Signature{}, ErrInvalidSecret
	}
	privKey := secp256k1.PrivKeyFromBytes(secret[:])
	defer privKey.Zero()

	compact, err := becdsa.SignCompact(privKey, msg[:], false)
	if err != nil {
		return Signature{}, err
	}
	// becdsa.SignCompact's compact format is [recovery-id+27 || r || s].
	recID := compact[0] - 27
	var sig Signature
	copy(sig[0:64], compact[1:65])
	sig[64] = recID

	r, s, v := sig.R(), sig.S(), sig.V()
	if s.Cmp(secp256k1HalfN) > 0 {
		s = new(big.Int).Sub(secp256k1N, s)
		v ^= 1
	}
	copy(sig[0:32], leftPad32(r))
	copy(sig[32:64], leftPad32(s))
	sig[64] = v

	if !sig.Valid() || !sig.Canonical() {
		return Signature{}, errors.Wrap(ErrInvalidSignature, "sign: postcondition failed")
	}
	return sig, nil
}

// Recover returns the public key that produced sig over msg, or an error if
// sig does not recover to a valid point.
func Recover(sig Signature, msg common.Hash) (Public, error) {
	if sig.V() > 3 {
		return Public{}, errors.Wrap(ErrInvalidSignature, "recover: v out of range")
	}
	compact := make([]byte, 65)
	compact[0] = 27 + sig.V()
	copy(compact[1:33], sig[0:32])
	copy(compact[33:65], sig[32:64])

	pubKey, _, err := becdsa.RecoverCompact(compact, msg[:])
	if err != nil {
		return Public{}, errors.Wrap(err, "recover")
	}
	pub := publicFromPoint(pubKey)
	if pub == (Public{}) {
		return Public{}, errors.Wrap(ErrInvalidPublic, "recover: identity point")
	}
	return pub, nil
}

// Verify recovers the signer of sig over msg and compares it to pub.
func Verify(pub Public, sig Signature, msg common.Hash) bool {
	if !pub.Valid() {
		return false
	}
	recovered, err := Recover(sig, msg)
	if err != nil {
		return false
	}
	return recovered == pub
}

// Agree performs ECDH key agreement, returning the x-coordinate of
// secret*peerPub. Rejects peer points that do not parse onto the curve.
func Agree(secret Secret, peerPub Public) (common.Hash, error) {
	if !secret.Valid() {
		return common.Hash{}, ErrInvalidSecret
	}
	peer, err := parsePublic(peerPub)
	if err != nil {
		return common.Hash{}, errors.Wrap(ErrInvalidPublic, "agree: invalid peer point")
	}

	var scalar secp256k1.ModNScalar
	scalar.SetByteSlice(secret[:])

	var peerJac, resultJac secp256k1.JacobianPoint
	peer.AsJacobian(&peerJac)
	secp256k1.ScalarMultNonConst(&scalar, &peerJac, &resultJac)
	resultJac.ToAffine()

	return common.BytesToHash(resultJac.X.Bytes()[:]), nil
}

// ToAddress derives the h160 address from a public key: right160(keccak(pub)).
func ToAddress(pub Public) common.Address {
	return common.BytesToAddress(Keccak256(pub[:])[12:])
}

// ToContractAddress derives the address of a contract created by from at
// nonce from rlpFromNonce, the RLP encoding of [from, nonce]. The encoding
// is supplied by the caller (core/types or its RLP dependency) to avoid
// this package depending on the RLP codec directly.
func ToContractAddress(rlpFromNonce []byte) common.Address {
	return common.BytesToAddress(Keccak256(rlpFromNonce)[12:])
}

// Authenticator authenticates a transaction's declared sender by recovering
// the ECDSA signer and comparing it against the declared public key. It
// satisfies the account-authentication shape the seal engine's transaction
// pre-flight checks expect from any signature scheme.
type Authenticator struct{}

// Authenticate implements the recover-and-compare check.
func (Authenticator) Authenticate(signerPublicKey, signature []byte, signingHash common.Hash) error {
	if len(signature) != SignatureLength {
		return ErrInvalidSignature
	}
	var sig Signature
	copy(sig[:], signature)

	recovered, err := Recover(sig, signingHash)
	if err != nil {
		return errors.Wrap(err, "authenticate")
	}
	if len(signerPublicKey) != PublicLength {
		return ErrInvalidPublic
	}
	var want Public
	copy(want[:], signerPublicKey)
	if recovered != want {
		return ErrInvalidSignature
	}
	return nil
}

func leftPad32(v *big.Int) []byte {
	b := v.Bytes()
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
