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

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// ScryptParams bundles the cost parameters for DeriveKey. N must be a power
// of two greater than one.
type ScryptParams struct {
	N, R, P, KeyLen int
}

// DefaultScryptParams matches the interactive-use cost recommended by the
// scrypt paper.
var DefaultScryptParams = ScryptParams{N: 1 << 18, R: 8, P: 1, KeyLen: 32}

// DeriveKey stretches passphrase into a KeyLen byte key using scrypt.
func DeriveKey(passphrase, salt []byte, p ScryptParams) ([]byte, error) {
	key, err := scrypt.Key(passphrase, salt, p.N, p.R, p.P, p.KeyLen)
	if err != nil {
		return nil, errors.Wrap(err, "derive key")
	}
	return key, nil
}

// EncryptAESCTR encrypts plaintext under key with an explicit iv, matching
// the wire-level keystore format: no key derivation or IV generation
// happens implicitly, callers own both.
func EncryptAESCTR(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "aes-ctr encrypt")
	}
	out := make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(out, plaintext)
	return out, nil
}

// DecryptAESCTR reverses EncryptAESCTR; AES-CTR is symmetric so this is the
// same transform.
func DecryptAESCTR(key, iv, ciphertext []byte) ([]byte, error) {
	return EncryptAESCTR(key, iv, ciphertext)
}

// RandomIV returns a fresh random initialization vector of aes.BlockSize
// bytes.
func RandomIV() ([]byte, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	return iv, nil
}
