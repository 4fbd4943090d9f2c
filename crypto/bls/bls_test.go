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

package bls

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probechain/stakeseal/common"
)

var testDST = []byte("stakeseal-test-v1")

func TestSignVerifyRoundTrip(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	pub, err := ToPublic(secret)
	require.NoError(t, err)

	msg := common.BytesToHash([]byte("stake message"))
	sig, err := Sign(testDST, secret, msg)
	require.NoError(t, err)

	require.True(t, Verify(testDST, pub, sig, msg))
}

func TestSignIsDeterministic(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	msg := common.BytesToHash([]byte("same message"))

	sig1, err := Sign(testDST, secret, msg)
	require.NoError(t, err)
	sig2, err := Sign(testDST, secret, msg)
	require.NoError(t, err)
	require.Equal(t, sig1, sig2)
}

func TestVerifyRejectsWrongDomain(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	pub, err := ToPublic(secret)
	require.NoError(t, err)
	msg := common.BytesToHash([]byte("stake message"))

	sig, err := Sign(testDST, secret, msg)
	require.NoError(t, err)
	require.False(t, Verify([]byte("other-domain"), pub, sig, msg))
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	pub, err := ToPublic(secret)
	require.NoError(t, err)
	msg := common.BytesToHash([]byte("stake message"))

	sig, err := Sign(testDST, secret, msg)
	require.NoError(t, err)
	sig[0] ^= 0xff
	require.False(t, Verify(testDST, pub, sig, msg))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	secretA, err := GenerateSecret()
	require.NoError(t, err)
	secretB, err := GenerateSecret()
	require.NoError(t, err)
	pubB, err := ToPublic(secretB)
	require.NoError(t, err)

	msg := common.BytesToHash([]byte("stake message"))
	sig, err := Sign(testDST, secretA, msg)
	require.NoError(t, err)
	require.False(t, Verify(testDST, pubB, sig, msg))
}
