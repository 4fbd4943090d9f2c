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

package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesToHashCropsFromLeft(t *testing.T) {
	long := make([]byte, 40)
	for i := range long {
		long[i] = byte(i)
	}
	h := BytesToHash(long)
	require.Equal(t, long[8:], h.Bytes())
}

func TestHashHexRoundTrip(t *testing.T) {
	h := HexToHash("0x0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")
	require.Equal(t, "0x0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20", h.Hex())
}

func TestHashLessOrEqual(t *testing.T) {
	small := BytesToHash([]byte{0x00, 0x01})
	big := BytesToHash([]byte{0x01, 0x00})
	require.True(t, small.LessOrEqual(big))
	require.False(t, big.LessOrEqual(small))
	require.True(t, small.LessOrEqual(small))
}

func TestAddressCropsFromLeft(t *testing.T) {
	long := make([]byte, 32)
	for i := range long {
		long[i] = byte(i + 1)
	}
	a := BytesToAddress(long)
	require.Equal(t, long[12:], a.Bytes())
}

func TestFromHexInvalidReturnsNil(t *testing.T) {
	require.Nil(t, FromHex("0xzz"))
}
