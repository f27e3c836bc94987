//go:build unit

package base58_test

import (
	"bytes"
	"math/rand"
	"testing"

	"account-provisioner/internal/pkg/base58"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	testCases := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "empty", in: []byte{}, want: ""},
		{name: "single zero", in: []byte{0x00}, want: "1"},
		{name: "leading zeros", in: []byte{0x00, 0x00, 0x01}, want: "112"},
		{name: "57", in: []byte{57}, want: "z"},
		{name: "58", in: []byte{58}, want: "21"},
		{name: "hello world", in: []byte("hello world"), want: "StV1DL6CwTryKyV"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base58.Encode(tc.in))
		})
	}
}

func TestDecodeFixed(t *testing.T) {
	t.Run("success: known vector", func(t *testing.T) {
		got, err := base58.DecodeFixed("StV1DL6CwTryKyV", 11)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello world"), got)
	})

	t.Run("success: short numeral is left padded", func(t *testing.T) {
		got, err := base58.DecodeFixed("21", 4)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0, 58}, got)
	})

	t.Run("error: character outside alphabet", func(t *testing.T) {
		for _, s := range []string{"0", "O", "I", "l", "abc!", "é"} {
			got, err := base58.DecodeFixed(s, 8)
			assert.ErrorIs(t, err, base58.ErrInvalidCharacter, s)
			assert.Nil(t, got)
		}
	})

	t.Run("error: carry overflows the buffer", func(t *testing.T) {
		got, err := base58.DecodeFixed("5R", 1) // 4*58+24 = 256
		assert.ErrorIs(t, err, base58.ErrOutOfRange)
		assert.Nil(t, got)
	})

	t.Run("success: largest value that fits", func(t *testing.T) {
		got, err := base58.DecodeFixed("5Q", 1) // 4*58+23 = 255
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff}, got)
	})
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(58))

	for i := 0; i < 500; i++ {
		size := 1 + rng.Intn(64)
		in := make([]byte, size)
		rng.Read(in)
		// exercise leading zero runs
		for j := 0; j < rng.Intn(4) && j < size; j++ {
			in[j] = 0
		}

		got, err := base58.DecodeFixed(base58.Encode(in), size)
		require.NoError(t, err)
		if !bytes.Equal(in, got) {
			t.Fatalf("round trip mismatch for %x: got %x", in, got)
		}
	}
}
