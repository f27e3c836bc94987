//go:build unit

package asset_test

import (
	"testing"

	"account-provisioner/internal/domain/asset"
	"account-provisioner/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	eos := asset.MustSymbol("EOS", 4)

	t.Run("success", func(t *testing.T) {
		testCases := []struct {
			in       string
			expected asset.Asset
		}{
			{in: "10.0000 EOS", expected: asset.New(100000, eos)},
			{in: "0.0001 EOS", expected: asset.New(1, eos)},
			{in: "-1.5000 EOS", expected: asset.New(-15000, eos)},
			{in: "7 SYS", expected: asset.New(7, asset.MustSymbol("SYS", 0))},
		}
		for _, tc := range testCases {
			t.Run(tc.in, func(t *testing.T) {
				got, err := asset.Parse(tc.in)
				require.NoError(t, err)
				assert.Equal(t, tc.expected, got)
				assert.Equal(t, tc.in, got.String())
			})
		}
	})

	t.Run("format errors", func(t *testing.T) {
		for _, in := range []string{"", "10.0000", "10.0000 eos", "1.2.3 EOS", ". EOS", "1. EOS", "abc EOS", "10.0000 TOOLONGSYM", "99999999999999999999 EOS"} {
			t.Run(in, func(t *testing.T) {
				_, err := asset.Parse(in)
				require.Error(t, err)
				assert.True(t, errs.Is(err, errs.ErrFormat))
			})
		}
	})
}

func TestSymbol(t *testing.T) {
	sym := asset.MustSymbol("EOS", 4)
	assert.Equal(t, int64(10000), sym.Scale())
	assert.Equal(t, "4,EOS", sym.String())

	_, err := asset.NewSymbol("EOS", 19)
	assert.True(t, errs.Is(err, asset.ErrInvalidSymbol))
}
