//go:build unit

package principal_test

import (
	"testing"

	"account-provisioner/internal/domain/principal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRole(t *testing.T) {
	for _, s := range []string{"registrar", "ledger"} {
		role, err := principal.NewRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, role.String())
	}
	for _, s := range []string{"", "admin", "Ledger"} {
		_, err := principal.NewRole(s)
		assert.ErrorIs(t, err, principal.ErrInvalidRole)
	}
}
