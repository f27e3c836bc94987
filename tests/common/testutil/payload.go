//go:build unit || e2e

package testutil

import (
	"encoding/json"
	"testing"

	reqdto "account-provisioner/internal/handler/dto/request"

	"github.com/stretchr/testify/require"
)

// Payload is a JSON request body. Empty string fields of the source request
// are left out so the handler sees them as absent.
type Payload map[string]any

type Edit func(Payload)

func Set(key string, value any) Edit {
	return func(p Payload) { p[key] = value }
}

func Drop(key string) Edit {
	return func(p Payload) { delete(p, key) }
}

func RegistrationPayload(t *testing.T, req reqdto.RegisterRequest, edits ...Edit) Payload {
	t.Helper()
	return build(t, req, edits)
}

func PaymentPayload(t *testing.T, req reqdto.PaymentRequest, edits ...Edit) Payload {
	t.Helper()
	return build(t, req, edits)
}

func build(t *testing.T, req any, edits []Edit) Payload {
	t.Helper()
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var p Payload
	require.NoError(t, json.Unmarshal(raw, &p))
	for k, v := range p {
		if s, ok := v.(string); ok && s == "" {
			delete(p, k)
		}
	}
	for _, edit := range edits {
		edit(p)
	}
	return p
}
