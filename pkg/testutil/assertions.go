package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/pkg/fault"
)

// RequireFault asserts that err carries the given fault kind and code.
func RequireFault(t *testing.T, err error, kind fault.Kind, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, fault.KindOf(err), "fault kind")
	assert.Equal(t, code, fault.CodeOf(err), "fault code")
}
