//go:build !windows

package minidl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrdinalUnsupported(t *testing.T) {
	_, ok := fake.SymbolOptionalByOrdinal(100)
	require.False(t, ok)
	_, ok = ResolveOptionalByOrdinal[uintptr](fake, 100)
	require.False(t, ok)
	_, err := ResolveByOrdinal[uintptr](fake, 100)
	require.ErrorIs(t, err, ErrSymbolNotFound)
	require.Contains(t, err.Error(), "@100")
}
