package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError(t *testing.T) {
	t.Run("formats code, message and cause", func(t *testing.T) {
		err := NewDomainError("unsupported_symbol", "scan failed", ErrUnsupportedSymbol)
		assert.Equal(t, "unsupported_symbol: scan failed: unsupported symbol", err.Error())
	})

	t.Run("formats without a cause", func(t *testing.T) {
		err := NewDomainError("internal", "scan failed", nil)
		assert.Equal(t, "internal: scan failed", err.Error())
	})

	t.Run("unwraps to the sentinel", func(t *testing.T) {
		var err error = NewDomainError("timeout", "scan failed", Wrap(ErrTimeout, "quote for SPY"))
		assert.True(t, Is(err, ErrTimeout))

		var derr *DomainError
		require.True(t, As(err, &derr))
		assert.Equal(t, "timeout", derr.Code)
	})
}

func TestMultiError(t *testing.T) {
	var multi MultiError
	assert.False(t, multi.HasErrors())
	assert.Nil(t, multi.ToError())

	multi.Add(nil)
	assert.False(t, multi.HasErrors())

	multi.Add(ErrTimeout)
	multi.Add(ErrProviderUnavailable)
	require.True(t, multi.HasErrors())
	assert.Len(t, multi.Errors, 2)
	assert.Contains(t, multi.Error(), "multiple errors (2)")
}

func TestWrapNilPassthrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
	assert.NoError(t, Wrapf(nil, "context %d", 1))
}
