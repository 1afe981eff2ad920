package lock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTryLock(t *testing.T) {
	locker := NewLocal()
	ctx := context.Background()

	unlock, ok, err := locker.TryLock(ctx, "import:CPU")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "import:CPU")
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	otherUnlock, ok, err := locker.TryLock(ctx, "import:GPU")
	require.NoError(t, err)
	assert.True(t, ok, "different keys do not contend")
	otherUnlock()

	unlock()
	unlock()

	again, ok, err := locker.TryLock(ctx, "import:CPU")
	require.NoError(t, err)
	assert.True(t, ok)
	again()
}

func TestKeyIDStable(t *testing.T) {
	assert.Equal(t, keyID("import:CPU"), keyID("import:CPU"))
	assert.NotEqual(t, keyID("import:CPU"), keyID("import:GPU"))
}
