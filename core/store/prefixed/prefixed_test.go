package prefixed

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledger/internal/testing/fake"
)

func TestSnapshot_GetSet(t *testing.T) {
	inner := fake.NewSnapshot()

	snap := NewSnapshot("scope", inner)

	require.NoError(t, snap.Set([]byte("ping"), []byte("pong")))

	value, err := snap.Get([]byte("ping"))
	require.NoError(t, err)
	require.Equal(t, []byte("pong"), value)

	// The raw key must not exist in the underlying snapshot.
	value, err = inner.Get([]byte("ping"))
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestSnapshot_Isolation(t *testing.T) {
	inner := fake.NewSnapshot()

	first := NewSnapshot("first", inner)
	second := NewSnapshot("second", inner)

	require.NoError(t, first.Set([]byte("ping"), []byte("pong")))

	value, err := second.Get([]byte("ping"))
	require.NoError(t, err)
	require.Nil(t, value)

	require.NoError(t, first.Delete([]byte("ping")))

	value, err = first.Get([]byte("ping"))
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestReadable_Get(t *testing.T) {
	inner := fake.NewSnapshot()

	require.NoError(t, NewSnapshot("scope", inner).Set([]byte("ping"), []byte("pong")))

	value, err := NewReadable("scope", inner).Get([]byte("ping"))
	require.NoError(t, err)
	require.Equal(t, []byte("pong"), value)
}

func TestNewPrefixedKey(t *testing.T) {
	key := NewPrefixedKey([]byte("abc"), []byte("def"))
	require.Len(t, key, 32)

	// Moving bytes between the prefix and the key must change the digest.
	other := NewPrefixedKey([]byte("abcd"), []byte("ef"))
	require.NotEqual(t, key, other)

	require.Equal(t, key, NewPrefixedKey([]byte("abc"), []byte("def")))
}
