package chaincode

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledger/internal/testing/fake"
)

func TestSnapshotAdapter_Get(t *testing.T) {
	snap := fake.NewSnapshot()

	adapter := NewSnapshotAdapter("test", snap)

	value, err := adapter.Get([]byte("ping"))
	require.NoError(t, err)
	require.Nil(t, value)

	require.NoError(t, adapter.Set([]byte("ping"), []byte("pong")))

	value, err = adapter.Get([]byte("ping"))
	require.NoError(t, err)
	require.Equal(t, []byte("pong"), value)

	adapter = NewSnapshotAdapter("test", fake.NewBadSnapshot())

	_, err = adapter.Get([]byte("ping"))
	require.EqualError(t, err, fake.Err("failed to read key"))
}

func TestSnapshotAdapter_Set(t *testing.T) {
	adapter := NewSnapshotAdapter("test", fake.NewBadSnapshot())

	err := adapter.Set([]byte("ping"), []byte("pong"))
	require.EqualError(t, err, fake.Err("failed to write key"))
}

func TestSnapshotAdapter_Exists(t *testing.T) {
	snap := fake.NewSnapshot()

	adapter := NewSnapshotAdapter("test", snap)

	found, err := adapter.Exists([]byte("ping"))
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, adapter.Set([]byte("ping"), []byte("pong")))

	found, err = adapter.Exists([]byte("ping"))
	require.NoError(t, err)
	require.True(t, found)

	adapter = NewSnapshotAdapter("test", fake.NewBadSnapshot())

	_, err = adapter.Exists([]byte("ping"))
	require.EqualError(t, err, fake.Err("failed to read key"))
}

func TestSnapshotAdapter_Scoping(t *testing.T) {
	snap := fake.NewSnapshot()

	token := NewSnapshotAdapter("token", snap)
	other := NewSnapshotAdapter("other", snap)

	require.NoError(t, token.Set([]byte("ping"), []byte("pong")))

	// The same key read from another scope must be absent.
	value, err := other.Get([]byte("ping"))
	require.NoError(t, err)
	require.Nil(t, value)

	found, err := other.Exists([]byte("ping"))
	require.NoError(t, err)
	require.False(t, found)
}
