package badgercache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/formazione/core/schedule"
)

func TestStatusStore(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, ok, err := store.GetStatus("s1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetStatus("s1", schedule.StatusConfirm))
	require.NoError(t, store.SetStatus("s2", schedule.StatusQuote))
	require.NoError(t, store.SetStatus("s1", schedule.StatusPayment))

	status, ok, err := store.GetStatus("s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, schedule.StatusPayment, status)

	all, err := store.Statuses()
	require.NoError(t, err)
	assert.Equal(t, map[schedule.ID]schedule.DocumentStatus{
		"s1": schedule.StatusPayment,
		"s2": schedule.StatusQuote,
	}, all)
}

func TestStatusStore_OnDisk(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.SetStatus("s1", schedule.StatusInvoice))
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, ok, err := store.GetStatus("s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, schedule.StatusInvoice, status)
}
