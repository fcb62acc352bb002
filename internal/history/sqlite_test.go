package history_test

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/Slade66/observable-monitor/internal/history"
	"github.com/Slade66/observable-monitor/internal/monitor"
	"github.com/Slade66/observable-monitor/pkg/change"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetOutput(io.Discard)
}

func newStore(t *testing.T) *history.SQLiteStore {
	t.Helper()
	store, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_AppendAndList(t *testing.T) {
	store := newStore(t)
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	records := []change.Record{
		{ID: uuid.New(), Subject: "thermometer", Property: "temperature", OldValue: 25.0, NewValue: 28.0, ChangedAt: base},
		{ID: uuid.New(), Subject: "thermometer", Property: "humidity", OldValue: nil, NewValue: 40.0, ChangedAt: base.Add(time.Second)},
		{ID: uuid.New(), Subject: "thermometer", Property: "temperature", OldValue: 28.0, NewValue: 32.0, ChangedAt: base.Add(2 * time.Second)},
		{ID: uuid.New(), Subject: "other", Property: "temperature", OldValue: 1.0, NewValue: 2.0, ChangedAt: base},
	}
	for _, r := range records {
		require.NoError(t, store.Append(r))
	}

	got, err := store.List("thermometer", "temperature", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[2].ID, got[0].ID)
	assert.Equal(t, 28.0, got[0].OldValue)
	assert.Equal(t, 32.0, got[0].NewValue)
	assert.True(t, records[2].ChangedAt.Equal(got[0].ChangedAt))
	assert.Equal(t, records[0].ID, got[1].ID)

	all, err := store.List("thermometer", "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Nil(t, all[1].OldValue)

	limited, err := store.List("thermometer", "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStore_DuplicateIDIsRejected(t *testing.T) {
	store := newStore(t)
	r := change.Record{ID: uuid.New(), Subject: "s", Property: "p", NewValue: 1, ChangedAt: time.Now()}

	require.NoError(t, store.Append(r))
	assert.Error(t, store.Append(r))
}

func TestObserver_RecordsMonitorChanges(t *testing.T) {
	store := newStore(t)
	tm := monitor.NewTemperatureMonitor(monitor.DefaultTemperature)
	tm.AddObserver(history.NewObserver(store))

	for _, v := range []float64{28, 28, 32, 29} {
		require.NoError(t, tm.SetTemperature(v))
	}

	got, err := store.List(monitor.SubjectName, monitor.PropertyTemperature, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 29.0, got[0].NewValue)
	assert.Equal(t, 32.0, got[0].OldValue)
}
