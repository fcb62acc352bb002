package status_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/Slade66/observable-monitor/internal/monitor"
	"github.com/Slade66/observable-monitor/internal/status"
	"github.com/Slade66/observable-monitor/pkg/change"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetOutput(io.Discard)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestManager_RecordChange(t *testing.T) {
	_, rdb := newRedis(t)
	m := status.NewManager(rdb)
	ctx := context.Background()

	changedAt := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	first := change.Record{ID: uuid.New(), Subject: "thermometer", Property: "temperature", OldValue: 25.0, NewValue: 28.0, ChangedAt: changedAt}
	second := change.Record{ID: uuid.New(), Subject: "thermometer", Property: "temperature", OldValue: 28.0, NewValue: 32.0, ChangedAt: changedAt.Add(time.Minute)}
	require.NoError(t, m.RecordChange(ctx, first))
	require.NoError(t, m.RecordChange(ctx, second))

	state, err := m.GetState(ctx, "thermometer")
	require.NoError(t, err)
	assert.Equal(t, "32", state["temperature"])
	assert.Equal(t, "2026-10-19T08:31:00Z", state[status.UpdatedAtField])

	records, err := m.RecentChanges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)
	assert.Equal(t, 32.0, records[0].NewValue)
	assert.True(t, changedAt.Equal(records[1].ChangedAt))
}

func TestManager_RecentChangesSkipsMalformedMessages(t *testing.T) {
	_, rdb := newRedis(t)
	m := status.NewManager(rdb, status.WithStream("changes-test"))
	ctx := context.Background()

	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{Stream: "changes-test", Values: map[string]interface{}{"payload": "not json"}}).Err())
	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{Stream: "changes-test", Values: map[string]interface{}{"other": "x"}}).Err())
	require.NoError(t, m.RecordChange(ctx, change.Record{ID: uuid.New(), Subject: "s", Property: "p", NewValue: "on", ChangedAt: time.Now()}))

	records, err := m.RecentChanges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "on", records[0].NewValue)
	assert.Equal(t, "changes-test", m.Stream())
}

func TestObserver_WritesEveryTemperatureChange(t *testing.T) {
	_, rdb := newRedis(t)
	m := status.NewManager(rdb, status.WithMaxLen(1000))
	tm := monitor.NewTemperatureMonitor(monitor.DefaultTemperature)
	tm.AddObserver(status.NewObserver(m, time.Second))

	require.NoError(t, tm.SetTemperature(28))
	require.NoError(t, tm.SetTemperature(28))
	require.NoError(t, tm.SetTemperature(32))

	ctx := context.Background()
	n, err := rdb.XLen(ctx, status.StreamName).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	state, err := m.GetState(ctx, monitor.SubjectName)
	require.NoError(t, err)
	assert.Equal(t, "32", state[monitor.PropertyTemperature])
}

func TestObserver_ReportsRedisFailure(t *testing.T) {
	mr, rdb := newRedis(t)
	m := status.NewManager(rdb)
	tm := monitor.NewTemperatureMonitor(monitor.DefaultTemperature)
	tm.AddObserver(status.NewObserver(m, 200*time.Millisecond))
	mr.Close()

	err := tm.SetTemperature(30)

	assert.Error(t, err)
	assert.Equal(t, 30.0, tm.Temperature())
}
