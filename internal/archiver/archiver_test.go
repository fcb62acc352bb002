package archiver_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Slade66/observable-monitor/internal/archiver"
	"github.com/Slade66/observable-monitor/internal/monitor"
	"github.com/Slade66/observable-monitor/internal/status"
	"github.com/Slade66/observable-monitor/pkg/change"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetOutput(io.Discard)
}

type fakeUploader struct {
	objects map[string][]byte
	err     error
}

func (f *fakeUploader) UploadBytes(key string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func setup(t *testing.T, up archiver.Uploader, batch int64) (*redis.Client, *archiver.Archiver) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	a := archiver.New(rdb, up, archiver.Config{
		Stream:    status.StreamName,
		Consumer:  "test-worker",
		BatchSize: batch,
		Block:     -1,
	})
	require.NoError(t, a.EnsureGroup(context.Background()))
	// 第二次调用命中 BUSYGROUP
	require.NoError(t, a.EnsureGroup(context.Background()))
	return rdb, a
}

func produce(t *testing.T, rdb *redis.Client, values ...float64) {
	t.Helper()
	tm := monitor.NewTemperatureMonitor(monitor.DefaultTemperature)
	tm.AddObserver(status.NewObserver(status.NewManager(rdb), time.Second))
	for _, v := range values {
		require.NoError(t, tm.SetTemperature(v))
	}
}

func pending(t *testing.T, rdb *redis.Client) int64 {
	t.Helper()
	p, err := rdb.XPending(context.Background(), status.StreamName, archiver.DefaultGroupName).Result()
	require.NoError(t, err)
	return p.Count
}

func TestArchiver_ProcessOnceUploadsBatchAndAcks(t *testing.T) {
	up := &fakeUploader{}
	rdb, a := setup(t, up, 10)
	produce(t, rdb, 28, 32, 29)

	n, err := a.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, up.objects, 1)
	for key, data := range up.objects {
		assert.True(t, strings.HasPrefix(key, "changes/"))
		assert.True(t, strings.HasSuffix(key, ".jsonl"))
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 3)
		r, err := change.Unmarshal([]byte(lines[2]))
		require.NoError(t, err)
		assert.Equal(t, 29.0, r.NewValue)
	}
	assert.Equal(t, int64(0), pending(t, rdb))

	// 没有新消息时什么也不做
	n, err = a.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestArchiver_UploadFailureLeavesMessagesPending(t *testing.T) {
	up := &fakeUploader{err: errors.New("obs unavailable")}
	rdb, a := setup(t, up, 10)
	produce(t, rdb, 28, 32)

	n, err := a.ProcessOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, int64(2), pending(t, rdb))
}

func TestArchiver_FailedBatchIsRetriedBeforeNewMessages(t *testing.T) {
	up := &fakeUploader{err: errors.New("obs unavailable")}
	rdb, a := setup(t, up, 10)
	produce(t, rdb, 28, 32)

	_, err := a.ProcessOnce(context.Background())
	require.Error(t, err)
	require.Equal(t, int64(2), pending(t, rdb))

	// 上传失败之后又有新的变更进入 Stream
	produce(t, rdb, 35)
	up.err = nil

	n, err := a.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "pending batch is archived first")
	assert.Equal(t, int64(0), pending(t, rdb))
	require.Len(t, up.objects, 1)

	n, err = a.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, up.objects, 2)

	n, err = a.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestArchiver_MalformedPayloadIsAckedAndSkipped(t *testing.T) {
	up := &fakeUploader{}
	rdb, a := setup(t, up, 10)
	ctx := context.Background()
	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{Stream: status.StreamName, Values: map[string]interface{}{"payload": "{broken"}}).Err())
	produce(t, rdb, 31)

	n, err := a.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(0), pending(t, rdb))
}

func TestArchiver_BatchSizeLimitsObjects(t *testing.T) {
	up := &fakeUploader{}
	rdb, a := setup(t, up, 2)
	produce(t, rdb, 26, 27, 28)

	n, err := a.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = a.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, up.objects, 2)
}

func TestArchiver_RunStopsOnCancel(t *testing.T) {
	up := &fakeUploader{}
	rdb, a := setup(t, up, 10)
	produce(t, rdb, 28)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := a.Run(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, up.objects, 1)
}

func TestObjectKey(t *testing.T) {
	r := change.Record{ChangedAt: time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)}
	assert.Equal(t, "changes/2026/10/19/1-0.jsonl", archiver.ObjectKey(r, "1-0"))
}
