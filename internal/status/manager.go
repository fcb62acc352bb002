package status

import (
	"context"
	"fmt"
	"time"

	"github.com/Slade66/observable-monitor/pkg/change"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	// StreamName 是变更记录投递到的 Redis Stream 键名
	StreamName = "property_changes"
	// PayloadField 是 Stream 消息中存放记录 JSON 的字段
	PayloadField = "payload"
	// UpdatedAtField 是状态 Hash 中记录最后更新时间的字段
	UpdatedAtField = "updated_at"
)

// Manager 结构体封装了与Redis的交互：每个主题的最新状态存放在 Hash 中，变更历史追加到 Stream
type Manager struct {
	rdb       *redis.Client
	stream    string
	maxLen    int64
	keyPrefix string
}

// Option 用于配置 Manager
type Option func(*Manager)

// WithStream 设置 Stream 键名
func WithStream(name string) Option {
	return func(m *Manager) {
		m.stream = name
	}
}

// WithMaxLen 限制 Stream 的近似长度，0 表示不限制
func WithMaxLen(n int64) Option {
	return func(m *Manager) {
		m.maxLen = n
	}
}

// NewManager 创建一个新的状态管理器实例
func NewManager(rdb *redis.Client, opts ...Option) *Manager {
	m := &Manager{
		rdb:       rdb,
		stream:    StreamName,
		keyPrefix: "subject:state:",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Stream 返回变更记录所在的 Stream 键名
func (m *Manager) Stream() string {
	return m.stream
}

// stateKey 返回一个主题状态在Redis中的键名
func (m *Manager) stateKey(subject string) string {
	return m.keyPrefix + subject
}

// RecordChange 更新主题的最新状态，并把变更记录追加到 Stream
func (m *Manager) RecordChange(ctx context.Context, r change.Record) error {
	value, err := change.EncodeValue(r.NewValue)
	if err != nil {
		return err
	}
	payload, err := r.Marshal()
	if err != nil {
		return err
	}

	// 两个写操作放在同一个事务管道里
	_, err = m.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, m.stateKey(r.Subject), map[string]interface{}{
			r.Property:     value,
			UpdatedAtField: r.ChangedAt.UTC().Format(time.RFC3339Nano),
		})
		args := &redis.XAddArgs{
			Stream: m.stream,
			Values: map[string]interface{}{PayloadField: payload},
		}
		if m.maxLen > 0 {
			args.MaxLen = m.maxLen
			args.Approx = true
		}
		pipe.XAdd(ctx, args)
		return nil
	})
	if err != nil {
		return fmt.Errorf("无法写入变更记录 %s: %w", r.ID, err)
	}
	return nil
}

// GetState 返回主题所有属性的最新值 (JSON 编码) 以及 updated_at
func (m *Manager) GetState(ctx context.Context, subject string) (map[string]string, error) {
	data, err := m.rdb.HGetAll(ctx, m.stateKey(subject)).Result()
	if err != nil {
		return nil, fmt.Errorf("无法读取主题 '%s' 的状态: %w", subject, err)
	}
	return data, nil
}

// RecentChanges 返回最近的 count 条变更记录，最新的在前
func (m *Manager) RecentChanges(ctx context.Context, count int64) ([]change.Record, error) {
	msgs, err := m.rdb.XRevRangeN(ctx, m.stream, "+", "-", count).Result()
	if err != nil {
		return nil, fmt.Errorf("无法从 Redis Stream 读取变更记录: %w", err)
	}

	records := make([]change.Record, 0, len(msgs))
	for _, msg := range msgs {
		payload, ok := msg.Values[PayloadField].(string)
		if !ok {
			log.Warnf("警告: Stream 消息 %s 缺少 payload 字段", msg.ID)
			continue
		}
		r, err := change.Unmarshal([]byte(payload))
		if err != nil {
			// 某条消息无法解析时记录日志并跳过，继续处理其他的
			log.Warnf("警告: 无法解析 Stream 消息 %s: %v", msg.ID, err)
			continue
		}
		records = append(records, r)
	}
	return records, nil
}
