package archiver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Slade66/observable-monitor/pkg/change"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultGroupName 是消费者组的名称
	DefaultGroupName = "archive-group"
	// DefaultBatchSize 是每个归档对象最多包含的记录数
	DefaultBatchSize = 100
	// DefaultBlock 是读取 Stream 时的阻塞时间
	DefaultBlock = 5 * time.Second
	// retryDelay 是读取失败后的等待时间
	retryDelay = 5 * time.Second

	// pendingID 读取本消费者已读取但尚未 ACK 的消息
	pendingID = "0"
	// newMessagesID 表示只接收从未被消费过的新消息
	newMessagesID = ">"
)

// Uploader 把一个对象写入归档存储
type Uploader interface {
	UploadBytes(objectKey string, data []byte) error
}

// Config 是归档器的配置
type Config struct {
	Stream    string
	Group     string
	Consumer  string
	BatchSize int64
	// Block 为负数时不阻塞，没有消息立即返回
	Block time.Duration
}

// Archiver 从 Redis Stream 消费变更记录，批量写成 JSON Lines 对象上传
type Archiver struct {
	rdb      *redis.Client
	uploader Uploader
	cfg      Config
}

// New 创建一个归档器，未设置的配置项使用默认值
func New(rdb *redis.Client, uploader Uploader, cfg Config) *Archiver {
	if cfg.Group == "" {
		cfg.Group = DefaultGroupName
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Block == 0 {
		cfg.Block = DefaultBlock
	}
	return &Archiver{rdb: rdb, uploader: uploader, cfg: cfg}
}

// EnsureGroup 确保消费者组存在，如果不存在则创建
func (a *Archiver) EnsureGroup(ctx context.Context) error {
	err := a.rdb.XGroupCreateMkStream(ctx, a.cfg.Stream, a.cfg.Group, "0").Err()
	if err != nil {
		if strings.Contains(err.Error(), "BUSYGROUP") {
			log.Infof("消费者组 '%s' 已存在，无需创建。", a.cfg.Group)
			return nil
		}
		return fmt.Errorf("无法创建消费者组: %w", err)
	}
	log.Infof("成功创建消费者组 '%s' 并关联到 Stream '%s'。", a.cfg.Group, a.cfg.Stream)
	return nil
}

// ProcessOnce 归档一批消息，返回归档的记录数。
// 先重试本消费者待确认列表中的消息 (例如上一次上传失败的批次)，没有待确认消息时才读取新消息。
// 无法解析的消息直接 ACK 跳过；上传失败时不 ACK，消息留在待处理列表中等待下一次重试。
func (a *Archiver) ProcessOnce(ctx context.Context) (int, error) {
	n, drained, err := a.processBatch(ctx, pendingID, -1)
	if err != nil || !drained {
		return n, err
	}
	n, _, err = a.processBatch(ctx, newMessagesID, a.cfg.Block)
	return n, err
}

// processBatch 从 startID 开始读取一批消息并归档。
// drained 表示本次没有读到任何消息。
func (a *Archiver) processBatch(ctx context.Context, startID string, block time.Duration) (archived int, drained bool, err error) {
	streams, err := a.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    a.cfg.Group,
		Consumer: a.cfg.Consumer,
		Streams:  []string{a.cfg.Stream, startID},
		Count:    a.cfg.BatchSize,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("从 Redis Stream 读取变更记录失败: %w", err)
	}

	var (
		buf     bytes.Buffer
		ids     []string
		skipped []string
		first   *change.Record
	)
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			payload, _ := msg.Values["payload"].(string)
			r, err := change.Unmarshal([]byte(payload))
			if err != nil {
				log.Warnf("‼️ 无法解析消息 %s: %v，已跳过", msg.ID, err)
				skipped = append(skipped, msg.ID)
				continue
			}
			if first == nil {
				first = &r
			}
			buf.WriteString(payload)
			buf.WriteByte('\n')
			ids = append(ids, msg.ID)
		}
	}

	if len(ids) == 0 && len(skipped) == 0 {
		return 0, true, nil
	}
	if len(skipped) > 0 {
		if err := a.rdb.XAck(ctx, a.cfg.Stream, a.cfg.Group, skipped...).Err(); err != nil {
			log.Errorf("‼️ 无法 ACK 跳过的消息: %v", err)
		}
	}
	if len(ids) == 0 {
		return 0, false, nil
	}

	key := ObjectKey(*first, ids[0])
	if err := a.uploader.UploadBytes(key, buf.Bytes()); err != nil {
		return 0, false, fmt.Errorf("归档对象 %s 上传失败: %w", key, err)
	}

	// 上传成功后再 ACK，表示这批消息已被完全处理
	if err := a.rdb.XAck(ctx, a.cfg.Stream, a.cfg.Group, ids...).Err(); err != nil {
		return len(ids), false, fmt.Errorf("关键错误: 无法 ACK 已归档的消息: %w", err)
	}
	log.Infof("✅ 已归档 %d 条变更记录到 %s", len(ids), key)
	return len(ids), false, nil
}

// Run 是归档器的主循环，直到 ctx 被取消
func (a *Archiver) Run(ctx context.Context) error {
	log.Infof("▶️ 归档器 '%s' 开始监听 Stream '%s'...", a.cfg.Consumer, a.cfg.Stream)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := a.ProcessOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Errorf("❌ %v。%s后重试...", err, retryDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
}

// ObjectKey 返回一批记录的归档对象键，按第一条记录的日期分目录
func ObjectKey(first change.Record, firstID string) string {
	return fmt.Sprintf("changes/%s/%s.jsonl", first.ChangedAt.UTC().Format("2006/01/02"), firstID)
}
