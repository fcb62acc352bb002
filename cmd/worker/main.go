package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Slade66/observable-monitor/internal/archiver"
	"github.com/Slade66/observable-monitor/internal/config"
	"github.com/Slade66/observable-monitor/internal/logging"
	"github.com/Slade66/observable-monitor/internal/status"
	"github.com/Slade66/observable-monitor/internal/uploader"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// initRedis 初始化 Redis 连接
func initRedis(cfg config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("❌ Worker 无法连接到 Redis: %v", err)
	}
	log.Info("✅ Worker 成功连接到 Redis!")
	return rdb
}

// main 是程序的总入口
func main() {
	logLevel := flag.String("log_level", "info", "日志级别")
	logFile := flag.String("log_filename", "", "日志文件 (为空则输出到 stdout)")
	batch := flag.Int64("batch", archiver.DefaultBatchSize, "每个归档对象最多包含的记录数")
	flag.Parse()

	if err := logging.Init(logging.Options{Level: *logLevel, Filename: *logFile, AlsoToStderr: *logFile != ""}); err != nil {
		fmt.Println("错误:", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置错误: %v", err)
	}
	if !cfg.ObsConfigured() {
		log.Fatalf("❌ OBS 配置不完整，请检查环境变量 OBS_ENDPOINT, OBS_AK, OBS_SK, OBS_BUCKET")
	}

	rdb := initRedis(cfg)
	defer rdb.Close()

	// 初始化 OBS Uploader
	var obsOpts []uploader.Option
	if cfg.ObsPathStyle {
		obsOpts = append(obsOpts, uploader.WithPathStyle())
	}
	obsUploader, err := uploader.NewObsUploader(cfg.ObsEndpoint, cfg.ObsAK, cfg.ObsSK, cfg.ObsBucket, obsOpts...)
	if err != nil {
		log.Fatalf("❌ 初始化 OBS Uploader 失败: %v", err)
	}
	defer obsUploader.Close() // 确保程序退出时关闭客户端
	log.Info("✅ OBS Uploader 初始化成功。")

	consumerName, err := os.Hostname()
	if err != nil {
		consumerName = fmt.Sprintf("worker-%d", time.Now().Unix())
		log.Warnf("⚠️ 无法获取主机名，使用默认消费者名称 '%s'", consumerName)
	}

	a := archiver.New(rdb, obsUploader, archiver.Config{
		Stream:    status.StreamName,
		Consumer:  consumerName,
		BatchSize: *batch,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 确保消费者组存在
	if err := a.EnsureGroup(ctx); err != nil {
		log.Fatalf("❌ %v", err)
	}

	// 启动主处理循环，开始工作
	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("❌ Worker 异常退出: %v", err)
	}
	log.Info("👋 Worker 已停止")
}
