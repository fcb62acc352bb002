package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Slade66/observable-monitor/internal/api"
	"github.com/Slade66/observable-monitor/internal/client"
	"github.com/Slade66/observable-monitor/internal/config"
	"github.com/Slade66/observable-monitor/internal/history"
	"github.com/Slade66/observable-monitor/internal/logging"
	"github.com/Slade66/observable-monitor/internal/metrics"
	"github.com/Slade66/observable-monitor/internal/monitor"
	"github.com/Slade66/observable-monitor/internal/observer"
	"github.com/Slade66/observable-monitor/internal/status"
	"github.com/gin-gonic/gin"
	gometrics "github.com/hashicorp/go-metrics"
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
		log.Fatalf("❌ API 无法连接到 Redis: %v", err)
	}
	log.Info("✅ API 成功连接到 Redis!")
	return rdb
}

func main() {
	logLevel := flag.String("log_level", "info", "日志级别")
	logFile := flag.String("log_filename", "", "日志文件 (为空则输出到 stdout)")
	flag.Parse()

	if err := logging.Init(logging.Options{Level: *logLevel, Filename: *logFile}); err != nil {
		fmt.Println("错误:", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置错误: %v", err)
	}

	// 初始化
	rdb := initRedis(cfg)
	defer rdb.Close()
	statusManager := status.NewManager(rdb, status.WithMaxLen(cfg.StreamMaxLen))

	historyStore, err := history.NewSQLiteStore(cfg.HistoryDB)
	if err != nil {
		log.Fatalf("❌ 初始化历史库失败: %v", err)
	}
	defer historyStore.Close()

	m, sink, err := metrics.NewInmem("observable-monitor", 10*time.Second, time.Minute)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	gometrics.DefaultInmemSignal(sink)

	// 注册顺序就是通知顺序：先记录，再告警
	thermometer := monitor.NewTemperatureMonitor(monitor.DefaultTemperature)
	thermometer.AddObserver(observer.NewLogObserver(nil))
	thermometer.AddObserver(history.NewObserver(historyStore))
	thermometer.AddObserver(status.NewObserver(statusManager, cfg.ObserverTimeout))
	thermometer.AddObserver(metrics.NewObserver(m))
	thermometer.AddObserver(observer.NewAlarmObserver(cfg.AlarmThreshold, nil))
	if cfg.WebhookURL != "" {
		thermometer.AddObserver(observer.NewWebhookObserver(cfg.WebhookURL, client.GetClient()))
	}
	log.Infof("✅ 已注册 %d 个观察者", thermometer.Len())

	gin.SetMode(gin.ReleaseMode)
	router := api.NewServer(thermometer, statusManager).Router()

	log.Infof("🚀 API 服务已启动，监听端口 %s", cfg.HTTPAddr)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("❌ API 服务退出: %v", err)
	}
}
