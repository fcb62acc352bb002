package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 汇总了各个进程从环境变量读取的配置
type Config struct {
	RedisAddr     string
	RedisPassword string

	ObsEndpoint  string
	ObsAK        string
	ObsSK        string
	ObsBucket    string
	ObsPathStyle bool

	HTTPAddr        string
	HistoryDB       string
	AlarmThreshold  float64
	WebhookURL      string
	StreamMaxLen    int64
	ObserverTimeout time.Duration
}

// Load 从环境变量读取配置，未设置的项使用默认值
func Load() (Config, error) {
	cfg := Config{
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		ObsEndpoint:     os.Getenv("OBS_ENDPOINT"),
		ObsAK:           os.Getenv("OBS_AK"),
		ObsSK:           os.Getenv("OBS_SK"),
		ObsBucket:       os.Getenv("OBS_BUCKET"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		HistoryDB:       getenv("HISTORY_DB", "history.db"),
		WebhookURL:      os.Getenv("WEBHOOK_URL"),
		AlarmThreshold:  30,
		StreamMaxLen:    10000,
		ObserverTimeout: 2 * time.Second,
	}

	var err error
	if v := os.Getenv("ALARM_THRESHOLD"); v != "" {
		if cfg.AlarmThreshold, err = strconv.ParseFloat(v, 64); err != nil {
			return Config{}, fmt.Errorf("无效的 ALARM_THRESHOLD %q: %w", v, err)
		}
	}
	if v := os.Getenv("STREAM_MAX_LEN"); v != "" {
		if cfg.StreamMaxLen, err = strconv.ParseInt(v, 10, 64); err != nil {
			return Config{}, fmt.Errorf("无效的 STREAM_MAX_LEN %q: %w", v, err)
		}
	}
	if v := os.Getenv("OBS_PATH_STYLE"); v != "" {
		if cfg.ObsPathStyle, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("无效的 OBS_PATH_STYLE %q: %w", v, err)
		}
	}
	if v := os.Getenv("OBSERVER_TIMEOUT"); v != "" {
		if cfg.ObserverTimeout, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("无效的 OBSERVER_TIMEOUT %q: %w", v, err)
		}
	}
	return cfg, nil
}

// ObsConfigured 判断 OBS 配置是否完整
func (c Config) ObsConfigured() bool {
	return c.ObsEndpoint != "" && c.ObsAK != "" && c.ObsSK != "" && c.ObsBucket != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
