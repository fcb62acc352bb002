package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 控制日志级别和输出位置
type Options struct {
	Level        string
	Filename     string
	AlsoToStderr bool
}

// Init 初始化全局 logrus。Filename 为空时输出到 stdout，否则按大小滚动写入文件。
func Init(opts Options) error {
	if opts.Level == "" {
		opts.Level = "info"
	}
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("无效的日志级别 %q: %w", opts.Level, err)
	}
	log.SetLevel(level)
	log.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
		ForceFormatting: true,
	})

	if opts.Filename == "" {
		log.SetOutput(os.Stdout)
		return nil
	}

	output := &lumberjack.Logger{
		Filename:   opts.Filename,
		MaxSize:    100, // MB
		MaxAge:     7,
		MaxBackups: 10,
		LocalTime:  true,
	}
	if opts.AlsoToStderr {
		log.SetOutput(io.MultiWriter(output, os.Stderr))
	} else {
		log.SetOutput(output)
	}
	return nil
}
