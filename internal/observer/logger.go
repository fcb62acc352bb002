// internal/observer/logger.go
package observer

import (
	log "github.com/sirupsen/logrus"
)

// LogObserver 是一个具体的观察者，用带时间戳的日志记录每次变化
type LogObserver struct {
	logger *log.Logger
}

// NewLogObserver 创建一个日志观察者，logger 为 nil 时使用全局 logger
func NewLogObserver(logger *log.Logger) *LogObserver {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogObserver{logger: logger}
}

// Name 返回观察者名称
func (l *LogObserver) Name() string {
	return "logger"
}

// Update 实现了 Observer 接口
func (l *LogObserver) Update(n Notification) error {
	l.logger.WithFields(log.Fields{
		"subject":         n.SubjectName(),
		"property":        n.Property,
		"notification_id": n.ID.String(),
	}).Infof("📝 LOG: %s updated to %v at %s", n.Property, n.NewValue, n.ChangedAt.Format("15:04:05"))
	return nil
}
