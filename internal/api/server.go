package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Slade66/observable-monitor/internal/monitor"
	"github.com/Slade66/observable-monitor/internal/status"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const defaultChangeCount = 20

// Named 是可以报告自己名称的观察者
type Named interface {
	Name() string
}

// Server 把一个温度计暴露为 HTTP 接口
type Server struct {
	monitor *monitor.TemperatureMonitor
	status  *status.Manager
}

// NewServer 创建 HTTP 服务，statusManager 可以为 nil，此时 /api/changes 返回 503
func NewServer(m *monitor.TemperatureMonitor, statusManager *status.Manager) *Server {
	return &Server{monitor: m, status: statusManager}
}

// Router 返回注册好所有路由的 gin.Engine
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/temperature", s.getTemperatureHandler)
		api.PUT("/temperature", s.setTemperatureHandler)
		api.GET("/observers", s.getObserversHandler)
		api.GET("/changes", s.getChangesHandler)
	}
	return router
}

func (s *Server) getTemperatureHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"temperature": s.monitor.Temperature()})
}

// setTemperatureHandler 更新温度。值已经保存后观察者的错误只在响应中报告，不视为请求失败。
func (s *Server) setTemperatureHandler(c *gin.Context) {
	var request struct {
		Value *float64 `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求: " + err.Error()})
		return
	}

	before := s.monitor.Temperature()
	err := s.monitor.SetTemperature(*request.Value)
	resp := gin.H{
		"changed":     before != *request.Value,
		"temperature": s.monitor.Temperature(),
	}
	if err != nil {
		log.Warnf("⚠️ 部分观察者处理温度变化失败: %v", err)
		resp["observer_errors"] = splitErrors(err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getObserversHandler(c *gin.Context) {
	observers := s.monitor.Observers()
	names := make([]string, 0, len(observers))
	for _, o := range observers {
		if n, ok := o.(Named); ok {
			names = append(names, n.Name())
		} else {
			names = append(names, fmt.Sprintf("%T", o))
		}
	}
	c.JSON(http.StatusOK, gin.H{"observers": names})
}

func (s *Server) getChangesHandler(c *gin.Context) {
	if s.status == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "未配置变更存储"})
		return
	}
	count := int64(defaultChangeCount)
	if v := c.Query("count"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count 必须是正整数"})
			return
		}
		count = n
	}

	records, err := s.status.RecentChanges(c.Request.Context(), count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法从 Redis 获取变更记录: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// splitErrors 把 errors.Join 的结果拆成字符串列表
func splitErrors(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		out := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
