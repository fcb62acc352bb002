// internal/session/session.go
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Slade66/observable-monitor/internal/observer"
)

const (
	// DefaultSlowThreshold 超过这个耗时的响应会被标记为慢响应
	DefaultSlowThreshold = 2 * time.Second
	// DefaultSubjectName 是会话主题的默认名称
	DefaultSubjectName = "api-session"
)

// Session 包装了 http.Client，在每个请求前后通知观察者
type Session struct {
	*observer.Subject
	client        *http.Client
	slowThreshold time.Duration
	subjectName   string
	last          map[string]any
	mu            sync.Mutex
}

// Option 用于配置 Session
type Option func(*Session)

// WithSlowThreshold 设置慢响应阈值
func WithSlowThreshold(d time.Duration) Option {
	return func(s *Session) {
		s.slowThreshold = d
	}
}

// WithSubjectName 设置会话主题在通知中的名称
func WithSubjectName(name string) Option {
	return func(s *Session) {
		s.subjectName = name
	}
}

// New 创建一个可观察的 HTTP 会话
func New(client *http.Client, opts ...Option) *Session {
	s := &Session{
		client:        client,
		slowThreshold: DefaultSlowThreshold,
		subjectName:   DefaultSubjectName,
		last:          make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Subject = observer.NewSubject(s.subjectName)
	return s
}

// Get 发送 GET 请求
func (s *Session) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("无法创建请求: %w", err)
	}
	return s.Do(req)
}

// PostJSON 把 body 编码为 JSON 并发送 POST 请求
func (s *Session) PostJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("无法序列化请求体: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("无法创建请求: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return s.Do(req)
}

// Do 发送请求，依次发布 request 以及 response 或 error 通知。
// 观察者的错误只记录日志，不影响请求结果。
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	method := strings.ToUpper(req.Method)
	url := req.URL.String()

	s.publish(PropertyRequest, RequestEvent{
		Method:  method,
		URL:     url,
		Payload: requestPayload(req),
	})

	start := time.Now()
	resp, err := s.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		s.publish(PropertyError, ErrorEvent{Method: method, URL: url, Err: err})
		return nil, err
	}

	preview, err := peekBody(resp)
	if err != nil {
		resp.Body.Close()
		s.publish(PropertyError, ErrorEvent{Method: method, URL: url, Err: err})
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	s.publish(PropertyResponse, ResponseEvent{
		Method:      method,
		URL:         url,
		StatusCode:  resp.StatusCode,
		Elapsed:     elapsed,
		BodyPreview: preview,
		Slow:        elapsed > s.slowThreshold,
	})
	return resp, nil
}

// publish 以同一属性的上一个事件作为旧值发布通知
func (s *Session) publish(property string, event any) {
	s.mu.Lock()
	old := s.last[property]
	s.last[property] = event
	s.mu.Unlock()

	// 错误已经由 Subject 记录，这里不再向调用方传播
	_ = s.NotifyObservers(property, old, event)
}

// requestPayload 读取请求体的副本用于通知，不消耗原始请求体
func requestPayload(req *http.Request) string {
	if req.Body == nil || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return ""
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, previewLimit))
	if err != nil {
		return ""
	}
	return string(data)
}

// peekBody 读取响应体的前 previewLimit 个字节，并把它们放回响应体供调用方继续读取
func peekBody(resp *http.Response) (string, error) {
	buf := make([]byte, previewLimit)
	n, err := io.ReadFull(resp.Body, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	buf = buf[:n]
	resp.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf), resp.Body), resp.Body}
	return string(buf), nil
}
