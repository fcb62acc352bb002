package session

import "time"

// 会话在主题上发布的属性名称
const (
	PropertyRequest  = "request"
	PropertyResponse = "response"
	PropertyError    = "error"
)

// previewLimit 是响应体预览的最大字节数
const previewLimit = 100

// RequestEvent 在请求发出之前发布
type RequestEvent struct {
	Method  string
	URL     string
	Payload string
}

// ResponseEvent 在收到响应之后发布
type ResponseEvent struct {
	Method      string
	URL         string
	StatusCode  int
	Elapsed     time.Duration
	BodyPreview string
	Slow        bool
}

// ErrorEvent 在请求失败时发布
type ErrorEvent struct {
	Method string
	URL    string
	Err    error
}
