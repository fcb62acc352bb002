// internal/client/singleton_client.go
package client

import (
	"net/http"
	"sync"
	"time"
)

// DefaultTimeout 是共享 http.Client 的请求超时
const DefaultTimeout = 30 * time.Second

var (
	instance *http.Client
	once     sync.Once
)

// GetClient 返回 http.Client 的单例
// 只应在组合根 (main) 中调用，然后通过构造函数注入给 session.New、observer.NewWebhookObserver 等使用方
func GetClient() *http.Client {
	once.Do(func() {
		instance = &http.Client{
			Timeout: DefaultTimeout,
		}
	})
	return instance
}
