// internal/uploader/obs_uploader.go
package uploader

import (
	"bytes"
	"fmt"

	"github.com/huaweicloud/huaweicloud-sdk-go-obs/obs"
	log "github.com/sirupsen/logrus"
)

// ObsUploader 结构体封装了 OBS 客户端和配置
type ObsUploader struct {
	client *obs.ObsClient
	bucket string
}

// 与 SDK 默认值一致
const defaultMaxRetries = 3

// Option 调整 OBS 客户端的配置
type Option func(*options)

type options struct {
	pathStyle  bool
	maxRetries int
}

// WithPathStyle 使用路径风格的访问地址 (endpoint/bucket/key)，私有部署或 IP 形式的 endpoint 需要打开
func WithPathStyle() Option {
	return func(o *options) { o.pathStyle = true }
}

// WithMaxRetries 设置请求失败后的最大重试次数
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

// NewObsUploader 根据官方文档创建一个新的 OBS 上传器实例
func NewObsUploader(endpoint, ak, sk, bucket string, opts ...Option) (*ObsUploader, error) {
	o := options{maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		opt(&o)
	}

	// obs.New 是创建客户端实例的函数
	client, err := obs.New(ak, sk, endpoint,
		obs.WithPathStyle(o.pathStyle),
		obs.WithMaxRetryCount(o.maxRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("无法创建 OBS 客户端: %w", err)
	}

	return &ObsUploader{
		client: client,
		bucket: bucket,
	}, nil
}

// UploadBytes 把内存中的数据作为一个对象上传到 OBS
func (u *ObsUploader) UploadBytes(objectKey string, data []byte) error {
	// PutObjectInput 是上传数据流所需的参数结构体
	input := &obs.PutObjectInput{}
	input.Bucket = u.bucket
	input.Key = objectKey // objectKey 是对象在 OBS 桶中的名字/路径
	input.Body = bytes.NewReader(data)
	input.ContentType = "application/x-ndjson"

	output, err := u.client.PutObject(input)
	if err != nil {
		// 尝试解析 OBS 返回的详细错误信息
		if obsError, ok := err.(obs.ObsError); ok {
			return fmt.Errorf("上传失败，OBS错误码: %s, 错误信息: %s", obsError.Code, obsError.Message)
		}
		return fmt.Errorf("上传对象到 OBS 失败: %w", err)
	}

	log.Infof("对象 '%s' 已成功上传到 OBS 桶 '%s' (%d 字节, ETag: %s)", objectKey, u.bucket, len(data), output.ETag)
	return nil
}

// Close 关闭客户端连接
func (u *ObsUploader) Close() {
	if u.client != nil {
		u.client.Close()
	}
}
