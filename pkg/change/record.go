package change

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record 是一次属性变更的序列化形式，它会作为消息在 Redis Stream、SQLite 和 OBS 归档之间传递。
type Record struct {
	// 通知的唯一标识符，同一次分发的所有观察者看到的是同一个 ID。
	ID uuid.UUID `json:"id"`

	// 触发变更的主题名称，例如 "thermometer"。
	Subject string `json:"subject"`

	// 发生变化的属性名称，例如 "temperature"。
	Property string `json:"property"`

	OldValue any `json:"old_value"`
	NewValue any `json:"new_value"`

	// 变更发生的时间 (UTC)。
	ChangedAt time.Time `json:"changed_at"`
}

// Marshal 将记录编码为 JSON
func (r Record) Marshal() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("无法序列化变更记录 %s: %w", r.ID, err)
	}
	return data, nil
}

// Unmarshal 从 JSON 解析出一条变更记录
func Unmarshal(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("无法解析变更记录: %w", err)
	}
	return r, nil
}

// EncodeValue 将单个属性值编码为 JSON 字符串，用于按字段存储
func EncodeValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("无法序列化属性值: %w", err)
	}
	return string(data), nil
}

// DecodeValue 是 EncodeValue 的逆操作，空字符串解码为 nil
func DecodeValue(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("无法解析属性值 %q: %w", s, err)
	}
	return v, nil
}
