package service

import (
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// ErrorKind 远端调用失败分类
type ErrorKind int

const (
	// ErrKindNetwork 网络不可达 / 超时（请求未完成）
	ErrKindNetwork ErrorKind = iota + 1
	// ErrKindValidation 服务端拒绝请求体（4xx，带字段错误）
	ErrKindValidation
	// ErrKindServer 服务端故障（5xx）
	ErrKindServer
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindNetwork:
		return "network"
	case ErrKindValidation:
		return "validation"
	case ErrKindServer:
		return "server"
	default:
		return "unknown"
	}
}

// APIError 后端调用错误，在 HTTP 边界归一化
// 4xx 的响应体原样透传给调用方展示（与移动端的错误提示行为一致）
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// normalizeError 把 resty 的传输错误 / 非 2xx 响应归一化为 *APIError
// 成功响应返回 nil
func normalizeError(resp *resty.Response, err error) *APIError {
	if err != nil {
		return &APIError{Kind: ErrKindNetwork, Message: err.Error()}
	}
	if resp == nil || !resp.IsError() {
		return nil
	}
	code := resp.StatusCode()
	kind := ErrKindServer
	if code >= 400 && code < 500 {
		kind = ErrKindValidation
	}
	return &APIError{Kind: kind, StatusCode: code, Message: errorBody(resp.Body(), code)}
}

// errorBody 提取用户可读的错误文本：
// JSON 对象保持原文（字段级错误），其余情况退化为通用消息
func errorBody(body []byte, code int) string {
	if len(body) > 0 && json.Valid(body) {
		return string(body)
	}
	if len(body) > 0 {
		return string(body)
	}
	return fmt.Sprintf("request failed with status %d", code)
}
