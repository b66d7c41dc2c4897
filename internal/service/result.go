package service

import "encoding/json"

// Result 分配族操作的统一返回形态：不抛异常，调用方按字段分支
// 与移动端 {success, data?, error?} 约定保持一致
type Result struct {
	Success bool
	// Data 服务端响应体（成功时）
	Data json.RawMessage
	// Err 失败原因（*APIError 或缓存写入错误）
	Err error
	// OfflineQueued 设备离线，动作已入队等待回放，未发起网络调用
	OfflineQueued bool
	// FromCache 结果来自本地缓存（离线乐观写）
	FromCache bool
}

func ok(data json.RawMessage) Result {
	return Result{Success: true, Data: data}
}

func fail(err error) Result {
	return Result{Success: false, Err: err}
}
