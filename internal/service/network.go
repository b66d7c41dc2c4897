package service

import "sync/atomic"

// Network 设备连接状态的只读视图
// 由外层（UI 的网络监听 / 回放进程的探测）注入，本核心只读取
type Network interface {
	Offline() bool
}

// NetworkState Network 的原子布尔实现
type NetworkState struct {
	offline atomic.Bool
}

// NewNetworkState 创建连接状态，初始为在线
func NewNetworkState() *NetworkState { return &NetworkState{} }

func (s *NetworkState) SetOffline(v bool) { s.offline.Store(v) }

func (s *NetworkState) Offline() bool { return s.offline.Load() }
