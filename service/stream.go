package service

import "sync"

// 集合名常量，与实时推送事件及回收站类型一一对应
const (
	CollectionMembers       = "members"
	CollectionSubscriptions = "subscriptions"
	CollectionExpenses      = "expenses"
	CollectionTrash         = "trash"
)

// 事件动作常量。
// 回收站集合上 removed 表示墓碑因内容恢复而出站，purged 表示数据被永久删除
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionTrashed  = "trashed"
	ActionRestored = "restored"
	ActionRemoved  = "removed"
	ActionPurged   = "purged"
)

// Event 集合变更事件，推送给实时订阅的客户端
type Event struct {
	Collection string `json:"collection"`
	Action     string `json:"action"`
	ID         string `json:"id"`
}

// Hub 进程内的集合变更广播器：写入流水线在每次成功写入后发布事件，
// SSE 端点据此通知前端刷新对应集合的本地快照
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewHub 创建广播器
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe 订阅变更事件，返回事件通道和取消函数
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish 广播事件；慢消费者直接丢弃，避免阻塞写入流水线
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// SubscriberCount 当前订阅者数量
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Streams 全局广播器实例
var Streams = NewHub()
