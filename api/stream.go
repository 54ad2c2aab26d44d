package api

import (
	"encoding/json"
	"time"

	"fundbook/service"

	"github.com/gin-gonic/gin"
)

// StreamHandler 实时推送处理器
type StreamHandler struct {
	hub *service.Hub
}

// NewStreamHandler 创建实时推送处理器
func NewStreamHandler() *StreamHandler {
	return &StreamHandler{hub: service.Streams}
}

func writeSSEJSON(c *gin.Context, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = c.Writer.WriteString("data: " + string(b) + "\n\n")
	c.Writer.Flush()
}

// sseHeartbeat 心跳帧，维持代理与浏览器的长连接
type sseHeartbeat struct {
	Type string `json:"type"` // ping
}

// Changes 订阅集合变更（SSE）
// @Summary 订阅集合变更
// @Description SSE 长连接，每次成员/缴费/支出/回收站发生变更时推送一帧 JSON 事件，前端据此刷新对应集合。未登录可只读订阅。
// @Tags 实时
// @Produce text/event-stream
// @Success 200 {string} string "SSE流：data: {\"collection\":\"subscriptions\",\"action\":\"created\",\"id\":\"...\"}"
// @Router /api/v1/stream/changes [get]
func (h *StreamHandler) Changes(c *gin.Context) {
	// SSE响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	events, cancel := h.hub.Subscribe()
	defer cancel()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			writeSSEJSON(c, e)
		case <-heartbeat.C:
			writeSSEJSON(c, sseHeartbeat{Type: "ping"})
		case <-c.Request.Context().Done():
			return
		}
	}
}
