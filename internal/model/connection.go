package model

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSConnection /ws/chat 连接。只记录连接本身，不保存任何对话内容。
type WSConnection struct {
	ID       string
	ClientIP string
	Conn     *websocket.Conn
	OpenedAt time.Time
	lastSeen time.Time
	mu       sync.Mutex // gorilla/websocket 不支持并发写
}

// NewWSConnection 创建连接记录
func NewWSConnection(id, clientIP string, conn *websocket.Conn) *WSConnection {
	now := time.Now()
	return &WSConnection{
		ID:       id,
		ClientIP: clientIP,
		Conn:     conn,
		OpenedAt: now,
		lastSeen: now,
	}
}

// Touch 收到帧时更新活跃时间
func (c *WSConnection) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = time.Now()
}

// IdleFor 距离上次收到帧的时间
func (c *WSConnection) IdleFor(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSeen)
}

// WriteJSON 线程安全写入
func (c *WSConnection) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Close 发送关闭帧后关闭连接
func (c *WSConnection) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, reason)
	_ = c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.Conn.Close()
}
