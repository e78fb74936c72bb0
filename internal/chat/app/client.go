package app

import (
	"context"
	"encoding/json"
	"sync"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// wsClient 單一 websocket 連線與其已訂閱的房間
// fiber(fasthttp) 的 conn 不允許併發寫入，所有寫入都走 send 以 writeMu 序列化
type wsClient struct {
	id   string
	user *domain.User
	conn *websocket.Conn

	writeMu sync.Mutex

	roomsMu sync.Mutex
	rooms   map[string]context.CancelFunc // roomID -> 訂閱取消
}

func newWSClient(connID string, user *domain.User, conn *websocket.Conn) *wsClient {
	return &wsClient{
		id:    connID,
		user:  user,
		conn:  conn,
		rooms: make(map[string]context.CancelFunc),
	}
}

// send 寫一個 JSON frame 給前端
func (c *wsClient) send(resp domain.WSResponse) {
	b, _ := json.Marshal(resp)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err, zap.String("connID", c.id))
	}
}

// joinedRoom 記下房間訂閱，回傳 false 表示已訂閱過(重複 join 視為成功)
func (c *wsClient) joinedRoom(roomID string, cancel context.CancelFunc) bool {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	if _, ok := c.rooms[roomID]; ok {
		return false
	}
	c.rooms[roomID] = cancel
	return true
}

// leaveRoom 取消房間訂閱，未加入時是 no-op
func (c *wsClient) leaveRoom(roomID string) {
	c.roomsMu.Lock()
	cancel, ok := c.rooms[roomID]
	if ok {
		delete(c.rooms, roomID)
	}
	c.roomsMu.Unlock()

	if ok {
		cancel()
	}
}

// leaveAll 連線關閉時取消所有房間訂閱
func (c *wsClient) leaveAll() {
	c.roomsMu.Lock()
	cancels := make([]context.CancelFunc, 0, len(c.rooms))
	for roomID, cancel := range c.rooms {
		cancels = append(cancels, cancel)
		delete(c.rooms, roomID)
	}
	c.roomsMu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
