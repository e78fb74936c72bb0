package app

import (
	"context"
	"encoding/json"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatWebsocketHandler 可包含所有需要的 UseCase
type ChatWebsocketHandler struct {
	presence   *PresenceRegistry
	userRepo   repository.UserRepository
	roomUC     *RoomUseCase
	messageUC  *SendMessageUseCase
	statusUC   *StatusUseCase
	reactionUC *ReactionUseCase
	typingUC   *TypingUseCase
	pubSub     repository.PubSub
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	presence *PresenceRegistry,
	userRepo repository.UserRepository,
	roomUC *RoomUseCase,
	messageUC *SendMessageUseCase,
	statusUC *StatusUseCase,
	reactionUC *ReactionUseCase,
	typingUC *TypingUseCase,
	pubSub repository.PubSub,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		presence:   presence,
		userRepo:   userRepo,
		roomUC:     roomUC,
		messageUC:  messageUC,
		statusUC:   statusUC,
		reactionUC: reactionUC,
		typingUC:   typingUC,
		pubSub:     pubSub,
	}
}

// HandleConnection 是 WebSocket 連線的進入點
// 身份在這裡解析並綁定，解析失敗的連線在進 read loop 前就被拒絕
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenUser := conn.Locals(middlewares.TokenUserID)
	userID, ok := tokenUser.(string)
	if !ok || userID == "" {
		h.rejectConnection(conn)
		return
	}

	// token 有效但 user 可能已經不存在，要再查一次
	user, err := h.userRepo.FindByID(ctx, userID)
	if err != nil || user == nil {
		logger.Log.Warn("websocket auth resolve failed",
			zap.String("userID", userID),
			zap.Error(err),
		)
		h.rejectConnection(conn)
		return
	}

	connID := uuid.New().String()
	client := newWSClient(connID, user, conn)

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		// 斷線即無條件清掉所有訂閱與 presence，不需要握手
		client.leaveAll()
		cancel()
		h.broadcastPresence(h.presence.Unregister(connID))
		logger.Log.Info("websocket close", zap.String("userID", user.ID), zap.String("connID", connID))
		conn.Close()
	}()

	// client 發出 close 時 fiber 會在 read 回傳 err，這裡只接出來記 log
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("received pong", zap.String("connID", connID))
		return nil
	})

	// 全站 presence 與自己的個人 channel，連線存活期間都訂著
	if err := h.pubSub.Subscribe(ctxClose, repository.PresenceChannel, func(evt domain.ServerEvent) {
		client.send(eventToResponse(evt))
	}); err != nil {
		logger.Log.Errorf("subscribe presence error:", err, zap.String("connID", connID))
	}
	if err := h.pubSub.Subscribe(ctxClose, repository.UserChannel(user.ID), func(evt domain.ServerEvent) {
		client.send(eventToResponse(evt))
	}); err != nil {
		logger.Log.Errorf("subscribe user channel error:", err, zap.String("connID", connID))
	}

	// 註冊 presence，廣播 mutation 後的完整快照
	h.broadcastPresence(h.presence.Register(connID, user))

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
					logger.Log.Errorf("ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, client, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, client *wsClient, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, client, msg)
	default:
		h.sendError(client, "unknown message type")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, client *wsClient, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Errorf("json unmarshal error:", err, zap.String("connID", client.id))
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch req.Action {
	// 加入房間: 成員資格每次都查持久層
	case string(domain.ActionJoinRoom):
		if err := h.roomUC.AuthorizeJoin(ctx, client.user.ID, req.RoomID); err != nil {
			resp.Error = err.Error()
		} else {
			h.subscribeRoom(client, req.RoomID)
			resp.Success = true
			resp.Payload["room_id"] = req.RoomID
		}

	// 離開房間: 永遠放行，未加入時是 no-op，不回 ack
	case string(domain.ActionLeaveRoom):
		client.leaveRoom(req.RoomID)
		return

	// 傳送訊息: ack 跟廣播都來自同一筆持久化後的 message
	case string(domain.ActionSendMessage):
		m, err := h.messageUC.Send(ctx, client.user.ID, &req)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message"] = m
		}

	// 刪除訊息: 只有原發送者能刪
	case string(domain.ActionDeleteMessage):
		if err := h.messageUC.Delete(ctx, client.user.ID, req.MessageID); err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message_id"] = req.MessageID
		}

	// 標記送達
	case string(domain.ActionMarkDelivered):
		changed, err := h.statusUC.MarkDelivered(ctx, client.user.ID, &req)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message_ids"] = changed
		}

	// 標記已讀
	case string(domain.ActionMarkRead):
		changed, err := h.statusUC.MarkRead(ctx, client.user.ID, &req)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message_ids"] = changed
		}

	// reaction 三態 toggle
	case string(domain.ActionToggleReaction):
		change, err := h.reactionUC.Toggle(ctx, client.user.ID, &req)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["action"] = string(change.Action)
			resp.Payload["emoji"] = change.FinalEmoji
		}

	// 打字訊號: 成功不 ack，失敗只回給發起者
	case string(domain.ActionTyping):
		if err := h.typingUC.Notify(ctx, client.id, client.user, &req); err != nil {
			resp.Error = err.Error()
		} else {
			return
		}

	default:
		h.sendError(client, "unknown action")
		return
	}

	if resp.Error != "" {
		logger.Log.Error("websocket action err",
			zap.String("userID", client.user.ID),
			zap.String("action", req.Action),
			zap.String("err", resp.Error),
		)
	}
	client.send(resp)
}

// subscribeRoom 訂閱房間 channel，重複 join 視為成功不重複訂閱
func (h *ChatWebsocketHandler) subscribeRoom(client *wsClient, roomID string) {
	ctxRoom, cancel := context.WithCancel(context.Background())
	if !client.joinedRoom(roomID, cancel) {
		cancel()
		return
	}

	if err := h.pubSub.Subscribe(ctxRoom, repository.RoomChannel(roomID), func(evt domain.ServerEvent) {
		// origin 是自己的事件不回送(typing 排除發送者)
		if evt.Origin != "" && evt.Origin == client.id {
			return
		}
		client.send(eventToResponse(evt))
	}); err != nil {
		logger.Log.Errorf("subscribe room channel error:", err, zap.String("roomID", roomID))
	}
}

func (h *ChatWebsocketHandler) broadcastPresence(snapshot []domain.PresenceEntry) {
	payload := domain.OnlineUsersPayload{Users: snapshot}
	if err := publishEvent(h.pubSub, repository.PresenceChannel, domain.EventOnlineUsers, "", payload); err != nil {
		logger.Log.Errorf("publish online-users error:", err)
	}
}

// rejectConnection 驗證失敗: 回一個錯誤 frame 後直接關線
func (h *ChatWebsocketHandler) rejectConnection(conn *websocket.Conn) {
	resp := domain.WSResponse{
		Action: "error",
		Error:  domain.ErrAuthentication.Error(),
	}
	b, _ := json.Marshal(resp)
	_ = conn.WriteMessage(websocket.TextMessage, b)
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, domain.ErrAuthentication.Error()))
	conn.Close()
}

func (h *ChatWebsocketHandler) sendError(client *wsClient, errorMsg string) {
	client.send(domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{"error": errorMsg},
	})
}
