package domain

import "encoding/json"

// Action websocket request action
type Action string

const (
	// ActionJoinRoom websocket action join-room
	ActionJoinRoom Action = "join-room"
	// ActionLeaveRoom websocket action leave-room
	ActionLeaveRoom Action = "leave-room"

	// ActionSendMessage websocket action send-message
	ActionSendMessage Action = "send-message"
	// ActionDeleteMessage 與廣播事件同名，前端收發都用 message-deleted
	ActionDeleteMessage Action = "message-deleted"

	// ActionMarkDelivered websocket action mark-delivered
	ActionMarkDelivered Action = "mark-delivered"
	// ActionMarkRead websocket action mark-read
	ActionMarkRead Action = "mark-read"

	// ActionToggleReaction websocket action toggle-reaction
	ActionToggleReaction Action = "toggle-reaction"
	// ActionTyping websocket action typing
	ActionTyping Action = "typing"
)

// server → client 未經請求的事件名稱
const (
	// EventOnlineUsers full presence snapshot after register/unregister
	EventOnlineUsers = "online-users"
	// EventNewMessage a persisted message fanned out to all participants
	EventNewMessage = "new-message"
	// EventMessageUpdated full message re-broadcast after preview enrichment
	EventMessageUpdated = "message-updated"
	// EventMessageDeleted sender removed a message
	EventMessageDeleted = "message-deleted"
	// EventMessagesDelivered delivered-set delta for a room
	EventMessagesDelivered = "messages-delivered"
	// EventMessagesRead read-set delta for a room
	EventMessagesRead = "messages-read"
	// EventReactionUpdated reaction toggle result
	EventReactionUpdated = "reaction-updated"
	// EventUserTyping ephemeral typing signal, sender excluded
	EventUserTyping = "user-typing"
)

// WSRequest websocket Request
type WSRequest struct {
	Action        string   `json:"action"`
	RoomID        string   `json:"room_id"`
	Content       string   `json:"content"`
	Type          string   `json:"type"`
	AttachmentURL string   `json:"attachment_url"`
	FileName      string   `json:"file_name"`
	FileSize      int64    `json:"file_size"`
	MessageID     string   `json:"message_id"`
	MessageIDs    []string `json:"message_ids"`
	Emoji         string   `json:"emoji"`
	IsTyping      bool     `json:"is_typing"`
}

// WSResponse websocket Response
// ack 與廣播事件共用同一個 frame 格式
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// ServerEvent fanout 封包，經 redis channel 傳遞
// Origin 帶發送端 connection id，訂閱端用來排除自己(目前只有 typing 用到)
type ServerEvent struct {
	Event   string          `json:"event"`
	Origin  string          `json:"origin,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// MessageEventPayload payload for new-message / message-updated
type MessageEventPayload struct {
	Message *Message `json:"message"`
}

// MessageDeletedPayload payload for message-deleted
type MessageDeletedPayload struct {
	MessageID string `json:"message_id"`
	RoomID    string `json:"room_id"`
}

// StatusEventPayload payload for messages-delivered / messages-read
type StatusEventPayload struct {
	RoomID     string   `json:"room_id"`
	MessageIDs []string `json:"message_ids"`
	UserID     string   `json:"user_id"`
}

// ReactionEventPayload payload for reaction-updated, Emoji 為 null 表示移除
type ReactionEventPayload struct {
	RoomID    string  `json:"room_id"`
	MessageID string  `json:"message_id"`
	UserID    string  `json:"user_id"`
	Emoji     *string `json:"emoji"`
}

// TypingEventPayload payload for user-typing
type TypingEventPayload struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	IsTyping bool   `json:"is_typing"`
}

// OnlineUsersPayload payload for online-users
type OnlineUsersPayload struct {
	Users []PresenceEntry `json:"users"`
}
