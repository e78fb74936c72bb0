package domain

// MessageType definition message content kind
type MessageType string

const (
	// MessageTypeText 純文字訊息
	MessageTypeText MessageType = "TEXT"
	// MessageTypeImage 圖片附件
	MessageTypeImage MessageType = "IMAGE"
	// MessageTypeFile 檔案附件
	MessageTypeFile MessageType = "FILE"
	// MessageTypeAudio 語音附件
	MessageTypeAudio MessageType = "AUDIO"
)

// LinkPreview definition metadata fetched for the first URL in a message
type LinkPreview struct {
	URL         string `bson:"url" json:"url"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Image       string `bson:"image,omitempty" json:"image,omitempty"`
	SiteName    string `bson:"site_name" json:"site_name"`
	Domain      string `bson:"domain" json:"domain"`
}

// Message 表示一則聊天訊息
// DeliveredTo / ReadBy 只增不減，LinkPreview 是建立後唯一會被改寫的欄位
type Message struct {
	ID            string       `bson:"_id" json:"id"`
	RoomID        string       `bson:"room_id" json:"room_id"`
	SenderID      string       `bson:"sender_id" json:"sender_id"`
	Content       string       `bson:"content" json:"content"`
	Type          MessageType  `bson:"type" json:"type"`
	AttachmentURL string       `bson:"attachment_url,omitempty" json:"attachment_url,omitempty"`
	FileName      string       `bson:"file_name,omitempty" json:"file_name,omitempty"`
	FileSize      int64        `bson:"file_size,omitempty" json:"file_size,omitempty"`
	LinkPreview   *LinkPreview `bson:"link_preview,omitempty" json:"link_preview"`
	DeliveredTo   []string     `bson:"delivered_to" json:"delivered_to"`
	ReadBy        []string     `bson:"read_by" json:"read_by"`
	CreatedAt     int64        `bson:"created_at" json:"created_at"`
}

// ReactionAction upsert 的三種結果
type ReactionAction string

const (
	// ReactionAdded 先前沒有 reaction，新建
	ReactionAdded ReactionAction = "added"
	// ReactionUpdated 換成不同的 emoji，原地更新
	ReactionUpdated ReactionAction = "updated"
	// ReactionRemoved 同一個 emoji 再按一次，toggle off
	ReactionRemoved ReactionAction = "removed"
)

// Reaction 每個 (user, message) 最多一筆
type Reaction struct {
	ID        string `bson:"_id" json:"id"`
	UserID    string `bson:"user_id" json:"user_id"`
	MessageID string `bson:"message_id" json:"message_id"`
	Emoji     string `bson:"emoji" json:"emoji"`
	CreatedAt int64  `bson:"created_at" json:"created_at"`
}

// ReactionChange toggle 後的最終狀態，FinalEmoji 為 nil 代表移除
type ReactionChange struct {
	Action     ReactionAction
	FinalEmoji *string
}
