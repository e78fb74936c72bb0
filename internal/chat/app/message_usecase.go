package app

import (
	"context"
	"regexp"
	"strings"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 第一個符合的 URL 才會觸發 preview
var urlRegex = regexp.MustCompile(`(?i)(https?://[^\s]+)|(www\.[^\s]+)`)

// firstURL 取出內容中的第一個 URL，www. 開頭補上 https://
func firstURL(content string) string {
	match := urlRegex.FindString(content)
	if match == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(match), "www.") {
		return "https://" + match
	}
	return match
}

// SendMessageUseCase 負責訊息的持久化、fanout 與背景 preview enrichment
type SendMessageUseCase struct {
	sessionRepo repository.SessionRepository
	msgRepo     repository.MessageRepository
	previewRepo repository.LinkPreviewRepository
	userPubSub  repository.PubSub
	roomPubSub  repository.PubSub
}

// NewSendMessageUseCase init send message use case
func NewSendMessageUseCase(
	sessionRepo repository.SessionRepository,
	msgRepo repository.MessageRepository,
	previewRepo repository.LinkPreviewRepository,
	pub repository.PubSub,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		sessionRepo: sessionRepo,
		msgRepo:     msgRepo,
		previewRepo: previewRepo,
		userPubSub:  pub,
		roomPubSub:  pub,
	}
}

// Send 持久化訊息並廣播給所有成員的個人 channel
// 回傳的 message 就是 ack 內容，和廣播 payload 取自同一筆資料
func (uc *SendMessageUseCase) Send(ctx context.Context, senderID string, req *domain.WSRequest) (*domain.Message, error) {
	// 1. 基本驗證: 要有房間，內容與附件至少一個
	if req.RoomID == "" {
		return nil, domain.ErrInvalidPayload
	}
	content := strings.TrimSpace(req.Content)
	if content == "" && req.AttachmentURL == "" {
		return nil, domain.ErrInvalidPayload
	}

	// 2. 每次 send 都重新驗證成員資格
	ok, err := uc.sessionRepo.IsParticipant(ctx, senderID, req.RoomID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotAMember
	}

	msgType := domain.MessageType(req.Type)
	if msgType == "" {
		msgType = domain.MessageTypeText
	}

	// 3. 先落地，status set 為空、preview 為 null
	msg := &domain.Message{
		ID:            uuid.New().String(),
		RoomID:        req.RoomID,
		SenderID:      senderID,
		Content:       content,
		Type:          msgType,
		AttachmentURL: req.AttachmentURL,
		FileName:      req.FileName,
		FileSize:      req.FileSize,
		DeliveredTo:   []string{},
		ReadBy:        []string{},
		CreatedAt:     time.Now().Unix(),
	}
	if err := uc.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	// 4. 更新房間 updated_at 讓列表排序置頂，失敗不影響遞送
	if err := uc.sessionRepo.TouchUpdatedAt(ctx, req.RoomID); err != nil {
		logger.Log.Warn("touch room updated_at failed",
			zap.String("roomID", req.RoomID),
			zap.Error(err),
		)
	}

	// 5. 抓完整成員名單(不只在線的)，推到每個人的個人 channel
	//    不在房間內的裝置靠這個更新側欄預覽
	members, err := uc.sessionRepo.ListParticipants(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	uc.broadcastToMembers(members, domain.EventNewMessage, msg)

	// 6. preview enrichment 與 send 路徑完全脫鉤
	uc.enrichPreview(msg, members)

	// 7. ack 由 handler 發，內容就是這筆持久化後的 message
	return msg, nil
}

// Delete 只有原發送者能刪，成功後廣播到房間 channel
// 廣播目標以持久化的 room 為準，不信任 request 帶來的 room id
func (uc *SendMessageUseCase) Delete(ctx context.Context, userID, messageID string) error {
	if messageID == "" {
		return domain.ErrInvalidPayload
	}

	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != userID {
		return domain.ErrForbidden
	}

	if err := uc.msgRepo.Delete(ctx, messageID); err != nil {
		return err
	}

	payload := domain.MessageDeletedPayload{MessageID: messageID, RoomID: msg.RoomID}
	if err := publishEvent(uc.roomPubSub, repository.RoomChannel(msg.RoomID), domain.EventMessageDeleted, "", payload); err != nil {
		logger.Log.Errorf("publish message-deleted error:", err, zap.String("messageID", messageID))
	}
	return nil
}

func (uc *SendMessageUseCase) broadcastToMembers(members []string, event string, msg *domain.Message) {
	payload := domain.MessageEventPayload{Message: msg}
	for _, memberID := range members {
		if err := publishEvent(uc.userPubSub, repository.UserChannel(memberID), event, "", payload); err != nil {
			logger.Log.Errorf("publish "+event+" error:", err, zap.String("memberID", memberID))
		}
	}
}

// enrichPreview 偵測到 URL 才起 goroutine: 抓 meta → 更新訊息 → 重播 message-updated
// fire-and-forget，任何失敗只記 log，不重試也不回傳給發送者
func (uc *SendMessageUseCase) enrichPreview(msg *domain.Message, members []string) {
	target := firstURL(msg.Content)
	if target == "" {
		return
	}

	go func() {
		// send 的 request ctx 早就結束了，這裡用獨立的 background ctx
		ctx := context.Background()

		preview, err := uc.previewRepo.Fetch(ctx, target)
		if err != nil {
			logger.Log.Warn("link preview fetch failed",
				zap.String("url", target),
				zap.String("messageID", msg.ID),
				zap.Error(err),
			)
			return
		}

		updated, err := uc.msgRepo.UpdatePreview(ctx, msg.ID, preview)
		if err != nil {
			logger.Log.Warn("link preview update failed",
				zap.String("messageID", msg.ID),
				zap.Error(err),
			)
			return
		}

		uc.broadcastToMembers(members, domain.EventMessageUpdated, updated)
	}()
}
