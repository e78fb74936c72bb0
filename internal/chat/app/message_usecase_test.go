package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 測試 SendMessageUseCase.Send 成功路徑
func TestSendMessageUseCase_Send(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	roomID := uuid.New().String()
	senderID := uuid.New().String()
	memberID := uuid.New().String()

	mockSessionRepo := new(MockSessionRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockPreviewRepo := new(MockLinkPreviewRepository)
	mockPubSub := new(MockRedisPubSub)

	mockSessionRepo.On("IsParticipant", ctx, senderID, roomID).Return(true, nil)
	mockMsgRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockSessionRepo.On("TouchUpdatedAt", ctx, roomID).Return(nil)
	mockSessionRepo.On("ListParticipants", ctx, roomID).Return([]string{senderID, memberID}, nil)

	// 廣播到每個成員的個人 channel，發送者自己也要收到
	mockPubSub.On("Publish", repository.UserChannel(senderID), mock.Anything).Return(nil)
	mockPubSub.On("Publish", repository.UserChannel(memberID), mock.Anything).Return(nil)

	uc := NewSendMessageUseCase(mockSessionRepo, mockMsgRepo, mockPreviewRepo, mockPubSub)
	msg, err := uc.Send(ctx, senderID, &domain.WSRequest{RoomID: roomID, Content: "  Hello, world!  "})

	assert.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, roomID, msg.RoomID)
	assert.Equal(t, senderID, msg.SenderID)
	assert.Equal(t, "Hello, world!", msg.Content)
	assert.Equal(t, domain.MessageTypeText, msg.Type)
	assert.Empty(t, msg.DeliveredTo)
	assert.Empty(t, msg.ReadBy)
	assert.Nil(t, msg.LinkPreview)

	mockSessionRepo.AssertExpectations(t)
	mockMsgRepo.AssertExpectations(t)
	mockPubSub.AssertExpectations(t)
	// 沒有 URL 就不該去抓 preview
	mockPreviewRepo.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

// 測試非成員送訊息會被拒絕，且不落地
func TestSendMessageUseCase_Send_NotAMember(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	senderID := uuid.New().String()

	mockSessionRepo := new(MockSessionRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockPubSub := new(MockRedisPubSub)

	mockSessionRepo.On("IsParticipant", ctx, senderID, roomID).Return(false, nil)

	uc := NewSendMessageUseCase(mockSessionRepo, mockMsgRepo, new(MockLinkPreviewRepository), mockPubSub)
	msg, err := uc.Send(ctx, senderID, &domain.WSRequest{RoomID: roomID, Content: "hi"})

	assert.ErrorIs(t, err, domain.ErrNotAMember)
	assert.Nil(t, msg)
	mockMsgRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockPubSub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

// 測試 payload 驗證: 沒房間、或內容與附件皆空
func TestSendMessageUseCase_Send_InvalidPayload(t *testing.T) {
	ctx := context.Background()
	uc := NewSendMessageUseCase(new(MockSessionRepository), new(MockMessageRepository), new(MockLinkPreviewRepository), new(MockRedisPubSub))

	_, err := uc.Send(ctx, "user-1", &domain.WSRequest{Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = uc.Send(ctx, "user-1", &domain.WSRequest{RoomID: "room-1", Content: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

// 測試純附件訊息: 內容空但有 attachment 要放行
func TestSendMessageUseCase_Send_AttachmentOnly(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	roomID := uuid.New().String()
	senderID := uuid.New().String()

	mockSessionRepo := new(MockSessionRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockPubSub := new(MockRedisPubSub)

	mockSessionRepo.On("IsParticipant", ctx, senderID, roomID).Return(true, nil)
	mockMsgRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockSessionRepo.On("TouchUpdatedAt", ctx, roomID).Return(nil)
	mockSessionRepo.On("ListParticipants", ctx, roomID).Return([]string{senderID}, nil)
	mockPubSub.On("Publish", repository.UserChannel(senderID), mock.Anything).Return(nil)

	uc := NewSendMessageUseCase(mockSessionRepo, mockMsgRepo, new(MockLinkPreviewRepository), mockPubSub)
	msg, err := uc.Send(ctx, senderID, &domain.WSRequest{
		RoomID:        roomID,
		Type:          string(domain.MessageTypeImage),
		AttachmentURL: "https://cdn.example.com/cat.png",
		FileName:      "cat.png",
		FileSize:      2048,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.MessageTypeImage, msg.Type)
	assert.Equal(t, "cat.png", msg.FileName)
	mockMsgRepo.AssertExpectations(t)
}

// 測試 URL 偵測: 只取第一個，www 開頭補 scheme
func TestFirstURL(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"no links here", ""},
		{"check https://example.com/page now", "https://example.com/page"},
		{"HTTP://EXAMPLE.COM works too", "HTTP://EXAMPLE.COM"},
		{"see www.example.com please", "https://www.example.com"},
		{"two https://a.com and https://b.com", "https://a.com"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, firstURL(c.content), c.content)
	}
}

// 測試 ack 與廣播一致性: new-message 廣播的 payload 要和 Send 回傳的 message 完全相同
func TestSendMessageUseCase_Send_BroadcastMatchesAck(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	roomID := uuid.New().String()
	senderID := uuid.New().String()
	memberID := uuid.New().String()

	mockSessionRepo := new(MockSessionRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockPubSub := new(MockRedisPubSub)

	mockSessionRepo.On("IsParticipant", ctx, senderID, roomID).Return(true, nil)
	mockMsgRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockSessionRepo.On("TouchUpdatedAt", ctx, roomID).Return(nil)
	mockSessionRepo.On("ListParticipants", ctx, roomID).Return([]string{senderID, memberID}, nil)

	broadcasts := make(map[string]domain.ServerEvent)
	mockPubSub.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			broadcasts[args.String(0)] = args.Get(1).(domain.ServerEvent)
		}).Return(nil)

	uc := NewSendMessageUseCase(mockSessionRepo, mockMsgRepo, new(MockLinkPreviewRepository), mockPubSub)
	msg, err := uc.Send(ctx, senderID, &domain.WSRequest{RoomID: roomID, Content: "same for everyone"})
	assert.NoError(t, err)

	// 每個成員收到的都是同一筆持久化後的 message，和 ack 內容零差異
	for _, memberChannel := range []string{repository.UserChannel(senderID), repository.UserChannel(memberID)} {
		evt, ok := broadcasts[memberChannel]
		assert.True(t, ok, memberChannel)
		assert.Equal(t, domain.EventNewMessage, evt.Event)

		var payload domain.MessageEventPayload
		assert.NoError(t, json.Unmarshal(evt.Payload, &payload))
		assert.Equal(t, msg, payload.Message)
	}
}

// 測試 preview enrichment: 背景抓到 meta 後重播 message-updated
func TestSendMessageUseCase_Send_PreviewEnrichment(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	roomID := uuid.New().String()
	senderID := uuid.New().String()

	mockSessionRepo := new(MockSessionRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockPreviewRepo := new(MockLinkPreviewRepository)
	mockPubSub := new(MockRedisPubSub)

	mockSessionRepo.On("IsParticipant", ctx, senderID, roomID).Return(true, nil)
	mockMsgRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockSessionRepo.On("TouchUpdatedAt", ctx, roomID).Return(nil)
	mockSessionRepo.On("ListParticipants", ctx, roomID).Return([]string{senderID}, nil)

	preview := &domain.LinkPreview{URL: "https://example.com", Title: "Example", Domain: "example.com"}
	mockPreviewRepo.On("Fetch", mock.Anything, "https://example.com").Return(preview, nil)
	mockMsgRepo.On("UpdatePreview", mock.Anything, mock.Anything, preview).
		Return(&domain.Message{ID: "msg-1", RoomID: roomID, LinkPreview: preview}, nil)

	updated := make(chan domain.ServerEvent, 2)
	mockPubSub.On("Publish", repository.UserChannel(senderID), mock.Anything).
		Run(func(args mock.Arguments) {
			evt := args.Get(1).(domain.ServerEvent)
			if evt.Event == domain.EventMessageUpdated {
				updated <- evt
			}
		}).Return(nil)

	uc := NewSendMessageUseCase(mockSessionRepo, mockMsgRepo, mockPreviewRepo, mockPubSub)
	msg, err := uc.Send(ctx, senderID, &domain.WSRequest{RoomID: roomID, Content: "look https://example.com"})

	assert.NoError(t, err)
	// send 的回傳不等 enrichment，preview 還是空的
	assert.Nil(t, msg.LinkPreview)

	select {
	case evt := <-updated:
		var payload domain.MessageEventPayload
		assert.NoError(t, json.Unmarshal(evt.Payload, &payload))
		assert.Equal(t, preview, payload.Message.LinkPreview)
	case <-time.After(2 * time.Second):
		t.Fatal("message-updated 沒有在期限內廣播")
	}

	mockPreviewRepo.AssertExpectations(t)
	mockMsgRepo.AssertExpectations(t)
}

// 測試 enrichment 不阻塞: fetch 卡住時 Send 也要先回來
func TestSendMessageUseCase_Send_EnrichmentNonBlocking(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	roomID := uuid.New().String()
	senderID := uuid.New().String()

	mockSessionRepo := new(MockSessionRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockPreviewRepo := new(MockLinkPreviewRepository)
	mockPubSub := new(MockRedisPubSub)

	mockSessionRepo.On("IsParticipant", ctx, senderID, roomID).Return(true, nil)
	mockMsgRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockSessionRepo.On("TouchUpdatedAt", ctx, roomID).Return(nil)
	mockSessionRepo.On("ListParticipants", ctx, roomID).Return([]string{senderID}, nil)
	mockPubSub.On("Publish", repository.UserChannel(senderID), mock.Anything).Return(nil)

	// fetch 卡在 release 上，Send 若同步等 preview 就會卡死在這裡
	release := make(chan struct{})
	preview := &domain.LinkPreview{URL: "https://slow.example.com", Title: "Slow"}
	mockPreviewRepo.On("Fetch", mock.Anything, "https://slow.example.com").
		Run(func(args mock.Arguments) { <-release }).
		Return(preview, nil)

	updated := make(chan struct{})
	mockMsgRepo.On("UpdatePreview", mock.Anything, mock.Anything, preview).
		Run(func(args mock.Arguments) { close(updated) }).
		Return(&domain.Message{ID: "msg-1", RoomID: roomID, LinkPreview: preview}, nil)

	uc := NewSendMessageUseCase(mockSessionRepo, mockMsgRepo, mockPreviewRepo, mockPubSub)

	done := make(chan struct{})
	go func() {
		msg, err := uc.Send(ctx, senderID, &domain.WSRequest{RoomID: roomID, Content: "https://slow.example.com"})
		assert.NoError(t, err)
		assert.Nil(t, msg.LinkPreview)
		close(done)
	}()

	// fetch 還沒放行前 Send 就要回來
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send 被 preview fetch 卡住了")
	}
	mockMsgRepo.AssertNotCalled(t, "UpdatePreview", mock.Anything, mock.Anything, mock.Anything)

	// 放行後 enrichment 照常完成
	close(release)
	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("放行後 preview 沒有寫回")
	}
}

// 測試 preview fetch 失敗: 吞掉錯誤，不更新也不重播
func TestSendMessageUseCase_Send_PreviewFetchFailed(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	roomID := uuid.New().String()
	senderID := uuid.New().String()

	mockSessionRepo := new(MockSessionRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockPreviewRepo := new(MockLinkPreviewRepository)
	mockPubSub := new(MockRedisPubSub)

	mockSessionRepo.On("IsParticipant", ctx, senderID, roomID).Return(true, nil)
	mockMsgRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockSessionRepo.On("TouchUpdatedAt", ctx, roomID).Return(nil)
	mockSessionRepo.On("ListParticipants", ctx, roomID).Return([]string{senderID}, nil)
	mockPubSub.On("Publish", repository.UserChannel(senderID), mock.Anything).Return(nil)

	fetched := make(chan struct{}, 1)
	mockPreviewRepo.On("Fetch", mock.Anything, "https://dead.example.com").
		Run(func(args mock.Arguments) { fetched <- struct{}{} }).
		Return(nil, assert.AnError)

	uc := NewSendMessageUseCase(mockSessionRepo, mockMsgRepo, mockPreviewRepo, mockPubSub)
	msg, err := uc.Send(ctx, senderID, &domain.WSRequest{RoomID: roomID, Content: "https://dead.example.com"})

	// 發送本身要成功，enrichment 的失敗不能洩漏給發送者
	assert.NoError(t, err)
	assert.NotNil(t, msg)

	select {
	case <-fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch 沒有被觸發")
	}
	time.Sleep(50 * time.Millisecond)
	mockMsgRepo.AssertNotCalled(t, "UpdatePreview", mock.Anything, mock.Anything, mock.Anything)
}

// 測試刪除訊息: 發送者本人刪除成功並廣播到房間 channel
func TestSendMessageUseCase_Delete(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	roomID := uuid.New().String()
	messageID := uuid.New().String()
	senderID := uuid.New().String()

	mockMsgRepo := new(MockMessageRepository)
	mockPubSub := new(MockRedisPubSub)

	mockMsgRepo.On("FindByID", ctx, messageID).
		Return(&domain.Message{ID: messageID, RoomID: roomID, SenderID: senderID}, nil)
	mockMsgRepo.On("Delete", ctx, messageID).Return(nil)
	// 廣播一定進訊息持久化的那個房間 channel
	mockPubSub.On("Publish", repository.RoomChannel(roomID), mock.MatchedBy(func(evt domain.ServerEvent) bool {
		if evt.Event != domain.EventMessageDeleted {
			return false
		}
		var payload domain.MessageDeletedPayload
		if err := json.Unmarshal(evt.Payload, &payload); err != nil {
			return false
		}
		return payload.MessageID == messageID && payload.RoomID == roomID
	})).Return(nil)

	uc := NewSendMessageUseCase(new(MockSessionRepository), mockMsgRepo, new(MockLinkPreviewRepository), mockPubSub)
	err := uc.Delete(ctx, senderID, messageID)

	assert.NoError(t, err)
	mockMsgRepo.AssertExpectations(t)
	mockPubSub.AssertExpectations(t)
}

// 測試刪除訊息: 非發送者一律 Forbidden
func TestSendMessageUseCase_Delete_Forbidden(t *testing.T) {
	ctx := context.Background()
	messageID := uuid.New().String()

	mockMsgRepo := new(MockMessageRepository)
	mockMsgRepo.On("FindByID", ctx, messageID).
		Return(&domain.Message{ID: messageID, SenderID: "the-sender"}, nil)

	uc := NewSendMessageUseCase(new(MockSessionRepository), mockMsgRepo, new(MockLinkPreviewRepository), new(MockRedisPubSub))
	err := uc.Delete(ctx, "someone-else", messageID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	mockMsgRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// 測試刪除不存在的訊息
func TestSendMessageUseCase_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	messageID := uuid.New().String()

	mockMsgRepo := new(MockMessageRepository)
	mockMsgRepo.On("FindByID", ctx, messageID).Return(nil, domain.ErrNotFound)

	uc := NewSendMessageUseCase(new(MockSessionRepository), mockMsgRepo, new(MockLinkPreviewRepository), new(MockRedisPubSub))
	err := uc.Delete(ctx, "user-1", messageID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
