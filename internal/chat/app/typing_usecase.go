package app

import (
	"context"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
)

// TypingUseCase 短暫的打字訊號，不落地、不限流(debounce 是前端的事)
type TypingUseCase struct {
	sessionRepo repository.SessionRepository
	roomPubSub  repository.PubSub
}

// NewTypingUseCase init typing use case
func NewTypingUseCase(sessionRepo repository.SessionRepository, pub repository.PubSub) *TypingUseCase {
	return &TypingUseCase{
		sessionRepo: sessionRepo,
		roomPubSub:  pub,
	}
}

// Notify 驗證成員資格後廣播到房間 channel
// origin 帶發送端 connection id，訂閱端靠它排除發送者自己
func (uc *TypingUseCase) Notify(ctx context.Context, connID string, user *domain.User, req *domain.WSRequest) error {
	if req.RoomID == "" {
		return domain.ErrInvalidPayload
	}

	ok, err := uc.sessionRepo.IsParticipant(ctx, user.ID, req.RoomID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotAMember
	}

	payload := domain.TypingEventPayload{
		UserID:   user.ID,
		UserName: user.DisplayName(),
		IsTyping: req.IsTyping,
	}
	return publishEvent(uc.roomPubSub, repository.RoomChannel(req.RoomID), domain.EventUserTyping, connID, payload)
}
