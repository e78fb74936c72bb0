package app

import (
	"context"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
)

// ReactionUseCase 維護同一個 user 對同一則訊息至多一個 reaction
type ReactionUseCase struct {
	reactionRepo repository.ReactionRepository
	roomPubSub   repository.PubSub
}

// NewReactionUseCase init reaction use case
func NewReactionUseCase(reactionRepo repository.ReactionRepository, pub repository.PubSub) *ReactionUseCase {
	return &ReactionUseCase{
		reactionRepo: reactionRepo,
		roomPubSub:   pub,
	}
}

// Toggle 三態轉換後把最終狀態廣播給房間內所有成員(含發起者)
// emoji 為 null 表示移除，所有 client 以此收斂到一致的 reaction 計數
func (uc *ReactionUseCase) Toggle(ctx context.Context, userID string, req *domain.WSRequest) (*domain.ReactionChange, error) {
	if req.RoomID == "" || req.MessageID == "" || req.Emoji == "" {
		return nil, domain.ErrInvalidPayload
	}

	change, err := uc.reactionRepo.Upsert(ctx, userID, req.MessageID, req.Emoji)
	if err != nil {
		return nil, err
	}

	payload := domain.ReactionEventPayload{
		RoomID:    req.RoomID,
		MessageID: req.MessageID,
		UserID:    userID,
		Emoji:     change.FinalEmoji,
	}
	if err := publishEvent(uc.roomPubSub, repository.RoomChannel(req.RoomID), domain.EventReactionUpdated, "", payload); err != nil {
		return nil, err
	}
	return change, nil
}
