package app

import (
	"context"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
)

// StatusUseCase 維護每則訊息的 delivered / read 集合
// 集合只增不減，重複標記靠持久層的 add-if-absent 擋掉
type StatusUseCase struct {
	msgRepo    repository.MessageRepository
	roomPubSub repository.PubSub
}

// NewStatusUseCase init status use case
func NewStatusUseCase(msgRepo repository.MessageRepository, pub repository.PubSub) *StatusUseCase {
	return &StatusUseCase{
		msgRepo:    msgRepo,
		roomPubSub: pub,
	}
}

// MarkDelivered 標記送達，回傳實際變動的子集
func (uc *StatusUseCase) MarkDelivered(ctx context.Context, userID string, req *domain.WSRequest) ([]string, error) {
	return uc.mark(ctx, userID, req, uc.msgRepo.AddDeliveredTo, domain.EventMessagesDelivered)
}

// MarkRead 標記已讀，回傳實際變動的子集
func (uc *StatusUseCase) MarkRead(ctx context.Context, userID string, req *domain.WSRequest) ([]string, error) {
	return uc.mark(ctx, userID, req, uc.msgRepo.AddReadBy, domain.EventMessagesRead)
}

type addFunc func(ctx context.Context, messageIDs []string, userID string) ([]string, error)

// mark 兩個方向共用: 子集為空時不寫不播，擋掉前端重複標記造成的廣播風暴
func (uc *StatusUseCase) mark(ctx context.Context, userID string, req *domain.WSRequest, add addFunc, event string) ([]string, error) {
	if req.RoomID == "" || len(req.MessageIDs) == 0 {
		return nil, domain.ErrInvalidPayload
	}

	changed, err := add(ctx, req.MessageIDs, userID)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return nil, nil
	}

	payload := domain.StatusEventPayload{
		RoomID:     req.RoomID,
		MessageIDs: changed,
		UserID:     userID,
	}
	if err := publishEvent(uc.roomPubSub, repository.RoomChannel(req.RoomID), event, "", payload); err != nil {
		return nil, err
	}
	return changed, nil
}
