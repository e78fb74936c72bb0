package app

import (
	"context"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
)

// RoomUseCase - 房間成員資格的授權閘門
// membership 權威在持久層，每次操作都重查，不在連線上快取
type RoomUseCase struct {
	sessionRepo repository.SessionRepository
}

// NewRoomUseCase init room use case
func NewRoomUseCase(sessionRepo repository.SessionRepository) *RoomUseCase {
	return &RoomUseCase{sessionRepo: sessionRepo}
}

// AuthorizeJoin join 只有在成員名單內才放行，否則回 ErrNotAMember
func (uc *RoomUseCase) AuthorizeJoin(ctx context.Context, userID, roomID string) error {
	if roomID == "" {
		return domain.ErrInvalidPayload
	}
	ok, err := uc.sessionRepo.IsParticipant(ctx, userID, roomID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotAMember
	}
	return nil
}
