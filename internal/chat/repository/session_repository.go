package repository

import (
	"context"
	"time"

	"realtime_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionRepository definition chat session membership queries
// 每次 send/typing 都會重查，membership 不在 core 快取
type SessionRepository interface {
	// IsParticipant 查詢 user 是否在 room 的成員名單內
	IsParticipant(ctx context.Context, userID, roomID string) (bool, error)
	// ListParticipants 取回 room 的完整成員名單(不限目前在線)
	ListParticipants(ctx context.Context, roomID string) ([]string, error)
	// TouchUpdatedAt 更新 room 的 updated_at，供列表排序用
	TouchUpdatedAt(ctx context.Context, roomID string) error
}

type sessionRepository struct {
	coll *mongo.Collection
}

// NewMongoSessionRepository create a SessionRepository
func NewMongoSessionRepository(db *mongo.Database) SessionRepository {
	return &sessionRepository{
		coll: db.Collection("chat_sessions"),
	}
}

// IsParticipant 存在性查詢就好，不用抓整份名單
func (r *sessionRepository) IsParticipant(ctx context.Context, userID, roomID string) (bool, error) {
	filter := bson.M{"_id": roomID, "members": userID}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *sessionRepository) ListParticipants(ctx context.Context, roomID string) ([]string, error) {
	var session domain.ChatSession
	err := r.coll.FindOne(ctx, bson.M{"_id": roomID}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return session.Members, nil
}

func (r *sessionRepository) TouchUpdatedAt(ctx context.Context, roomID string) error {
	filter := bson.M{"_id": roomID}
	update := bson.M{"$set": bson.M{"updated_at": time.Now().Unix()}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}
