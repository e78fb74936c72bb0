package repository

import (
	"context"
	"time"

	"realtime_chat_service/internal/chat/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReactionRepository definition at-most-one-reaction-per-user-per-message state
type ReactionRepository interface {
	// Upsert 三態轉換: 不存在→新增、同 emoji→移除、不同 emoji→原地更新
	Upsert(ctx context.Context, userID, messageID, emoji string) (*domain.ReactionChange, error)
}

type reactionRepository struct {
	coll *mongo.Collection
}

// NewMongoReactionRepository create a ReactionRepository
// collection 需有 (user_id, message_id) 唯一索引
func NewMongoReactionRepository(db *mongo.Database) ReactionRepository {
	return &reactionRepository{
		coll: db.Collection("reactions"),
	}
}

// Upsert 兩段原子操作取代 read-modify-write，併發 toggle 不需要 core 端鎖
func (r *reactionRepository) Upsert(ctx context.Context, userID, messageID, emoji string) (*domain.ReactionChange, error) {
	// 1. 完全相同的 (user, message, emoji) 存在 → toggle off
	err := r.coll.FindOneAndDelete(ctx, bson.M{
		"user_id":    userID,
		"message_id": messageID,
		"emoji":      emoji,
	}).Err()
	if err == nil {
		return &domain.ReactionChange{Action: domain.ReactionRemoved, FinalEmoji: nil}, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// 2. 否則 upsert: 沒有舊資料是新增，有舊資料(不同 emoji)是更新
	filter := bson.M{"user_id": userID, "message_id": messageID}
	update := bson.M{
		"$set": bson.M{"emoji": emoji},
		"$setOnInsert": bson.M{
			"_id":        uuid.New().String(),
			"created_at": time.Now().Unix(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before)

	var before domain.Reaction
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	final := emoji
	if err == mongo.ErrNoDocuments {
		return &domain.ReactionChange{Action: domain.ReactionAdded, FinalEmoji: &final}, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.ReactionChange{Action: domain.ReactionUpdated, FinalEmoji: &final}, nil
}
