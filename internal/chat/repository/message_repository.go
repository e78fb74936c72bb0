package repository

import (
	"context"

	"realtime_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition message rows and their status sets
type MessageRepository interface {
	// Create 寫入一筆訊息，status set 為空、preview 為 null
	Create(ctx context.Context, msg *domain.Message) error
	// FindByID 找不到時回 domain.ErrNotFound
	FindByID(ctx context.Context, messageID string) (*domain.Message, error)
	// UpdatePreview 補上 link preview 並回傳更新後的完整訊息
	UpdatePreview(ctx context.Context, messageID string, preview *domain.LinkPreview) (*domain.Message, error)
	// Delete 刪除訊息，找不到時回 domain.ErrNotFound
	Delete(ctx context.Context, messageID string) error
	// AddDeliveredTo 只回傳實際有變動的 message id 子集
	AddDeliveredTo(ctx context.Context, messageIDs []string, userID string) ([]string, error)
	// AddReadBy 同 AddDeliveredTo，作用於 read_by
	AddReadBy(ctx context.Context, messageIDs []string, userID string) ([]string, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection("messages"),
	}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *messageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) UpdatePreview(ctx context.Context, messageID string, preview *domain.LinkPreview) (*domain.Message, error) {
	filter := bson.M{"_id": messageID}
	update := bson.M{"$set": bson.M{"link_preview": preview}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var msg domain.Message
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Delete(ctx context.Context, messageID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": messageID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *messageRepository) AddDeliveredTo(ctx context.Context, messageIDs []string, userID string) ([]string, error) {
	return r.addToSet(ctx, "delivered_to", messageIDs, userID)
}

func (r *messageRepository) AddReadBy(ctx context.Context, messageIDs []string, userID string) ([]string, error) {
	return r.addToSet(ctx, "read_by", messageIDs, userID)
}

// addToSet 先挑出尚未包含 userID 的子集再 $addToSet
// $addToSet 本身冪等，重複呼叫不會讓同一個 user 出現兩次
func (r *messageRepository) addToSet(ctx context.Context, field string, messageIDs []string, userID string) ([]string, error) {
	filter := bson.M{
		"_id": bson.M{"$in": messageIDs},
		field: bson.M{"$ne": userID},
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	changed := make([]string, 0, len(rows))
	for _, row := range rows {
		changed = append(changed, row.ID)
	}

	update := bson.M{"$addToSet": bson.M{field: userID}}
	_, err = r.coll.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": changed}}, update)
	if err != nil {
		return nil, err
	}
	return changed, nil
}
