package repository

import (
	"context"

	"realtime_chat_service/internal/chat/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UserRepository definition identity resolution for connection auth
type UserRepository interface {
	// FindByID 找不到時回 (nil, nil)，由呼叫端決定是否拒絕連線
	FindByID(ctx context.Context, userID string) (*domain.User, error)
}

type userRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository create a UserRepository
func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, "SELECT id, email, name, picture FROM users WHERE id = $1", userID)

	var (
		user          domain.User
		name, picture *string
	)
	err := row.Scan(&user.ID, &user.Email, &name, &picture)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if name != nil {
		user.Name = *name
	}
	if picture != nil {
		user.Picture = *picture
	}
	return &user, nil
}
