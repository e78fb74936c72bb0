package domain

// ChatSession definition one conversation and its participant list
// membership 由持久層作為唯一權威，core 不快取
type ChatSession struct {
	ID        string   `bson:"_id" json:"id"`
	Name      string   `bson:"name,omitempty" json:"name,omitempty"`
	Members   []string `bson:"members,omitempty" json:"members,omitempty"`
	CreatedAt int64    `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt int64    `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
