package domain

// User 表示連線驗證後綁定的身份，連線存活期間不會改變
type User struct {
	ID      string `bson:"_id" json:"id"`
	Email   string `bson:"email" json:"email"`
	Name    string `bson:"name,omitempty" json:"name,omitempty"`
	Picture string `bson:"picture,omitempty" json:"picture,omitempty"`
}

// DisplayName name 為空時退回 email
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// PresenceEntry definition one live connection in the presence registry
// 同一個 user 多裝置連線時會有多筆 entry，不做去重
type PresenceEntry struct {
	SocketID string `json:"socketId"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}
