package app

import (
	"sort"
	"sync"

	"realtime_chat_service/internal/chat/domain"
)

// PresenceRegistry 追蹤目前連線中的使用者
// 只存在記憶體，process 重啟即清空，不做持久化或恢復
// 同一個 user 多裝置連線會有多筆 entry，不依 userID 去重
type PresenceRegistry struct {
	mu      sync.RWMutex
	entries map[string]domain.PresenceEntry // key: connection id
}

// NewPresenceRegistry create PresenceRegistry
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		entries: make(map[string]domain.PresenceEntry),
	}
}

// Register 新增一筆 entry 並回傳變動後的完整快照
// 快照和寫入在同一把鎖內完成，廣播永遠反映 mutation 之後的狀態
func (r *PresenceRegistry) Register(connID string, user *domain.User) []domain.PresenceEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[connID] = domain.PresenceEntry{
		SocketID: connID,
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
	}
	return r.snapshotLocked()
}

// Unregister 移除 connection 的 entry 並回傳變動後的完整快照
// 不存在時是 no-op，回傳目前快照
func (r *PresenceRegistry) Unregister(connID string) []domain.PresenceEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, connID)
	return r.snapshotLocked()
}

// Snapshot 回傳目前所有 entry
func (r *PresenceRegistry) Snapshot() []domain.PresenceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *PresenceRegistry) snapshotLocked() []domain.PresenceEntry {
	list := make([]domain.PresenceEntry, 0, len(r.entries))
	for _, e := range r.entries {
		list = append(list, e)
	}
	// map 順序不定，排序讓廣播內容穩定
	sort.Slice(list, func(i, j int) bool {
		return list[i].SocketID < list[j].SocketID
	})
	return list
}
