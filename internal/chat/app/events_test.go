package app

import (
	"encoding/json"
	"testing"

	"realtime_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 測試 publishEvent 封包格式與 eventToResponse 的還原
func TestPublishEventAndEventToResponse(t *testing.T) {
	mockPubSub := new(MockRedisPubSub)

	var captured domain.ServerEvent
	mockPubSub.On("Publish", "chat:room:r1", mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(domain.ServerEvent)
		}).Return(nil)

	payload := domain.TypingEventPayload{UserID: "u1", UserName: "Alice", IsTyping: true}
	err := publishEvent(mockPubSub, "chat:room:r1", domain.EventUserTyping, "conn-1", payload)
	assert.NoError(t, err)

	assert.Equal(t, domain.EventUserTyping, captured.Event)
	assert.Equal(t, "conn-1", captured.Origin)

	var decoded domain.TypingEventPayload
	assert.NoError(t, json.Unmarshal(captured.Payload, &decoded))
	assert.Equal(t, payload, decoded)

	resp := eventToResponse(captured)
	assert.Equal(t, domain.EventUserTyping, resp.Action)
	assert.True(t, resp.Success)
	assert.Equal(t, "Alice", resp.Payload["user_name"])
	assert.Equal(t, true, resp.Payload["is_typing"])
}
