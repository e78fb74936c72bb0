package app

import (
	"encoding/json"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
)

// publishEvent 序列化 payload 後送進指定 channel
// origin 帶發送端 connection id，訂閱端用來排除自己
func publishEvent(ps repository.PubSub, channel, event, origin string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return ps.Publish(channel, domain.ServerEvent{
		Event:   event,
		Origin:  origin,
		Payload: raw,
	})
}

// eventToResponse 把 fanout 封包轉成前端 frame
func eventToResponse(evt domain.ServerEvent) domain.WSResponse {
	var payload map[string]interface{}
	if len(evt.Payload) > 0 {
		// payload 由自己這端序列化，失敗只會發生在格式臭掉時
		_ = json.Unmarshal(evt.Payload, &payload)
	}
	return domain.WSResponse{
		Action:  evt.Event,
		Success: true,
		Payload: payload,
	}
}
