package okx

import (
	"encoding/json"
	"strings"

	"okxflow/models"
)

// classifyEnvelope holds only the fields needed to route a raw websocket
// frame. Presence of "success" marks control-plane acknowledgements.
type classifyEnvelope struct {
	Success *json.RawMessage `json:"success"`
	Topic   string           `json:"topic"`
}

// classify routes a raw websocket frame to its consumer queue kind. Frames
// carrying a top-level "success" key are subscribe acknowledgements and stay
// unrouted, as does anything whose topic does not resolve to a known channel.
func classify(raw []byte) models.ChannelKind {
	var env classifyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return models.ChannelKindUnrouted
	}
	if env.Success != nil {
		return models.ChannelKindUnrouted
	}
	switch channelBase(env.Topic) {
	case wsTradesChannel:
		return models.ChannelKindTrade
	case wsOrderBookChannel:
		return models.ChannelKindDiff
	case wsInstrumentsChannel:
		return models.ChannelKindFunding
	}
	return models.ChannelKindUnrouted
}

// channelBase strips the instrument suffix from a topic, returning everything
// before the last '.' or '/' separator. A topic with no separator is its own
// base.
func channelBase(topic string) string {
	idx := strings.LastIndexAny(topic, "./")
	if idx < 0 {
		return topic
	}
	return topic[:idx]
}
