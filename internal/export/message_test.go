package export

import (
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
)

func msg(fn func(*slack.Msg)) slack.Message {
	var m slack.Message
	fn(&m.Msg)
	return m
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		m    slack.Message
		want Kind
	}{
		{
			name: "plain user message",
			m:    msg(func(m *slack.Msg) { m.User = "U0123456789" }),
			want: KindUser,
		},
		{
			name: "bot message subtype",
			m:    msg(func(m *slack.Msg) { m.SubType = "bot_message"; m.BotID = "B012345" }),
			want: KindBot,
		},
		{
			name: "bot id without user",
			m:    msg(func(m *slack.Msg) { m.BotID = "B012345" }),
			want: KindBot,
		},
		{
			name: "deleted tombstone wins over user",
			m:    msg(func(m *slack.Msg) { m.SubType = "tombstone"; m.User = "U0123456789" }),
			want: KindDeleted,
		},
		{
			name: "message_deleted",
			m:    msg(func(m *slack.Msg) { m.SubType = "message_deleted" }),
			want: KindDeleted,
		},
		{
			name: "join event without sender",
			m:    msg(func(m *slack.Msg) { m.SubType = "channel_join" }),
			want: KindSystem,
		},
		{
			name: "join event with sender",
			m:    msg(func(m *slack.Msg) { m.SubType = "channel_join"; m.User = "U0123456789" }),
			want: KindUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.m))
		})
	}
}

func TestTsValue(t *testing.T) {
	assert.Equal(t, 1753160757.1234, tsValue("1753160757.123400"))
	assert.Equal(t, 0.0, tsValue("garbage"))
	assert.Equal(t, 0.0, tsValue(""))
	assert.Less(t, tsValue("1000.000100"), tsValue("1000.000200"))
}
