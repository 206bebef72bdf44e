package export

import (
	"strings"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userMsg(user, text, ts string) slack.Message {
	return msg(func(m *slack.Msg) {
		m.User = user
		m.Text = text
		m.Timestamp = ts
	})
}

func TestCollectUserIDs(t *testing.T) {
	messages := []slack.Message{
		userMsg("U0000000001", "hello", "1000.000100"),
		userMsg("U0000000002", "ping <@U0000000003>", "1001.000100"),
		userMsg("U0000000001", "me again", "1002.000100"),
	}
	replies := map[string][]slack.Message{
		"1001.000100": {
			userMsg("U0000000004", "pong <@U0000000001>", "1003.000100"),
		},
	}

	ids := CollectUserIDs(messages, replies)
	assert.Equal(t, []string{"U0000000001", "U0000000002", "U0000000003", "U0000000004"}, ids)
}

func TestCollectUserIDs_RichTextMentions(t *testing.T) {
	m := msg(func(m *slack.Msg) {
		m.User = "U0000000001"
		m.Timestamp = "1000.000100"
		m.Blocks = slack.Blocks{BlockSet: []slack.Block{
			&slack.RichTextBlock{
				Type: slack.MBTRichText,
				Elements: []slack.RichTextElement{
					&slack.RichTextSection{
						Type: slack.RTESection,
						Elements: []slack.RichTextSectionElement{
							&slack.RichTextSectionUserElement{Type: slack.RTSEUser, UserID: "U0000000009"},
						},
					},
				},
			},
		}}
	})

	ids := CollectUserIDs([]slack.Message{m}, nil)
	assert.Equal(t, []string{"U0000000001", "U0000000009"}, ids)
}

func TestEnrich_OrdersAscending(t *testing.T) {
	// History pages arrive newest first.
	messages := []slack.Message{
		userMsg("U0000000001", "third", "1002.000100"),
		userMsg("U0000000001", "second", "1001.000100"),
		userMsg("U0000000001", "first", "1000.000100"),
	}
	users := map[string]string{"U0000000001": "Ada Lovelace"}

	out := Enrich(messages, nil, users)
	require.Len(t, out, 3)
	assert.Equal(t, "first", out[0].Content)
	assert.Equal(t, "second", out[1].Content)
	assert.Equal(t, "third", out[2].Content)
}

func TestEnrich_SenderNames(t *testing.T) {
	messages := []slack.Message{
		userMsg("U0000000001", "hi", "1000.000100"),
		userMsg("U0000000404", "hi too", "1001.000100"),
		msg(func(m *slack.Msg) {
			m.SubType = "bot_message"
			m.BotID = "B0000001"
			m.Username = "Deploy Bot"
			m.Text = "release shipped"
			m.Timestamp = "1002.000100"
		}),
		msg(func(m *slack.Msg) {
			m.SubType = "channel_topic"
			m.Topic = "new topic"
			m.Timestamp = "1003.000100"
		}),
	}
	users := map[string]string{"U0000000001": "Ada Lovelace"}

	out := Enrich(messages, nil, users)
	require.Len(t, out, 4)
	assert.Equal(t, "Ada Lovelace", out[0].Sender)
	assert.Equal(t, "Unknown User", out[1].Sender)
	assert.Equal(t, "Deploy Bot", out[2].Sender)
	assert.Equal(t, "System", out[3].Sender)
	assert.Equal(t, "Topic: new topic", out[3].Content)
}

func TestEnrich_FileOnlyMessage(t *testing.T) {
	m := msg(func(m *slack.Msg) {
		m.User = "U0000000001"
		m.Timestamp = "1000.000100"
		m.Files = []slack.File{
			{Name: "report.pdf", Permalink: "https://files.example.com/report.pdf"},
			{Name: "notes.txt", Mimetype: "text/plain"},
		}
	})
	users := map[string]string{"U0000000001": "Ada Lovelace"}

	out := Enrich([]slack.Message{m}, nil, users)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Content, attachmentMarker)
	assert.Contains(t, out[0].Content, "[report.pdf](https://files.example.com/report.pdf)")
	assert.Contains(t, out[0].Content, "notes.txt (text/plain)")
}

func TestEnrich_DropsEmptyMessages(t *testing.T) {
	messages := []slack.Message{
		userMsg("U0000000001", "kept", "1000.000100"),
		userMsg("U0000000001", "", "1001.000100"),
		userMsg("U0000000001", "   ", "1002.000100"),
	}
	users := map[string]string{"U0000000001": "Ada Lovelace"}

	out := Enrich(messages, nil, users)
	require.Len(t, out, 1)
	assert.Equal(t, "kept", out[0].Content)
}

func TestEnrich_EmptyParentWithRepliesSurvives(t *testing.T) {
	parent := userMsg("U0000000001", "", "1000.000100")
	replies := map[string][]slack.Message{
		"1000.000100": {
			userMsg("U0000000002", "reply two", "1002.000100"),
			userMsg("U0000000002", "reply one", "1001.000100"),
		},
	}
	users := map[string]string{
		"U0000000001": "Ada Lovelace",
		"U0000000002": "Grace Hopper",
	}

	out := Enrich([]slack.Message{parent}, replies, users)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].Content)
	require.Len(t, out[0].Replies, 2)

	// Replies sort ascending regardless of fetch order.
	assert.Equal(t, "reply one", out[0].Replies[0].Content)
	assert.Equal(t, "reply two", out[0].Replies[1].Content)
}

func TestEnrich_SyntheticSystemEvents(t *testing.T) {
	tests := []struct {
		subtype string
		setup   func(*slack.Msg)
		want    string
	}{
		{"channel_join", func(m *slack.Msg) {}, "joined the channel"},
		{"channel_leave", func(m *slack.Msg) {}, "left the channel"},
		{"channel_purpose", func(m *slack.Msg) { m.Purpose = "keep shipping" }, "Purpose: keep shipping"},
		{"channel_name", func(m *slack.Msg) { m.Name = "new-name" }, "Renamed the channel to #new-name"},
		{"pinned_item", func(m *slack.Msg) {}, "Pinned a message"},
		{"message_deleted", func(m *slack.Msg) {}, "[message deleted]"},
	}

	for _, tt := range tests {
		t.Run(tt.subtype, func(t *testing.T) {
			m := msg(func(m *slack.Msg) {
				m.SubType = tt.subtype
				m.Timestamp = "1000.000100"
				tt.setup(m)
			})
			out := Enrich([]slack.Message{m}, nil, nil)
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0].Content)
		})
	}
}

func TestEnrich_NormalizesMentionsInContent(t *testing.T) {
	m := userMsg("U0000000001", "thanks <@U0000000002>!", "1000.000100")
	users := map[string]string{
		"U0000000001": "Ada Lovelace",
		"U0000000002": "Grace Hopper",
	}

	out := Enrich([]slack.Message{m}, nil, users)
	require.Len(t, out, 1)
	assert.Equal(t, "thanks @Grace Hopper!", out[0].Content)
	assert.False(t, strings.Contains(out[0].Content, "U0000000002"))
}
