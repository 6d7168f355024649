package telegram_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-engine/internal/platform/telegram/telegramtest"
)

func TestClient_IsMember(t *testing.T) {
	srv := telegramtest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()

	srv.SetStatus(1, "member")
	srv.SetStatus(2, "left")
	srv.SetStatus(3, "administrator")

	tests := []struct {
		name   string
		userID int64
		want   bool
	}{
		{"member", 1, true},
		{"left", 2, false},
		{"administrator", 3, true},
		{"unknown user", 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.IsMember(ctx, -100, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_IsMemberAPIFailure(t *testing.T) {
	srv := telegramtest.NewServer(t)
	client := srv.Client(t)
	srv.Fail("getChatMember")

	_, err := client.IsMember(context.Background(), -100, 1)
	assert.Error(t, err)
}

func TestClient_SendAndEdit(t *testing.T) {
	srv := telegramtest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()

	require.NoError(t, client.SendMessage(ctx, -100, 42, "hello"))
	require.NoError(t, client.EditMessage(ctx, -100, 42, "edited"))

	sends := srv.Calls("sendMessage")
	require.Len(t, sends, 1)
	assert.Equal(t, "hello", sends[0].Params["text"])
	assert.Equal(t, "42", sends[0].Params["reply_to_message_id"])

	edits := srv.Calls("editMessageText")
	require.Len(t, edits, 1)
	assert.Equal(t, "42", edits[0].Params["message_id"])
}

func TestClient_CanceledContext(t *testing.T) {
	srv := telegramtest.NewServer(t)
	client := srv.Client(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, client.SendMessage(ctx, -100, 0, "x"), context.Canceled)
	assert.Empty(t, srv.Calls("sendMessage"))
}
