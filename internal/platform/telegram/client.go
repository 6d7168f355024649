package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"giveaway-engine/internal/common/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Chat member statuses that count as being in the chat.
var memberStatuses = map[string]bool{
	"creator":       true,
	"administrator": true,
	"member":        true,
	"restricted":    true,
}

type Client struct {
	bot *tgbotapi.BotAPI
}

func NewClient(token string, debug bool) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	bot.Debug = debug

	logger.Info().Str("username", bot.Self.UserName).Msg("Telegram bot authorized")

	return &Client{bot: bot}, nil
}

// NewClientWithEndpoint targets a custom Bot API server. endpoint follows the
// tgbotapi format, e.g. "http://host/bot%s/%s".
func NewClientWithEndpoint(token, endpoint string, httpClient *http.Client) (*Client, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Client{bot: bot}, nil
}

// IsMember reports whether userID is currently in chatID.
func (c *Client) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	member, err := c.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest &&
			strings.Contains(strings.ToLower(apiErr.Message), "user not found") {
			return false, nil
		}
		return false, fmt.Errorf("getChatMember failed: %w", err)
	}

	return memberStatuses[member.Status], nil
}

// EditMessage replaces the text of an existing message.
func (c *Client) EditMessage(ctx context.Context, chatID, messageID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	edit := tgbotapi.NewEditMessageText(chatID, int(messageID), text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := c.bot.Request(edit); err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "message is not modified") {
			return nil
		}
		return fmt.Errorf("editMessageText failed: %w", err)
	}
	return nil
}

// SendMessage posts text to chatID, as a reply when replyTo is non-zero.
func (c *Client) SendMessage(ctx context.Context, chatID, replyTo int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if replyTo != 0 {
		msg.ReplyToMessageID = int(replyTo)
	}
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("sendMessage failed: %w", err)
	}
	return nil
}
