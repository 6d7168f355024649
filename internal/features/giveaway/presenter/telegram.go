package presenter

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"giveaway-engine/internal/features/giveaway/models"
)

type Messenger interface {
	EditMessage(ctx context.Context, chatID, messageID int64, text string) error
	SendMessage(ctx context.Context, chatID, replyTo int64, text string) error
}

// Telegram keeps the giveaway message in the channel up to date and
// announces the winners under it.
type Telegram struct {
	messenger Messenger
}

func NewTelegram(messenger Messenger) *Telegram {
	return &Telegram{messenger: messenger}
}

func (t *Telegram) OnParticipantCountChanged(ctx context.Context, g *models.Giveaway, count int) error {
	if g.MessageID == 0 {
		return nil
	}
	return t.messenger.EditMessage(ctx, g.ChannelID, g.MessageID, RenderActive(g, count))
}

func (t *Telegram) OnClosed(ctx context.Context, g *models.Giveaway, winnerIDs []int64) error {
	if g.MessageID != 0 {
		if err := t.messenger.EditMessage(ctx, g.ChannelID, g.MessageID, RenderClosed(g, winnerIDs)); err != nil {
			return err
		}
	}
	return t.messenger.SendMessage(ctx, g.ChannelID, g.MessageID, RenderAnnouncement(g, winnerIDs))
}

func RenderActive(g *models.Giveaway, count int) string {
	var b strings.Builder
	writeHeader(&b, g)

	if g.MaxEntries != nil {
		fmt.Fprintf(&b, "Participants: %d/%d\n", count, *g.MaxEntries)
	} else {
		fmt.Fprintf(&b, "Participants: %d\n", count)
	}
	fmt.Fprintf(&b, "Winners: %d\n", g.WinnersCount)
	fmt.Fprintf(&b, "Ends: %s", g.EndsAt.UTC().Format(time.RFC1123))
	return b.String()
}

func RenderClosed(g *models.Giveaway, winnerIDs []int64) string {
	var b strings.Builder
	writeHeader(&b, g)

	fmt.Fprintf(&b, "Ended: %s\n", g.EndsAt.UTC().Format(time.RFC1123))
	if len(winnerIDs) == 0 {
		b.WriteString("No valid participants.")
		return b.String()
	}
	b.WriteString("Winners: ")
	b.WriteString(mentions(winnerIDs))
	return b.String()
}

func RenderAnnouncement(g *models.Giveaway, winnerIDs []int64) string {
	name := html.EscapeString(g.Name)
	if len(winnerIDs) == 0 {
		return fmt.Sprintf("Giveaway <b>%s</b> ended without winners.", name)
	}
	return fmt.Sprintf("Congratulations %s! You won <b>%s</b>.", mentions(winnerIDs), name)
}

func writeHeader(b *strings.Builder, g *models.Giveaway) {
	fmt.Fprintf(b, "<b>%s</b>\n", html.EscapeString(g.Name))
	if g.Description != "" {
		b.WriteString(html.EscapeString(g.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func mentions(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf(`<a href="tg://user?id=%d">%d</a>`, id, id)
	}
	return strings.Join(parts, ", ")
}
