package botapp

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/telegram/format"
	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/orders"
)

// channelAnnouncer posts a committed product to the broadcast channel
// as a photo with a Markdown caption and an Order deep-link button.
type channelAnnouncer struct {
	bot       tele.API
	botName   string
	channelID int64
}

// announcer builds the channel announcer from the live handler context.
func (a *App) announcer(c tele.Context) catalog.Announcer {
	botName := ""
	if b, ok := c.Bot().(*tele.Bot); ok && b.Me != nil {
		botName = b.Me.Username
	}
	return &channelAnnouncer{
		bot:       c.Bot(),
		botName:   botName,
		channelID: a.cfg.Channel.ID,
	}
}

// Announce implements catalog.Announcer.
func (an *channelAnnouncer) Announce(_ context.Context, p domain.Product) error {
	deepLink := fmt.Sprintf("https://t.me/%s?start=%s", an.botName, orders.ProductRef(p.ID))

	markup := &tele.ReplyMarkup{}
	btn := markup.URL("🛒 Order", deepLink)
	markup.InlineKeyboard = keyboard.ToInlineKeyboard([][]tele.Btn{{btn}})

	photo := &tele.Photo{
		File:    tele.FromURL(p.ImageURL),
		Caption: fmt.Sprintf("*%s*\n%s", escapeMD(p.Name), escapeMD(p.Description)),
	}

	_, err := an.bot.Send(
		&tele.Chat{ID: an.channelID},
		photo,
		&tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup},
	)
	if err != nil {
		return fmt.Errorf("post to channel %d: %w", an.channelID, err)
	}
	return nil
}

// escapeMD guards user-entered values embedded in Markdown captions.
func escapeMD(s string) string {
	escaped, err := format.EscapeMarkdown(s, format.MarkdownV1, "")
	if err != nil {
		return s
	}
	return escaped
}
