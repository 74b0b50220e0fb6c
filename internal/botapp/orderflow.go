package botapp

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/orders"
)

// Callback keys for the order flow buttons. The button data carries the
// "order_<id>" product reference; key and data together form the wire
// action strings parsed by orders.ParseAction.
const (
	cbProceed = "proceed"
	cbConfirm = "confirm"
)

// handleStart greets the user or, when a deep-link payload is present,
// opens the referenced product.
func (a *App) handleStart(c tele.Context) error {
	payload := strings.TrimSpace(c.Message().Payload)
	if payload == "" {
		return tghelpers.SendText(c, msgWelcome)
	}

	action, err := orders.ParseAction(payload)
	if err != nil || action.Kind != orders.ActionSelect {
		return tghelpers.SendText(c, msgInvalidStart)
	}

	ctx := tghelpers.BuildContext(c)
	product, err := a.flow.Select(ctx, c.Sender().ID, action.ProductID)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return tghelpers.SendText(c, msgProductMissing)
	case err != nil:
		return tghelpers.SendText(c, msgOrderProblem)
	}

	markup := keyboard.InlineButtons([]keyboard.InlineBtn{{
		Text:   "✅ Proceed with purchase",
		Unique: cbProceed,
		Data:   orders.ProductRef(product.ID),
	}})
	photo := &tele.Photo{
		File: tele.FromURL(product.ImageURL),
		Caption: fmt.Sprintf(
			"You have selected *%s*.\n%s\n\nWould you like to proceed with the purchase?",
			escapeMD(product.Name), escapeMD(product.Description),
		),
	}
	return c.Send(photo, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup})
}

// handleProceed re-validates the product and asks for final confirmation.
func (a *App) handleProceed(c tele.Context) error {
	action, err := orders.ParseAction(cbProceed + "_" + callbacks.CallbackPayload(c))
	if err != nil || action.Kind != orders.ActionProceed {
		return editOrSend(c, msgBadConfirm, nil)
	}

	ctx := tghelpers.BuildContext(c)
	product, err := a.flow.Proceed(ctx, c.Sender().ID, action.ProductID)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return editOrSend(c, msgProductMissing, nil)
	case err != nil:
		return editOrSend(c, msgOrderProblem, nil)
	}

	markup := keyboard.InlineButtons([]keyboard.InlineBtn{{
		Text:   "🛒 Confirm order",
		Unique: cbConfirm,
		Data:   orders.ProductRef(product.ID),
	}})
	prompt := fmt.Sprintf("Confirm your order for *%s*?", escapeMD(product.Name))
	return editOrSend(c, prompt, markup)
}

// handleConfirm validates the confirmation payload, commits the order,
// and replaces the displayed message with a thank-you note.
func (a *App) handleConfirm(c tele.Context) error {
	action, err := orders.ParseAction(cbConfirm + "_" + callbacks.CallbackPayload(c))
	if err != nil || action.Kind != orders.ActionConfirm {
		return editOrSend(c, msgBadConfirm, nil)
	}

	sender := c.Sender()
	cust := orders.Customer{ID: sender.ID}
	if sender.Username != "" {
		username := sender.Username
		cust.Username = &username
	}

	ctx := tghelpers.BuildContext(c)
	order, err := a.flow.Confirm(ctx, cust, action.ProductID)
	switch {
	case errors.Is(err, domain.ErrStaleAction):
		return c.Respond(&tele.CallbackResponse{Text: msgStaleAction})
	case errors.Is(err, domain.ErrProductNotFound):
		return editOrSend(c, msgProductMissing, nil)
	case err != nil:
		return editOrSend(c, msgOrderProblem, nil)
	}

	thanks := fmt.Sprintf(
		"Thank you, %s! Your order for *%s* has been confirmed.",
		escapeMD(displayName(sender)), escapeMD(order.ProductName),
	)
	return editOrSend(c, thanks, nil)
}

// editOrSend rewrites the message the button lives on. Product cards
// are photo messages, so the caption is edited; plain messages fall
// back to a text edit or a fresh send.
func editOrSend(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if msg := c.Message(); msg != nil && msg.Photo != nil {
		return c.EditCaption(text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup})
	}
	return tghelpers.EditOrSendMD(c, text, markup)
}

func displayName(u *tele.User) string {
	switch {
	case u == nil:
		return "customer"
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	}
	return "customer"
}
