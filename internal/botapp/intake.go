package botapp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/state"
	"github.com/m3rciful/shopbot/internal/domain"
)

// Intake conversation states and draft keys.
const (
	stateIntakeName        state.State = "intake_name"
	stateIntakeDescription state.State = "intake_description"
	stateIntakeImage       state.State = "intake_image"

	tempIntakeName        = "intake_name"
	tempIntakeDescription = "intake_description"
)

func (a *App) registerIntakeStates() {
	state.RegisterHandler(stateIntakeName, a.handleIntakeName)
	state.RegisterHandler(stateIntakeDescription, a.handleIntakeDescription)
	state.RegisterHandler(stateIntakeImage, a.handleIntakeImage)
}

// handleAddProduct enters the intake conversation. Admin gating happens
// in the command route middleware.
func (a *App) handleAddProduct(c tele.Context) error {
	userID := c.Sender().ID
	a.sessions.Clear(userID)
	a.sessions.SetState(userID, stateIntakeName)
	return tghelpers.SendText(c, msgAskName)
}

func (a *App) handleIntakeName(c tele.Context) error {
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return tghelpers.SendText(c, msgAskName)
	}
	userID := c.Sender().ID
	a.sessions.SetTemp(userID, tempIntakeName, text)
	a.sessions.SetState(userID, stateIntakeDescription)
	return tghelpers.SendText(c, msgAskDescription)
}

func (a *App) handleIntakeDescription(c tele.Context) error {
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return tghelpers.SendText(c, msgAskDescription)
	}
	userID := c.Sender().ID
	a.sessions.SetTemp(userID, tempIntakeDescription, text)
	a.sessions.SetState(userID, stateIntakeImage)
	return tghelpers.SendText(c, msgAskImage)
}

// handleIntakeImage closes the conversation: builds the draft, commits
// it through the catalog service, and reports the outcome. The session
// is dropped whatever happens; a failed commit terminates the flow.
func (a *App) handleIntakeImage(c tele.Context) error {
	imageURL := strings.TrimSpace(c.Text())
	if !plausibleURL(imageURL) {
		return tghelpers.SendText(c, msgBadImageURL)
	}

	userID := c.Sender().ID
	name, _ := a.sessions.GetTempString(userID, tempIntakeName)
	description, _ := a.sessions.GetTempString(userID, tempIntakeDescription)
	a.sessions.Clear(userID)

	draft := domain.IntakeDraft{
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
	}

	ctx := tghelpers.BuildContext(c)
	product, err := a.catalog.Publish(ctx, draft, a.announcer(c))
	switch {
	case errors.Is(err, domain.ErrAnnounceFailed):
		// Committed but not posted; tell the admin which product to repost.
		return tghelpers.SendText(c, fmt.Sprintf(
			"Product %q (id %s) was added, but posting to the channel failed.",
			product.Name, product.ID,
		))
	case err != nil:
		return tghelpers.SendText(c, msgProductFailed)
	default:
		return tghelpers.SendText(c, msgProductAdded)
	}
}

func (a *App) handleCancel(c tele.Context) error {
	userID := c.Sender().ID
	if !a.sessions.InProgress(userID) {
		return tghelpers.SendText(c, msgNothingToDo)
	}
	a.sessions.Clear(userID)
	return tghelpers.SendText(c, msgCancelled)
}

func plausibleURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
