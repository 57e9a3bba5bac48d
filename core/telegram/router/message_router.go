package router

import (
	"time"

	tg "github.com/shomybay/marketbot/core/telegram"
	"github.com/shomybay/marketbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Wizard is the minimal interface for a stepwise conversation manager.
type Wizard interface {
	InProgress(userID int64) bool
	HandleText(c tele.Context) error
}

// TextOptions controls admin gating and fallback behaviour for text updates.
type TextOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
	UnknownText   tele.HandlerFunc
}

// TextRoutes builds the handler for plain text routing.
// Menu buttons (command aliases) win over an active wizard so that pressing
// a reply-keyboard button always restarts the corresponding flow.
func TextRoutes(wiz Wizard, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				h := cmd.Handler
				// Alias lookup must not open a side door around the admin
				// gate that the slash route carries.
				if cmd.AdminOnly {
					h = middleware.AdminOnlyMiddleware(middleware.AdminOptions{
						AdminID:  opts.AdminID,
						OnReject: opts.OnAdminReject,
					})(h)
				}
				return handleWithSummary(c, name, start, "", "", func() error {
					return h(c)
				})
			}
		}

		if wiz != nil && wiz.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "wizard", start, "", "", func() error {
				return wiz.HandleText(c)
			})
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	// Photos reach the wizard only; everything else is acknowledged and dropped.
	photoHandler := func(c tele.Context) error {
		start := time.Now()
		if wiz != nil && wiz.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "wizard_photo", start, "", "", func() error {
				return wiz.HandleText(c)
			})
		}
		logHandlerSummary(c, "unexpected_photo", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
		{
			Endpoint: tele.OnPhoto,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(photoHandler)),
		},
	}
}
