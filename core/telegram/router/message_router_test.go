package router

import (
	"testing"

	tg "github.com/shomybay/marketbot/core/telegram"
	"github.com/shomybay/marketbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// textContext stubs the handful of tele.Context methods the text routing
// path touches. Everything else panics via the embedded nil interface.
type textContext struct {
	tele.Context
	text   string
	sender *tele.User
	values map[string]interface{}
}

func newTextContext(text string, userID int64) *textContext {
	return &textContext{
		text:   text,
		sender: &tele.User{ID: userID},
		values: make(map[string]interface{}),
	}
}

func (c *textContext) Text() string { return c.text }
func (c *textContext) Sender() *tele.User { return c.sender }
func (c *textContext) Chat() *tele.Chat { return &tele.Chat{ID: c.sender.ID} }
func (c *textContext) Update() tele.Update { return tele.Update{ID: int(c.sender.ID)} }
func (c *textContext) Callback() *tele.Callback { return nil }
func (c *textContext) Set(k string, v interface{}) { c.values[k] = v }
func (c *textContext) Get(k string) interface{} { return c.values[k] }

func onTextHandler(t *testing.T, routes []tg.Route) tele.HandlerFunc {
	t.Helper()
	for _, r := range routes {
		if r.Endpoint == tele.OnText {
			return r.Handler
		}
	}
	t.Fatal("no OnText route")
	return nil
}

func TestTextRouteGatesAdminCommand(t *testing.T) {
	const adminID = 99

	invoked := false
	reg := tg.NewRegistry()
	reg.RegisterCommand("/status", commands.Command{
		Handler:     func(tele.Context) error { invoked = true; return nil },
		Description: "runtime counters",
		AdminOnly:   true,
		Hidden:      true,
	})

	h := onTextHandler(t, TextRoutes(nil, reg, TextOptions{AdminID: adminID}))

	// The slash-less spelling resolves through command lookup; for a
	// non-admin it must be swallowed, not dispatched.
	if err := h(newTextContext("status", 42)); err != nil {
		t.Fatalf("non-admin text: %v", err)
	}
	if invoked {
		t.Fatal("admin-only handler ran for a non-admin sender")
	}

	if err := h(newTextContext("status", adminID)); err != nil {
		t.Fatalf("admin text: %v", err)
	}
	if !invoked {
		t.Fatal("admin-only handler did not run for the admin sender")
	}
}

func TestTextRouteDispatchesAlias(t *testing.T) {
	invoked := false
	reg := tg.NewRegistry()
	reg.RegisterCommand("/sell", commands.Command{
		Handler:     func(tele.Context) error { invoked = true; return nil },
		Description: "create listing",
		Aliases:     []string{"💰 Продать"},
	})

	h := onTextHandler(t, TextRoutes(nil, reg, TextOptions{AdminID: 99}))

	if err := h(newTextContext("💰 Продать", 42)); err != nil {
		t.Fatalf("alias text: %v", err)
	}
	if !invoked {
		t.Fatal("menu button alias did not dispatch the command handler")
	}
}
