package telegram

import (
	"testing"

	"github.com/shomybay/marketbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func nopHandler(tele.Context) error { return nil }

// The registry must stay usable before InitLogger runs: rejected
// registrations log nothing rather than dereferencing a nil logger.
func TestRegisterCommandValidation(t *testing.T) {
	reg := NewRegistry()

	reg.RegisterCommand("status", commands.Command{Handler: nopHandler, Description: "no slash"})
	reg.RegisterCommand("", commands.Command{Handler: nopHandler, Description: "empty name"})
	reg.RegisterCommand("/status", commands.Command{Description: "nil handler"})
	reg.RegisterCommand("/status", commands.Command{Handler: nopHandler, Description: "counters"})
	reg.RegisterCommand("/status", commands.Command{Handler: nopHandler, Description: "duplicate"})

	if got := len(reg.Commands()); got != 1 {
		t.Fatalf("registered commands = %d, want 1", got)
	}
	if reg.Commands()["/status"].Description != "counters" {
		t.Fatal("duplicate registration replaced the original command")
	}
}

func TestRegisterCallbackDuplicate(t *testing.T) {
	reg := NewRegistry()

	if err := reg.RegisterCallback("", nopHandler); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := reg.RegisterCallback("buy_feed", nopHandler); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCallback("buy_feed", nopHandler); err == nil {
		t.Fatal("expected error for duplicate key")
	}
}

func TestLookupCommandResolvesSlashlessAndAliases(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/sell", commands.Command{
		Handler:     nopHandler,
		Description: "create listing",
		Aliases:     []string{"💰 Продать"},
	})

	for _, name := range []string{"/sell", "sell", "💰 Продать"} {
		key, _, ok := reg.LookupCommand(name)
		if !ok || key != "/sell" {
			t.Fatalf("LookupCommand(%q) = %q, %v; want /sell, true", name, key, ok)
		}
	}
	if _, _, ok := reg.LookupCommand("buy"); ok {
		t.Fatal("LookupCommand matched an unregistered name")
	}
}
