package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

type callbackContext struct {
	tele.Context
	cb *tele.Callback
}

func (c *callbackContext) Callback() *tele.Callback { return c.cb }

func TestPayloadInt64(t *testing.T) {
	c := &callbackContext{cb: &tele.Callback{Data: "\flisting|1755000000123"}}
	id, err := PayloadInt64(c)
	if err != nil {
		t.Fatalf("PayloadInt64: %v", err)
	}
	if id != 1755000000123 {
		t.Fatalf("id = %d, want 1755000000123", id)
	}
}

func TestPayloadInt64Invalid(t *testing.T) {
	cases := []*tele.Callback{
		{Data: "\flisting|-"},
		{Data: "\fbuy_feed"},
		nil,
	}
	for _, cb := range cases {
		if _, err := PayloadInt64(&callbackContext{cb: cb}); err == nil {
			t.Fatalf("expected error for callback %+v", cb)
		}
	}
}

func TestParseCallbackData(t *testing.T) {
	key, payload := ParseCallbackData(&tele.Callback{Data: "\flisting|42"})
	if key != "listing" || payload != "42" {
		t.Fatalf("parsed %q/%q, want listing/42", key, payload)
	}

	key, payload = ParseCallbackData(&tele.Callback{Data: "\fbuy_feed"})
	if key != "buy_feed" || payload != "" {
		t.Fatalf("parsed %q/%q, want buy_feed/empty", key, payload)
	}

	if key, payload = ParseCallbackData(nil); key != "" || payload != "" {
		t.Fatal("nil callback must parse to empty key and payload")
	}
}
