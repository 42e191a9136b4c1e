package handlers

import (
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"
)

// fakeContext records outgoing sends and serves canned update fields.
type fakeContext struct {
	tele.Context
	text string
	msg  *tele.Message
	sent []string
}

func (f *fakeContext) Text() string           { return f.text }
func (f *fakeContext) Message() *tele.Message { return f.msg }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func TestFlowInputUnwrapsSharedContact(t *testing.T) {
	c := &fakeContext{
		msg: &tele.Message{Contact: &tele.Contact{PhoneNumber: "+7 912 345-67-89"}},
	}
	if got := flowInput(c); got != "+7 912 345-67-89" {
		t.Fatalf("flowInput = %q, expected the contact phone", got)
	}
}

func TestFlowInputFallsBackToText(t *testing.T) {
	c := &fakeContext{text: "221B Baker Street, London", msg: &tele.Message{}}
	if got := flowInput(c); got != "221B Baker Street, London" {
		t.Fatalf("flowInput = %q, expected the message text", got)
	}
}

func TestFAQMentionsBotUsername(t *testing.T) {
	h := New(Options{FAQ: []FAQEntry{{Question: "Shipping?", Answer: "Worldwide."}}})
	h.SetBotUsername("shopbot")

	c := &fakeContext{}
	if err := h.FAQ(c); err != nil {
		t.Fatalf("faq: %v", err)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "@shopbot") {
		t.Fatalf("expected inline hint mentioning @shopbot, got %v", c.sent)
	}
}

func TestFAQWithoutUsernameStillAnswers(t *testing.T) {
	h := New(Options{FAQ: []FAQEntry{{Question: "Shipping?", Answer: "Worldwide."}}})

	c := &fakeContext{}
	if err := h.FAQ(c); err != nil {
		t.Fatalf("faq: %v", err)
	}
	if len(c.sent) != 1 || strings.Contains(c.sent[0], "@") {
		t.Fatalf("expected a hint without a mention, got %v", c.sent)
	}
}
