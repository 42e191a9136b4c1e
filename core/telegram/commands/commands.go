// Package commands declares the metadata attached to every registered
// bot command.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command couples a handler with the metadata the registry needs to
// route, list and gate it.
type Command struct {
	Handler     tele.HandlerFunc
	Description string

	// AdminOnly gates the command behind the configured admin id.
	AdminOnly bool
	// Hidden keeps the command out of the Telegram command menu.
	Hidden bool

	// Aliases are alternative spellings routed to the same handler.
	// They are matched without a slash prefix, which is how reply
	// keyboard button labels reach command handlers.
	Aliases []string
}

// Listed reports whether the command belongs in the public command menu.
func (c Command) Listed() bool {
	return !c.Hidden && !c.AdminOnly
}

// Valid reports whether the command can be registered at all.
func (c Command) Valid() bool {
	return c.Handler != nil && c.Description != ""
}

// Canonical normalizes a command name to its slash-prefixed form.
func Canonical(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + name
}
