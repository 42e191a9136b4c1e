package telegram

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/zhukata/shopbot/core/logger"
	"github.com/zhukata/shopbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry is the routing table the bot is assembled from: slash commands
// with their metadata, callback handlers keyed by unique, and the two
// fallbacks (unknown callback, unrecognized text).
//
// Command registration happens once during wiring; callbacks guard their
// map with a mutex because handlers may register follow-up callbacks at
// runtime.
type Registry struct {
	commands map[string]commands.Command
	aliases  map[string]string // alias text -> canonical command key

	mu        sync.RWMutex
	callbacks map[string]tele.HandlerFunc

	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry returns an empty registry with a toast-style fallback for
// unknown callbacks.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		aliases:   make(map[string]string),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			_ = c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
			return nil
		},
	}
}

// RegisterCommand adds a command under its slash-prefixed name and indexes
// its aliases. Invalid or duplicate registrations are logged and dropped
// rather than failing the wiring.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	if r == nil {
		return
	}
	key := commands.Canonical(name)
	if key == "" || key[0] != '/' || !cmd.Valid() {
		logger.TWire.Warn("register.command.skip",
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	if _, dup := r.commands[key]; dup {
		logger.TWire.Warn("register.command.duplicate", slog.String("name", key))
		return
	}
	r.commands[key] = cmd
	for _, alias := range cmd.Aliases {
		if alias == "" {
			continue
		}
		if prev, dup := r.aliases[alias]; dup {
			logger.TWire.Warn("register.alias.duplicate",
				slog.String("alias", alias),
				slog.String("kept", prev),
			)
			continue
		}
		r.aliases[alias] = key
	}
}

// Commands exposes the registered command set for the command router.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// LookupCommand resolves incoming text to a registered command. It tries
// the text as-is, then slash-prefixed, then the alias index, so both
// "/cart" and a "🛒 Cart" reply-keyboard press land on the same handler.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	if cmd, ok := r.commands[text]; ok {
		return text, cmd, true
	}
	if key := commands.Canonical(text); key != text {
		if cmd, ok := r.commands[key]; ok {
			return key, cmd, true
		}
	}
	if key, ok := r.aliases[text]; ok {
		return key, r.commands[key], true
	}
	return "", commands.Command{}, false
}

// MenuCommands returns the commands to publish in the Telegram menu,
// sorted by name. Hidden and admin-only commands stay out.
func (r *Registry) MenuCommands() []tele.Command {
	list := make([]tele.Command, 0, len(r.commands))
	for name, cmd := range r.commands {
		if !cmd.Listed() {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: cmd.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// RegisterCallback maps a callback unique to its handler.
func (r *Registry) RegisterCallback(key string, h tele.HandlerFunc) error {
	if r == nil || key == "" || h == nil {
		logger.TWire.Warn("register.callback.skip",
			slog.String("key", key),
			slog.Bool("handler_nil", h == nil),
		)
		return fmt.Errorf("invalid callback registration: %q", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.callbacks[key]; dup {
		logger.TWire.Warn("register.callback.duplicate", slog.String("key", key))
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = h
	return nil
}

// GetCallback returns the handler registered under key, if any.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered callback keys, sorted. Diagnostics
// only.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetCallbackNotFound overrides the unknown-callback fallback.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

// CallbackNotFound returns the unknown-callback fallback.
func (r *Registry) CallbackNotFound() tele.HandlerFunc { return r.callbackNotFound }

// SetTextFallback installs the handler for text that matched neither an
// active flow nor a command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) { r.textFallback = h }

// TextFallback returns the unrecognized-text handler, which may be nil.
func (r *Registry) TextFallback() tele.HandlerFunc { return r.textFallback }

// InitBotCommands publishes the visible command list to Telegram's
// command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	if err := bot.SetCommands(reg.MenuCommands()); err != nil {
		logger.TWire.Error("register.commands.set_failed", slog.String("err", err.Error()))
	}
}
