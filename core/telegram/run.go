package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	coreconfig "github.com/zhukata/shopbot/core/config"
	"github.com/zhukata/shopbot/core/logger"
	tghelpers "github.com/zhukata/shopbot/core/telegram/helpers"
	tgsender "github.com/zhukata/shopbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware names a global middleware registered through bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds a handler to a telebot endpoint. Endpoint values go
// straight to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions is everything RunTelegram needs to assemble the bot.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options

	Middlewares []Middleware
	Routes      []Route

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime is handed to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram builds the bot from opts, wires middleware and routes,
// publishes the command menu, and polls until ctx is cancelled or the
// poller exits on its own.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	cfg := opts.Config

	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	buildStart := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: BuildPoller(cfg),
		Client: BuildHTTPClient(),
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logRunMode(ctx, cfg, time.Since(buildStart))

	// Switching from webhook to polling leaves a stale webhook behind,
	// and getUpdates refuses to run while one is set.
	if cfg.Telegram.RunMode == coreconfig.RunModeLongpoll {
		clearWebhook(cfg.Telegram.Token)
	}

	dispatcher := tgsender.NewDispatcher(opts.DispatcherOptions)
	tghelpers.SetDispatcher(dispatcher)
	teardown := func() {
		dispatcher.Close()
		tghelpers.SetDispatcher(nil)
	}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	InitBotCommands(bot, reg)

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: reg}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			teardown()
			return err
		}
	}

	polling := make(chan struct{})
	go func() {
		bot.Start()
		close(polling)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-polling
		runErr = ctx.Err()
	case <-polling:
	}

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(ctx, rt)
	}
	teardown()

	if stopErr != nil {
		return stopErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func logRunMode(ctx context.Context, cfg *coreconfig.Config, buildTook time.Duration) {
	if cfg.Telegram.RunMode == coreconfig.RunModeWebhook {
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "webhook mode",
			slog.String("event", "mode"),
			slog.String("mode", "webhook"),
			slog.String("listen", fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port)),
			slog.String("public_url", cfg.Webhook.URL),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
		return
	}
	timeout := cfg.Telegram.LongPollTimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "polling mode",
		slog.String("event", "mode"),
		slog.String("mode", "polling"),
		slog.Int("timeout_seconds", timeout),
		slog.Duration("duration", logger.RoundMS(buildTook)),
	)
}

// clearWebhook calls deleteWebhook directly; telebot has no API for it.
// Failure is logged and polling proceeds, Telegram may still recover.
func clearWebhook(token string) {
	if err := deleteWebhook(token); err != nil {
		logger.TG.Warn("failed to delete webhook",
			slog.String("event", "delete_webhook"),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TG.Info("webhook deleted", slog.String("event", "delete_webhook"))
}

func deleteWebhook(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := fmt.Sprintf("https://api.telegram.org/bot%s/deleteWebhook", token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url,
		strings.NewReader("drop_pending_updates=false"))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}
