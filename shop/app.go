package shop

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	tele "gopkg.in/telebot.v4"

	"github.com/zhukata/shopbot/core/bootstrap"
	tg "github.com/zhukata/shopbot/core/telegram"
	tghelpers "github.com/zhukata/shopbot/core/telegram/helpers"
	"github.com/zhukata/shopbot/core/telegram/router"
	"github.com/zhukata/shopbot/core/telegram/state"
	"github.com/zhukata/shopbot/shop/export"
	"github.com/zhukata/shopbot/shop/handlers"
	"github.com/zhukata/shopbot/shop/service"
	"github.com/zhukata/shopbot/shop/storage"
)

// App is the assembled storefront bot.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	handlers *handlers.Handlers
	registry *tg.Registry
}

// Bootstrap initializes logging, storage and services, returning the app
// ready to run.
func Bootstrap(cfg *Config) (*App, error) {
	var seeders []bootstrap.Seeder
	if cfg.SeedFile != "" {
		seeders = append(seeders, bootstrap.SeederFunc(SeedCatalog(cfg.SeedFile)))
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
		Seeders:  seeders,
	})
	if err != nil {
		return nil, err
	}
	db := res.DB

	sessions, err := buildSessions(cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	faq, err := loadFAQ(cfg.FAQFile)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	clients := storage.NewClientRepo(db)
	catalogRepo := storage.NewCatalogRepo(db)
	cartRepo := storage.NewCartRepo(db)
	orderRepo := storage.NewOrderRepo(db)

	catalog := service.NewCatalog(catalogRepo)
	carts := service.NewCarts(clients, cartRepo, catalogRepo)
	checkout := service.NewCheckout(clients, carts, orderRepo, sessions)
	sink := export.NewXLSXSink(cfg.Export.Path)
	payments := service.NewPayments(orderRepo, carts, sink, cfg.Payment.Currency)

	h := handlers.New(handlers.Options{
		Clients:      clients,
		Catalog:      catalog,
		Carts:        carts,
		Checkout:     checkout,
		Payments:     payments,
		PaymentToken: cfg.Payment.ProviderToken,
		ExportPath:   cfg.Export.Path,
		FAQ:          faq,
	})

	reg := tg.NewRegistry()
	if err := h.Register(reg); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{cfg: cfg, db: db, handlers: h, registry: reg}, nil
}

// TelegramRunOptions assembles routes and middleware for the bot runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.handlers.Flow(), a.registry, router.TextOptions{})...)
	routes = append(routes,
		tg.Route{Endpoint: tele.OnCheckout, Handler: a.handlers.OnPreCheckout},
		tg.Route{Endpoint: tele.OnPayment, Handler: a.handlers.OnPaymentSuccess},
		tg.Route{Endpoint: tele.OnQuery, Handler: a.handlers.OnInlineQuery},
	)

	return tg.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Core, rateLimited),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			if rt.Bot != nil && rt.Bot.Me != nil {
				a.handlers.SetBotUsername(rt.Bot.Me.Username)
			}
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			return a.db.Close()
		},
	}, nil
}

func rateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Too fast, try again in a moment"})
	}
	return tghelpers.SendText(c, "Too many requests, give it a second.")
}

func buildSessions(cfg *Config) (state.Store, error) {
	if cfg.Sessions.Backend == SessionsRedis {
		return state.NewRedisStore(context.Background(), state.RedisOptions{
			Addr:     cfg.Sessions.RedisAddr,
			Password: cfg.Sessions.RedisPass,
			DB:       cfg.Sessions.RedisDB,
			TTL:      cfg.Sessions.TTL(),
		})
	}
	return state.NewMemoryStore(), nil
}

func loadFAQ(path string) ([]handlers.FAQEntry, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("faq: read %s: %w", path, err)
	}
	var entries []handlers.FAQEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("faq: parse %s: %w", path, err)
	}
	return entries, nil
}
