// Package botapp wires the shopbot application: configuration, storage
// backend selection, conversation services, and the Telegram surface.
package botapp

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/bootstrap"
	corecmd "github.com/m3rciful/shopbot/core/cmd"
	"github.com/m3rciful/shopbot/core/logger"
	coretelegram "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/router"
	"github.com/m3rciful/shopbot/core/telegram/state"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/orders"
	"github.com/m3rciful/shopbot/internal/storage"
	"log/slog"
)

// App is the assembled shopbot ready to expose telegram run options.
type App struct {
	cfg      *Config
	sessions state.Manager
	products storage.ProductStore
	orders   storage.OrderStore
	catalog  *catalog.Service
	flow     *orders.Service
}

type stores struct {
	products storage.ProductStore
	orders   storage.OrderStore
}

// Bootstrap initializes infrastructure and assembles the application.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("botapp: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:       cfg.CoreConfig(),
		Database:     cfg.Database,
		SkipDatabase: cfg.Storage.Backend != storage.BackendPostgres,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	provider := bootstrap.TypedServiceProviderFunc[*stores](provideStores)
	st, err := provider.ProvideTyped(ctx, cfg, res.DB)
	if err != nil {
		return nil, err
	}

	sessions := state.NewMemoryManager(time.Duration(cfg.Session.TTLMinutes) * time.Minute)

	app := &App{
		cfg:      cfg,
		sessions: sessions,
		products: st.products,
		orders:   st.orders,
		catalog:  catalog.New(st.products),
		flow:     orders.New(st.products, st.orders, sessions),
	}
	app.primeStores(ctx)
	return app, nil
}

// provideStores selects the persistence backend from configuration.
func provideStores(_ context.Context, cfgAny interface{}, st bootstrap.Storage) (*stores, error) {
	cfg, ok := cfgAny.(*Config)
	if !ok {
		return nil, fmt.Errorf("botapp: unexpected config type %T", cfgAny)
	}

	switch cfg.Storage.Backend {
	case storage.BackendPostgres:
		db, _ := st.(*sqlx.DB)
		if db == nil {
			return nil, fmt.Errorf("botapp: postgres backend selected but no database connection provided")
		}
		return &stores{
			products: storage.NewPostgresProductStore(db),
			orders:   storage.NewPostgresOrderStore(db),
		}, nil
	case storage.BackendAPI:
		client := storage.NewAPIHTTPClient()
		return &stores{
			products: storage.NewAPIProductStore(cfg.Storage.ProductAPIURL, client),
			orders:   storage.NewAPIOrderStore(cfg.Storage.OrderAPIURL, client),
		}, nil
	default:
		return &stores{
			products: storage.NewFileProductStore(cfg.Storage.ProductsFile),
			orders:   storage.NewFileOrderStore(cfg.Storage.OrdersFile),
		}, nil
	}
}

// primeStores reads the persisted catalog at startup. Absence of prior
// data is recoverable; only the outcome is logged.
func (a *App) primeStores(ctx context.Context) {
	products, err := a.products.Load(ctx)
	if err != nil {
		logger.Warn(ctx, "app", "catalog.load.failed",
			slog.String("backend", a.cfg.Storage.Backend),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Info(ctx, "app", "catalog.loaded",
		slog.String("backend", a.cfg.Storage.Backend),
		slog.Int("products_total", len(products)),
	)
}

// TelegramRunOptions builds the registry, routes, and middleware chain.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Start the bot or open a product",
	})
	reg.RegisterCommand("/add_product", commands.Command{
		Handler:     a.handleAddProduct,
		Description: "Add a new product to the catalog",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Cancel the current operation",
	})

	if err := reg.RegisterCallback(cbProceed, a.handleProceed); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(cbConfirm, a.handleConfirm); err != nil {
		return coretelegram.RunOptions{}, err
	}
	reg.SetTextFallback(func(c tele.Context) error {
		return tghelpers.SendText(c, msgUnknownText)
	})

	a.registerIntakeStates()

	onAdminReject := func(c tele.Context) error {
		return tghelpers.SendText(c, msgAdminOnly)
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: onAdminReject,
	})
	routes = append(routes, router.TextRoutes(a.sessions, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
	}, nil
}
