package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-storefront/analytics"
	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/jrsteele09/go-storefront/order"
	"github.com/jrsteele09/go-storefront/session"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/jrsteele09/go-storefront/storage/filerepo"
	"github.com/jrsteele09/go-storefront/storage/redisrepo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("storefront failed")
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using existing environment variables")
	}

	c := config.New()
	displayAppname(c.GetAppName())

	repo, err := newStorageRepo(c)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	sessionStore, err := session.New(repo, session.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	client, err := api.New(c.GetAPIBaseURL(),
		api.WithTokenSource(sessionStore),
		api.WithTimeout(c.GetRequestTimeout()),
		api.WithLogger(log.Logger),
	)
	if err != nil {
		return fmt.Errorf("api client: %w", err)
	}
	client.SetUnauthorizedHook(sessionStore.Invalidate)

	catalogCache, err := catalog.New(client, catalog.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	tracker, err := analytics.New(client, sessionStore, analytics.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("analytics: %w", err)
	}

	cartStore, err := cart.New(repo, catalogCache,
		cart.WithNotifier(tracker),
		cart.WithLogger(log.Logger),
	)
	if err != nil {
		return fmt.Errorf("cart store: %w", err)
	}

	if _, err = order.New(client, cartStore, catalogCache, order.WithLogger(log.Logger)); err != nil {
		return fmt.Errorf("order service: %w", err)
	}

	ctx := context.Background()
	if err := sessionStore.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("continuing unauthenticated")
	}
	cartStore.Load(ctx)
	catalogCache.AddReconciler(cartStore)

	if sessionStore.IsAuthenticated() {
		log.Info().Str("username", utils.Value(sessionStore.Current()).Username).Msg("session restored")
	}

	if err := catalogCache.Refresh(ctx); err != nil {
		log.Error().Str("reason", catalogCache.Err()).Msg("catalog refresh failed")
		return nil
	}

	for _, p := range catalogCache.Products() {
		fmt.Printf("%6d  %-30s %-12s %8.2f  stock:%d\n", p.ID, p.Name, p.Brand, p.Price, p.StockQuantity)
	}
	if n := cartStore.TotalQuantity(); n > 0 {
		fmt.Printf("\ncart: %d items, total %.2f\n", n, cartStore.TotalPrice())
	}
	return nil
}

func newStorageRepo(c config.Config) (storage.Repo, error) {
	switch c.GetStorageBackend() {
	case config.StorageBackendRedis:
		return redisrepo.New(c.GetRedisURL())
	default:
		return filerepo.New(c.GetDataFolder())
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
