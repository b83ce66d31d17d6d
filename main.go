package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/parkbrowse/parkbrowse/internal/browser"
	"github.com/parkbrowse/parkbrowse/internal/discovery"
	"github.com/parkbrowse/parkbrowse/internal/favourites"
	"github.com/parkbrowse/parkbrowse/internal/serverlist"
	"github.com/parkbrowse/parkbrowse/internal/settings"
	"github.com/parkbrowse/parkbrowse/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// Build info embedded by goreleaser.
	version = "master" //nolint:gochecknoglobals
	commit  = "latest" //nolint:gochecknoglobals
	date    = "n/a"    //nolint:gochecknoglobals
)

func run() int {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configRoot, errRoot := settings.ConfigRoot()
	if errRoot != nil {
		panic(errRoot)
	}

	userSettings, errSettings := settings.LoadOrCreate(filepath.Join(configRoot, settings.DefaultConfigName))
	if errSettings != nil {
		panic(errSettings)
	}

	logger := MustCreateLogger(userSettings)

	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting parkbrowse",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("date", date))

	favouritesPath, errFavouritesPath := favourites.DefaultPath()
	if errFavouritesPath != nil {
		logger.Error("Failed to resolve favourites path", zap.Error(errFavouritesPath))

		return 1
	}

	list := serverlist.New(logger, userSettings.NetworkVersion, favourites.NewStore(logger, favouritesPath))

	localFinder := discovery.NewLocalFinder(logger, func() (discovery.PacketConn, error) {
		return discovery.NewBroadcastConn(userSettings.BroadcastAddress)
	})

	masterClient := discovery.NewMasterClient(logger,
		&http.Client{Timeout: time.Second * 10},
		userSettings.MasterServerURL)

	serverBrowser := browser.New(logger, list, localFinder, masterClient)

	if !userSettings.HTTPEnabled {
		// One-shot mode: refresh once, report, done.
		serverBrowser.Refresh(rootCtx)
		stats := serverBrowser.Stats()
		logger.Info("Discovery complete",
			zap.Int("servers", stats.Servers),
			zap.Int("players", stats.TotalPlayers))

		return 0
	}

	api := web.New(logger, userSettings, serverBrowser)

	serviceGroup, serviceCtx := errgroup.WithContext(rootCtx)

	serviceGroup.Go(func() error {
		serverBrowser.Refresh(serviceCtx)

		return nil
	})

	serviceGroup.Go(func() error {
		logger.Info("Serving", zap.String("addr", userSettings.HTTPListenAddr))

		return api.Start(serviceCtx)
	})

	serviceGroup.Go(func() error {
		<-serviceCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()

		if errShutdown := api.Shutdown(shutdownCtx); errShutdown != nil { //nolint:contextcheck
			logger.Error("Failed to gracefully shutdown", zap.Error(errShutdown))
		}

		return nil
	})

	if err := serviceGroup.Wait(); err != nil {
		logger.Error("Sad goodbye", zap.Error(err))

		return 1
	}

	return 0
}

func main() {
	os.Exit(run())
}
