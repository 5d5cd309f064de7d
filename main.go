package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/strandtech/storefront/config"
	"github.com/strandtech/storefront/internal/app"
	"github.com/strandtech/storefront/internal/blob"
	"github.com/strandtech/storefront/internal/catalog"
	"github.com/strandtech/storefront/internal/mailer"
	"github.com/strandtech/storefront/internal/ordering"
	"github.com/strandtech/storefront/internal/storeapi"
	"github.com/strandtech/storefront/internal/webserver"
)

var (
	cfile      = flag.String("c", "storefront.yml", "config file")
	initdb     = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	showConfig = flag.Bool("p", false, "print the effective config and exit")
)

func main() {
	flag.Parse()

	cfg := config.LoadConfig(*cfile)
	if *showConfig {
		fmt.Printf("%+v\n", cfg)
		return
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	blobClient := blob.NewClient(cfg.Blob)
	catalogSvc := catalog.NewService(
		catalog.NewGormProductRepository(application.DB()),
		blobClient,
		application.Pool(),
	)
	orderSvc := ordering.NewService(application.DB(), application.Bus())
	mail := mailer.NewMailer(cfg.Smtp)

	server := webserver.Init(cfg, application.DB())
	storeapi.Init(catalogSvc, orderSvc, mail, application.Pool())

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(server.Listen)
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ctx.Done():
			return nil
		case s := <-sig:
			zap.L().Info("shutdown signal received", zap.String("signal", s.String()))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.L().Fatal("server exited", zap.Error(err))
	}
}
