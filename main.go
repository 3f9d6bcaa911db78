// main.go
package main

import (
	"checkout_kiosk/app"
	"checkout_kiosk/config"
	"checkout_kiosk/controllers"
	"checkout_kiosk/routes"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := config.Parse()
	if err != nil {
		log.Fatal(err)
	}
	application, err := app.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer application.Close()

	srv := controllers.NewSrv(application.Repo, application.Processor, application.Log)
	routes.RegisterRoutes(application.Router, srv)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		application.Log.Info("listening", zap.String("addr", httpSrv.Addr),
			zap.String("directory", cfg.DirectoryBackend), zap.String("db", cfg.DBDriver))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			application.Log.Error("http server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		application.Log.Error("shutdown", zap.Error(err))
	}
	application.Log.Info("stopped")
}
