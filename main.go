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

	"jobsbreeze-backend/config"
	"jobsbreeze-backend/models"
	"jobsbreeze-backend/routes"
	"jobsbreeze-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env", "", "path to an env file (default .env when present)")
	listRoutes := flag.Bool("routes", false, "print the registered routes on startup")
	flag.Parse()

	cfg, warnings, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	for _, w := range warnings {
		log.Warn(w)
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg.Database, config.Named(log, "db"))
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	var sender services.MessageSender
	if cfg.Twilio.Enabled() {
		sender = services.NewTwilioSender(cfg.Twilio)
	} else {
		log.Warn("Twilio credentials missing, SMS notifications will be logged as skipped")
	}
	notifications := services.NewNotificationService(db, sender, config.Named(log, "notifications"))
	invoices := services.NewInvoiceService(db, config.Named(log, "invoices"))
	estimates := services.NewEstimateService(db, invoices, notifications, config.Named(log, "estimates"))

	scheduler := services.NewScheduler(cfg.Reminder, notifications, config.Named(log, "scheduler"))
	if err := scheduler.Start(); err != nil {
		log.Fatal("invalid reminder schedule", zap.String("cron", cfg.Reminder.Cron), zap.Error(err))
	}
	defer scheduler.Stop()

	r := routes.SetupRouter(routes.Deps{
		Config:        cfg,
		DB:            db,
		Estimates:     estimates,
		Invoices:      invoices,
		Notifications: notifications,
		Log:           log,
	})
	if *listRoutes {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("starting server", zap.String("env", cfg.Env))
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	if err := serve(srv, quit, log); err != nil {
		log.Error("server failed", zap.Error(err))
		scheduler.Stop()
		log.Sync()
		os.Exit(1)
	}
	log.Info("server stopped")
}

// serve runs srv until it fails or quit fires, then shuts it down gracefully.
func serve(srv *http.Server, quit <-chan os.Signal, log *zap.Logger) error {
	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
