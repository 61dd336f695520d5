package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kariqs/smartbite-api/controllers"
	"github.com/Kariqs/smartbite-api/initializers"
	"github.com/Kariqs/smartbite-api/middlewares"
	"github.com/Kariqs/smartbite-api/notifier"
	"github.com/Kariqs/smartbite-api/routes"
	"github.com/Kariqs/smartbite-api/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	initializers.LoadEnv()

	cfg, err := initializers.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	log := initializers.NewLogger(cfg)

	db, err := initializers.ConnectToDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := initializers.SyncDatabase(db, cfg, log); err != nil {
		log.WithError(err).Fatal("Failed to sync database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := notifier.New(db, newMailer(cfg, log), log, notifier.Config{
		Workers:     cfg.NotifyWorkers,
		QueueSize:   cfg.NotifyQueueSize,
		MaxAttempts: cfg.NotifyMaxAttempts,
		SweepSpec:   cfg.NotifySweepSpec,
	})
	if err := queue.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start notification queue")
	}
	defer queue.Stop()

	var publisher utils.Publisher = utils.NoopPublisher{}
	if cfg.AMQPURL != "" {
		rabbit, err := utils.NewRabbitPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to message broker")
		}
		publisher = rabbit
		log.WithField("exchange", cfg.AMQPExchange).Info("Publishing order events")
	}
	defer publisher.Close()

	var uploader utils.Uploader
	if cfg.S3Bucket != "" {
		s3Uploader, err := utils.NewS3Uploader(ctx, cfg.S3Bucket)
		if err != nil {
			log.WithError(err).Fatal("Failed to configure image storage")
		}
		uploader = s3Uploader
	}

	controller := controllers.New(controllers.Controller{
		DB:        db,
		Tokens:    utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Notifier:  queue,
		Publisher: publisher,
		Uploader:  uploader,
		Log:       log,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	server := gin.New()
	if err := server.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.WithError(err).Fatal("Invalid TRUSTED_PROXIES")
	}
	server.Use(gin.Recovery())
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authLimiter := middlewares.NewRateLimiter(cfg.AuthRatePerSec, cfg.AuthRateBurst)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				authLimiter.Cleanup()
			}
		}
	}()

	routes.Setup(server, controller, authLimiter)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("SmartBite API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

func newMailer(cfg *initializers.Config, log *logrus.Logger) utils.Mailer {
	switch cfg.MailDriver {
	case "smtp":
		return &utils.SMTPMailer{
			From:        cfg.MailFrom,
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUser,
			Password:    cfg.SMTPPassword,
			TemplateDir: cfg.TemplateDir,
		}
	case "relay":
		return utils.NewRelayMailer(cfg.RelayURL, cfg.RelayServiceID, cfg.RelayTemplateID, cfg.RelayPublicKey, cfg.RelayAccessToken)
	default:
		return &utils.LogMailer{Log: log}
	}
}
