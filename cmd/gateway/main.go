package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nilswx/ccxt/adapter/exchange"
	"github.com/nilswx/ccxt/api"
	"github.com/nilswx/ccxt/config"
	"github.com/sirupsen/logrus"
)

func main() {
	var conf config.AppConfig

	err := config.Init(&conf)
	if err != nil {
		panic(err)
	}

	logger := config.NewLoggerService(conf.LogLevel)

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	cryptophyl := exchange.NewCryptophylAdapter(
		conf.Identity,
		conf.Exchange.Cryptophyl.ApiKey,
		conf.Exchange.Cryptophyl.SecretKey,
		conf.Exchange.Cryptophyl.BaseUrl,
		conf.Exchange.Cryptophyl.MarketBuyRequiresPrice(),
		time.Duration(conf.Exchange.Cryptophyl.Timeout),
		logger,
	)

	handler := api.NewHandler(cryptophyl, logger)

	srv := http.Server{
		Handler: handler.SetupRoutes(),
		Addr:    conf.Gateway.Port,
	}

	go func() {
		logger.WithField("addr", conf.Gateway.Port).Info("gateway listening")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 10)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logger.Info("shutting down gateway")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		panic(err)
	}
}
