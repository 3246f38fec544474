package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"mirage/backend/global"
	"mirage/backend/initialize"
	"mirage/backend/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	app, err := initialize.Build(*configPath)
	if err != nil {
		global.Logger.Fatal().Err(err).Msg("startup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.Sync.Run(ctx)

	if err := server.StartHTTPServer(app.Cfg.HTTP.Host, app.Cfg.HTTP.Port, app.Router); err != nil {
		global.Logger.Fatal().Err(err).Msg("http server failed")
	}
	global.Logger.Info().Str("host", app.Cfg.HTTP.Host).Int("port", app.Cfg.HTTP.Port).Msg("server started")

	<-ctx.Done()
	global.Logger.Info().Msg("shutting down")

	// let in-flight webhook deliveries finish
	app.Dispatcher.Wait()
}
