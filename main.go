package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/centaurbot/centaur/api"
	"github.com/centaurbot/centaur/config"
	"github.com/centaurbot/centaur/decisionlog"
	"github.com/centaurbot/centaur/entropy"
	"github.com/centaurbot/centaur/network"
	"github.com/centaurbot/centaur/oneply"
	"github.com/centaurbot/centaur/weights"
)

const (
	GracefulShutdownTimeout = 20 * time.Second
)

func openStore(cfg *config.Config) (weights.Store, error) {
	if cfg.DataDir == "" {
		log.Warn().Msg("no data dir configured; weights live in memory only")
		return weights.NewMemStore(), nil
	}
	return weights.OpenBadger(cfg.DataDir)
}

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("opening weight store")
	}
	defer store.Close()

	reg, err := weights.Open(store)
	if err != nil {
		log.Fatal().Err(err).Msg("opening weight registry")
	}
	if cfg.PackPath != "" {
		f, err := os.Open(cfg.PackPath)
		if err != nil {
			log.Fatal().Err(err).Msg("opening weight pack")
		}
		pack, err := weights.ReadPack(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("reading weight pack")
		}
		if err := reg.Install(pack); err != nil {
			log.Fatal().Err(err).Msg("installing weight pack")
		}
	}
	if reg.Ready() {
		snap, _ := reg.Current()
		if err := weights.Verify(context.Background(), snap); err != nil {
			log.Fatal().Err(err).Msg("verifying weight snapshot")
		}
	} else {
		log.Warn().Msg("no model installed; inference will refuse until one is")
	}

	var dlog *decisionlog.Logger
	if cfg.DecisionLogPath != "" {
		dlog, err = decisionlog.Open(cfg.DecisionLogPath)
		if err != nil {
			log.Fatal().Err(err).Msg("opening decision log")
		}
		defer dlog.Close()
	}

	net := network.New(reg)
	advisor := oneply.NewAdvisor(net, entropy.Default())
	srv := api.NewServer(reg, net, advisor, dlog)

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		// We received an interrupt signal, shut down.
		log.Info().Msg("got quit signal...")
		ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)

		if err := srv.Shutdown(ctx); err != nil {
			// Error from closing listeners, or context timeout:
			log.Error().Msgf("HTTP server Shutdown: %v", err)
		}
		cancel()
		close(idleConnsClosed)
	}()

	if err := srv.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("")
	}
	<-idleConnsClosed
	log.Info().Msg("server gracefully shutting down")
}
