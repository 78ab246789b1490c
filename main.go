package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"scheduler/config"
	"scheduler/fsm"
	"scheduler/handshake"
	"scheduler/logger"
	"scheduler/network"
	"scheduler/registry"
	"scheduler/scheduler"
	"scheduler/selection"
)

var Log = logger.GetLogger()

func main() {
	flags, err := parseCommandlineFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(flags.configPath, flags.envPath)
	if err != nil {
		Log.Fatal().Err(err).Msg("Could not load config")
	}

	flags.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		Log.Fatal().Err(err).Msg("Invalid config")
	}

	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	policy, err := selection.ByName(cfg.Policy, selection.Nearest{
		TravelTime:       cfg.TravelTime,
		DoorOpenDuration: cfg.DoorOpenDuration,
		DirectionPenalty: cfg.DirectionPenalty,
	})
	if err != nil {
		Log.Fatal().Err(err).Msg("Invalid selection policy")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, policy); err != nil {
		Log.Fatal().Err(err).Msg("Scheduler stopped")
	}
}

func run(ctx context.Context, cfg config.Config, policy selection.Policy) error {
	conn, err := network.Listen(cfg.ListenHost, cfg.Port, cfg.PeerHost)
	if err != nil {
		return err
	}
	defer conn.Close()

	Log.Info().
		Int("port", conn.LocalPort()).
		Str("policy", cfg.Policy).
		Msg("Starting scheduler, waiting for floors and elevators")

	/*
	 * Bootstrap handshake
	 */
	reg := registry.New()
	err = handshake.Run(ctx, conn, reg, fsm.NewStateMachine(), handshake.Config{
		PortBase: cfg.PeerPortBase,
		Timeout:  cfg.StartupTimeout,
	})

	if errors.Is(err, context.Canceled) {
		Log.Info().Msg("Interrupted during startup")
		return nil
	}
	if err != nil {
		return err
	}

	select {
	case <-time.After(cfg.SettleDelay):
	case <-ctx.Done():
		return nil
	}

	/*
	 * Dispatch loop, stopped by signal or socket failure
	 */
	s := scheduler.New(conn, reg, policy, cfg.PeerPortBase)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return s.Run(groupCtx)
	})

	group.Go(func() error {
		<-groupCtx.Done()
		conn.Close()
		return nil
	})

	err = group.Wait()

	Log.Info().Msg("Registry at shutdown")
	_ = handshake.LogRegistry(reg)

	return err
}
