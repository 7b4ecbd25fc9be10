package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vrischmann/envconfig"

	"github.com/Sh00ty/fleet-monitor/internal/models"
	"github.com/Sh00ty/fleet-monitor/internal/notifyer"
	"github.com/Sh00ty/fleet-monitor/internal/placement"
	"github.com/Sh00ty/fleet-monitor/internal/queue"
	registryetcd "github.com/Sh00ty/fleet-monitor/internal/registry/etcd"
	"github.com/Sh00ty/fleet-monitor/internal/registry/inmemory"
	"github.com/Sh00ty/fleet-monitor/internal/repository/postgres"
	"github.com/Sh00ty/fleet-monitor/internal/sender"
	"github.com/Sh00ty/fleet-monitor/pkg/monitor"

	plannerpkg "github.com/Sh00ty/fleet-monitor/internal/planner"
)

func loggerLevelFromString(level string) zerolog.Level {
	level = strings.ToLower(level)
	switch level {
	case "error":
		return zerolog.ErrorLevel
	case "warn":
		return zerolog.WarnLevel
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}

type Config struct {
	LoggerLevel string `envconfig:"LOGGER_LEVEL"`

	DatabaseHost     string `envconfig:"DATABASE_HOST"`
	DatabaseUser     string `envconfig:"DATABASE_USER"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	DatabasePort     uint16 `envconfig:"DATABASE_PORT"`

	// RegistryEndpoint is unused in dry runs.
	RegistryEndpoint string `envconfig:"REGISTRY_ENDPOINT,optional"`

	QueueAddr  string `envconfig:"QUEUE_ADDR"`
	QueueTopic string `envconfig:"QUEUE_PLACEMENTS_TOPIC"`

	ResendEventsInterval time.Duration `envconfig:"RESEND_EVENTS_INTERVAL"`

	// DryRun keeps created resources in memory instead of the
	// provisioning registry and does not persist assignments, the
	// placement decisions are only logged and announced.
	DryRun bool `envconfig:"DRY_RUN,optional"`

	// Sparse quota overrides as "name=max" pairs.
	QuotaOverrides []string `envconfig:"QUOTA_OVERRIDES,optional"`
}

func parseQuotaOverrides(raw []string) []monitor.Limit {
	limits := make([]monitor.Limit, 0, len(raw))
	for _, pair := range raw {
		name, maxStr, ok := strings.Cut(pair, "=")
		if !ok {
			log.Fatal().Msgf("invalid quota override %q, want name=max", pair)
		}
		max, err := strconv.Atoi(maxStr)
		if err != nil {
			log.Fatal().Err(err).Msgf("invalid quota override %q, max is not a number", pair)
		}
		limits = append(limits, monitor.Limit{Name: name, Max: max})
	}
	return limits
}

type discardStore struct{}

func (discardStore) SaveAssignments(ctx context.Context, assignments []models.Assignment) (int, error) {
	return len(assignments), nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	_ = godotenv.Load()

	appCfg := Config{}
	err := envconfig.Init(&appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read app config")
	}
	log.Logger = log.Level(loggerLevelFromString(appCfg.LoggerLevel))

	fleetRepo, err := postgres.NewRepo(
		ctx,
		appCfg.DatabaseUser,
		appCfg.DatabasePassword,
		appCfg.DatabaseHost,
		appCfg.DatabasePort,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init fleet repository")
	}
	defer fleetRepo.Close()

	var (
		prov  placement.Provisioner
		store plannerpkg.AssignmentStore = fleetRepo
	)
	if appCfg.DryRun {
		log.Warn().Msg("dry run: resources are not registered, assignments are not persisted")
		prov = inmemory.NewInMemRegistry()
		store = discardStore{}
	} else {
		registry, err := registryetcd.NewRegistry(ctx, appCfg.RegistryEndpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init provisioning registry")
		}
		defer registry.Close()
		prov = registry
	}

	placementQueue := queue.NewPlacementQueue(appCfg.QueueAddr, appCfg.QueueTopic)
	defer placementQueue.Close()

	notifier := notifyer.NewNotifier(1024)
	sendCtl := sender.NewSenderController(
		notifier.GetEventChan(),
		placementQueue,
		appCfg.ResendEventsInterval,
	)
	senderDone := make(chan struct{})
	go func() {
		defer close(senderDone)
		sendCtl.Run(ctx)
	}()

	plan := plannerpkg.NewPlanner(
		fleetRepo,
		store,
		notifier,
		prov,
		parseQuotaOverrides(appCfg.QuotaOverrides),
	)
	if err := plan.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("planning pass failed")
	}

	notifier.Close()
	<-senderDone
	if pending := sendCtl.Pending(); pending > 0 {
		log.Error().Msgf("%d placement events were never announced", pending)
		os.Exit(1)
	}
	log.Info().Msg("planning pass finished")
}
