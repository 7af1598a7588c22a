package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/poold/internal/config"
	"github.com/l1jgo/poold/internal/core/ecs"
	"github.com/l1jgo/poold/internal/core/event"
	"github.com/l1jgo/poold/internal/core/registry"
	coresys "github.com/l1jgo/poold/internal/core/system"
	"github.com/l1jgo/poold/internal/data"
	"github.com/l1jgo/poold/internal/persist"
	"github.com/l1jgo/poold/internal/scripting"
	"github.com/l1jgo/poold/internal/system"
	"github.com/l1jgo/poold/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              poold  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      generational entity pool daemon      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main daemon logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/poold.toml"
	if p := os.Getenv("POOLD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := registry.Register(registry.Default, cfg); err != nil {
		return fmt.Errorf("register config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Optional PostgreSQL snapshot store
	var snapshots *persist.SnapshotRepo
	if cfg.Database.Enabled {
		printSection("database")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()

		snapshots = persist.NewSnapshotRepo(db)
		if err := registry.Register(registry.Default, snapshots); err != nil {
			return fmt.Errorf("register snapshot repo: %w", err)
		}
	}

	// 4. Templates
	printSection("data")
	templates, err := data.LoadTemplateTable(cfg.Data.Templates)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	printStat("templates", templates.Count())

	// 5. Policy: Lua scripts, or the built-in defaults
	var policy scripting.Policy = scripting.Defaults{}
	if cfg.Scripting.Enabled {
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		policy = engine
		printOK(fmt.Sprintf("Lua policy loaded from %s", cfg.Scripting.Dir))
	} else {
		printOK("built-in policy")
	}

	// 6. World, node state, prewarmed pools
	bus := event.NewBus()
	ecsWorld := ecs.NewWorld(bus, log)
	state := world.NewState(ecsWorld, bus, log)
	prewarmed := 0
	for _, tpl := range templates.All() {
		state.RegisterTemplate(tpl.Name)
		if tpl.Prewarm > 0 {
			if err := ecsWorld.Prewarm(tpl.Name, tpl.Prewarm); err != nil {
				return fmt.Errorf("prewarm: %w", err)
			}
			prewarmed += tpl.Prewarm
		}
	}
	printStat("prewarmed entities", prewarmed)
	if err := registry.Register(registry.Default, state); err != nil {
		return fmt.Errorf("register world state: %w", err)
	}

	if snapshots != nil {
		n, err := restoreSnapshot(state, snapshots)
		if err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
		printStat("restored nodes", n)
	}
	fmt.Println()

	// 7. Systems
	runner := coresys.NewRunner()
	stats := system.NewStatsSystem(ecsWorld, bus, cfg.World.StatsInterval, log)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewSpawnSystem(state, templates, policy, rand.New(rand.NewSource(time.Now().UnixNano())), log))
	runner.Register(system.NewLifetimeSystem(state, templates, policy))
	runner.Register(system.NewFollowSystem(state, templates, bus))
	runner.Register(stats)
	runner.Register(system.NewCleanupSystem(ecsWorld, log))

	var persistence *system.PersistenceSystem
	if snapshots != nil {
		persistence = system.NewPersistenceSystem(state, snapshots, log, cfg.World.SnapshotInterval)
		runner.Register(persistence)
	}

	// 8. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.World.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.World.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.World.TickRate)
			if cfg.World.MaxTicks > 0 && runner.Ticks() >= cfg.World.MaxTicks {
				log.Info("tick limit reached", zap.Uint64("ticks", runner.Ticks()))
				return shutdown(persistence, stats, log)
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return shutdown(persistence, stats, log)
		}
	}
}

// restoreSnapshot brings back the nodes saved by the previous run. Stored
// records carry no generations, so every restored node is a fresh spawn.
func restoreSnapshot(state *world.State, repo *persist.SnapshotRepo) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	records, err := repo.Load(ctx)
	if err != nil {
		return 0, err
	}
	return state.Restore(records)
}

func shutdown(persistence *system.PersistenceSystem, stats *system.StatsSystem, log *zap.Logger) error {
	if persistence != nil {
		if err := persistence.SaveNow(context.Background()); err != nil {
			log.Error("final snapshot failed", zap.Error(err))
		}
	}
	if state, ok := registry.Lookup[*world.State](registry.Default); ok {
		state.Compact()
		log.Info("active nodes at shutdown", zap.Int("count", state.Len()))
	}
	wraps, lost, orphaned := stats.Counts()
	log.Info("poold stopped",
		zap.Int("wraps", wraps),
		zap.Int("lost", lost),
		zap.Int("orphaned", orphaned),
	)
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
