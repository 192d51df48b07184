// Command yaudiocord is the main entry point for the yaudiocord music bot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yaudiocord/yaudiocord/internal/config"
	discordbot "github.com/yaudiocord/yaudiocord/internal/discord"
	"github.com/yaudiocord/yaudiocord/internal/discord/commands"
	"github.com/yaudiocord/yaudiocord/internal/ffmpeg"
	"github.com/yaudiocord/yaudiocord/internal/health"
	"github.com/yaudiocord/yaudiocord/internal/observe"
	"github.com/yaudiocord/yaudiocord/internal/player"
	ytdlpresolver "github.com/yaudiocord/yaudiocord/internal/resolver/ytdlp"
	voicediscord "github.com/yaudiocord/yaudiocord/pkg/voice/discord"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "yaudiocord: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "yaudiocord: %v\n", err)
		}
		return 1
	}
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Discord.Token = token
	}
	if cfg.Discord.Token == "" {
		fmt.Fprintln(os.Stderr, "yaudiocord: no Discord token — set discord.token or DISCORD_TOKEN")
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("yaudiocord starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics ───────────────────────────────────────────────────────────────
	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}
	metrics := observe.DefaultMetrics()

	// ── External tools ────────────────────────────────────────────────────────
	locateFFmpeg := ffmpeg.Locate
	if cfg.FFmpeg.Path != "" {
		path := cfg.FFmpeg.Path
		locateFFmpeg = func() (string, error) { return path, nil }
	}
	ffmpegPath, err := locateFFmpeg()
	if err != nil {
		slog.Error("ffmpeg not available", "err", err)
		return 1
	}
	slog.Info("ffmpeg located", "path", ffmpegPath)

	if cfg.Resolver.AutoInstall {
		if err := ytdlpresolver.EnsureInstalled(ctx); err != nil {
			slog.Error("failed to provision yt-dlp", "err", err)
			return 1
		}
	}

	// ── Discord bot ───────────────────────────────────────────────────────────
	bot, err := discordbot.New(ctx, discordbot.Config{Token: cfg.Discord.Token})
	if err != nil {
		slog.Error("failed to create Discord bot", "err", err)
		return 1
	}
	slog.Info("discord bot connected")

	// ── Player wiring ─────────────────────────────────────────────────────────
	transport := voicediscord.NewTransport(bot.Session(), ffmpegPath, logger)
	res := ytdlpresolver.New(ytdlpresolver.Options{
		Proxy:         cfg.Resolver.Proxy,
		SocketTimeout: cfg.Resolver.SocketTimeout,
		Retries:       cfg.Resolver.Retries,
	}, logger)
	timing := player.Timing{
		JoinTimeout: cfg.Player.JoinTimeout.Std(),
		SettleDelay: cfg.Player.SettleDelay.Std(),
		RetryDelay:  cfg.Player.RetryDelay.Std(),
	}
	players := player.NewManager(transport, res, timing, logger, metrics)
	commands.NewMusicCommands(bot, players)

	// ── Diagnostics server ────────────────────────────────────────────────────
	var srv *http.Server
	if cfg.Server.ListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		health.New(
			health.GatewayChecker("gateway", bot.Ready),
			health.BinaryChecker("ffmpeg", locateFFmpeg),
		).Register(mux)

		srv = &http.Server{Addr: cfg.Server.ListenAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("diagnostics server error", "err", err)
			}
		}()
		slog.Info("diagnostics server listening", "addr", cfg.Server.ListenAddr)
	}

	// Register slash commands and serve interactions until shutdown.
	go func() {
		if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("discord bot error", "err", err)
		}
	}()

	slog.Info("bot ready — press Ctrl+C to shut down")
	<-ctx.Done()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")

	players.Shutdown()
	if err := bot.Close(); err != nil {
		slog.Warn("discord bot close error", "err", err)
	}
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("diagnostics server shutdown error", "err", err)
		}
	}
	if err := shutdownMetrics(shutdownCtx); err != nil {
		slog.Warn("metrics shutdown error", "err", err)
	}

	slog.Info("goodbye")
	return 0
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
