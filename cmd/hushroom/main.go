// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// hushroom is a Discord bot that creates private voice channels on
// demand and deletes them once they have sat empty for a chosen time.
//
// A member runs /dnd with an idle timeout and up to ten other members.
// The bot creates a role for the group and a voice channel visible only
// to that role and its members, then watches voice activity: while
// anyone is connected the channel stays; once it has been empty for the
// timeout the channel and role are deleted.
//
// Configuration is a YAML file named by --config or HUSHROOM_CONFIG. The
// bot token is read from discord.token_file or from the environment
// variable named by discord.token_env (DISCORD_TOKEN by default).
//
// Tracked channels live only in memory. After a restart, channels
// created by an earlier run are no longer reclaimed.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/hushroom/lib/clock"
	"github.com/bureau-foundation/hushroom/lib/config"
	"github.com/bureau-foundation/hushroom/lib/httpserver"
	"github.com/bureau-foundation/hushroom/lib/process"
	"github.com/bureau-foundation/hushroom/lib/ref"
	"github.com/bureau-foundation/hushroom/lib/secret"
	"github.com/bureau-foundation/hushroom/lib/version"
	"github.com/bureau-foundation/hushroom/lifecycle"
	"github.com/bureau-foundation/hushroom/platform/discord"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var configPath string
	var showVersion bool

	flagSet := pflag.NewFlagSet("hushroom", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the YAML config file (default: $HUSHROOM_CONFIG)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if showVersion {
		version.Print("hushroom")
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	token, err := secret.ReadToken(cfg.Discord.TokenFile, cfg.Discord.TokenEnv)
	if err != nil {
		return fmt.Errorf("reading bot token: %w", err)
	}
	defer token.Close()

	session, err := discordgo.New("Bot " + token.String())
	if err != nil {
		return fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates
	session.UserAgent = version.UserAgent()
	client := discord.New(session, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	manager, err := lifecycle.New(lifecycle.Config{
		Platform:     client,
		Clock:        clock.Real(),
		Logger:       logger,
		Metrics:      lifecycle.NewMetrics(registry),
		Thresholds:   cfg.Lifecycle.Thresholds,
		MinimumDelay: cfg.Lifecycle.MinimumDelay,
		MaxInvitees:  cfg.Lifecycle.MaxInvitees,
		LabelPrefix:  cfg.Lifecycle.LabelPrefix,
		LabelLength:  cfg.Lifecycle.LabelLength,
		Compensate:   cfg.Lifecycle.Compensate(),
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	unsubscribe := discord.Subscribe(ctx, session, discord.Handlers{
		OccupancyChanged: func(ctx context.Context, _ ref.GuildID, channel ref.ChannelID) {
			manager.HandleOccupancyChange(ctx, channel)
		},
		ChannelDeleted: func(ctx context.Context, _ ref.GuildID, channel ref.ChannelID) {
			manager.HandleChannelDeleted(ctx, channel)
		},
	}, logger)
	defer unsubscribe()

	commands := newCommandHandler(ctx, cfg.Discord.CommandName, manager, logger)
	session.AddHandler(func(session *discordgo.Session, event *discordgo.InteractionCreate) {
		commands.handle(event.Interaction, &interactionResponder{session: session, interaction: event.Interaction})
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	defer session.Close()

	definition := commandDefinition(cfg.Discord.CommandName, manager.Thresholds(), manager.MaxInvitees())
	if _, err := session.ApplicationCommandBulkOverwrite(cfg.Discord.ApplicationID, cfg.Discord.GuildID,
		[]*discordgo.ApplicationCommand{definition}, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("registering /%s: %w", cfg.Discord.CommandName, err)
	}
	logger.Info("registered slash command",
		"command", cfg.Discord.CommandName,
		"guild", cfg.Discord.GuildID,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	if cfg.HTTP.Listen != "" {
		server := httpserver.New(httpserver.Config{
			Address:         cfg.HTTP.Listen,
			Handler:         newStatusRouter(client, manager, registry),
			ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
			Logger:          logger,
		})
		group.Go(func() error { return server.Serve(groupCtx) })
	}

	logger.Info("hushroom running",
		"version", version.Info(),
		"environment", cfg.Environment,
	)
	<-groupCtx.Done()
	logger.Info("shutting down")

	return group.Wait()
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Usage: hushroom [flags]

Run the private voice channel bot.

Flags:
%s`, flagSet.FlagUsages())
}
