package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/ace-ecosystem/phishfry/internal/config"
	"github.com/ace-ecosystem/phishfry/internal/ews"
	"github.com/ace-ecosystem/phishfry/internal/logging"
	"github.com/ace-ecosystem/phishfry/internal/metrics"
)

// setup loads and validates the configuration, builds the logger and
// the multi-session account, and starts the metrics server when one is
// configured. The returned context carries the logger.
func setup(c *cli.Context) (context.Context, config.Config, *ews.Account, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, cfg, nil, nil, cli.Exit(fmt.Sprintf("error loading config: %v", err), 1)
	}
	if c.Bool("verbose") {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, nil, nil, cli.Exit(fmt.Sprintf("invalid configuration: %v", err), 1)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	ctx := logging.WithContext(c.Context, logger)

	var collector metrics.Collector = &metrics.NoopCollector{}
	if cfg.Metrics.Enabled {
		collector = metrics.NewPrometheusCollector(prometheus.DefaultRegisterer)
		metricsServer := metrics.NewPrometheusServer(cfg.Metrics.Address, cfg.Metrics.Path)
		go func() {
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	sessions := make([]*ews.Session, 0, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		sessions = append(sessions, ews.NewSession(ews.SessionConfig{
			User:      a.User,
			Pass:      a.Pass,
			Server:    a.Server,
			Version:   a.Version,
			Timezone:  cfg.Timezone,
			Timeout:   cfg.RequestTimeout(),
			Collector: collector,
		}))
	}
	account, err := ews.NewAccount(sessions...)
	if err != nil {
		return nil, cfg, nil, nil, cli.Exit(fmt.Sprintf("invalid configuration: %v", err), 1)
	}
	return ctx, cfg, account, logger, nil
}

func deleteAction(c *cli.Context) error {
	return runRemediate(c, ews.ActionDelete)
}

func restoreAction(c *cli.Context) error {
	return runRemediate(c, ews.ActionRestore)
}

func runRemediate(c *cli.Context, action ews.Action) error {
	if c.NArg() != 2 {
		return cli.Exit(fmt.Sprintf("usage: phishfry %s RECIPIENT MESSAGE_ID", action), 2)
	}
	recipient := c.Args().Get(0)
	messageID := c.Args().Get(1)

	ctx, _, account, logger, err := setup(c)
	if err != nil {
		return err
	}

	mailbox, err := account.GetMailbox(ctx, recipient)
	if err != nil {
		return cli.Exit(fmt.Sprintf("resolving %s: %v", recipient, err), 1)
	}

	results := mailbox.Remediate(ctx, action, messageID)
	for _, addr := range results.Addresses() {
		r := results.Get(addr)
		if r.Success {
			fmt.Printf("%s: %s\n", addr, r.Message)
		} else {
			fmt.Printf("%s: FAILED: %s\n", addr, r.Message)
		}
	}

	encoded, err := json.Marshal(results)
	if err != nil {
		return cli.Exit(fmt.Sprintf("encoding results: %v", err), 1)
	}
	logger.Info("remediation complete",
		"action", string(action),
		"recipient", recipient,
		"message_id", messageID,
		"results", string(encoded))

	// A completed run exits 0 even when individual addresses failed;
	// the per-address lines carry the outcome.
	return nil
}

func resolveAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: phishfry resolve RECIPIENT", 2)
	}
	recipient := c.Args().Get(0)

	ctx, _, account, _, err := setup(c)
	if err != nil {
		return err
	}

	mailbox, err := account.GetMailbox(ctx, recipient)
	if err != nil {
		return cli.Exit(fmt.Sprintf("resolving %s: %v", recipient, err), 1)
	}

	mailboxes, err := mailbox.ResolveAll(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("expanding %s: %v", recipient, err), 1)
	}
	for _, mb := range mailboxes {
		fmt.Printf("%s %s\n", mb.Address, mb.Type)
	}
	return nil
}
