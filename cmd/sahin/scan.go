package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hakim/sahin/internal/config"
	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/pipeline"
	"github.com/hakim/sahin/internal/report"
	"github.com/hakim/sahin/internal/storage"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the full recon pipeline in a single command",
	Long: `Run the complete reconnaissance pipeline for a target domain.

Executes the three stages in order (ports, subdomains, paths). Each stage can
be skipped, and a stage whose tool is missing or fails only degrades its own
section of the report.

Unless --no-save is given the scan is recorded in the configured database and
the report is written to:
  {report_dir}/{target}_{timestamp}.{txt|md}

Examples:
  sahin scan -d example.com
  sahin scan -d example.com --fast --no-paths
  sahin scan -d example.com -w ./words.txt -o report.txt
  sahin scan -d example.com --scope "example.com,*.example.com"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// ── 1. Read all flags ──────────────────────────────────────────────────
		domain, _ := cmd.Flags().GetString("domain")
		quiet, _ := cmd.Flags().GetBool("quiet")
		fast, _ := cmd.Flags().GetBool("fast")
		noSubdomains, _ := cmd.Flags().GetBool("no-subdomains")
		noPorts, _ := cmd.Flags().GetBool("no-ports")
		noPaths, _ := cmd.Flags().GetBool("no-paths")
		noLiveCheck, _ := cmd.Flags().GetBool("no-live-check")
		wordlist, _ := cmd.Flags().GetString("wordlist")
		output, _ := cmd.Flags().GetString("output")
		formatFlag, _ := cmd.Flags().GetString("format")
		webhookURL, _ := cmd.Flags().GetString("notify-webhook")
		scopeFlag, _ := cmd.Flags().GetString("scope")
		noSave, _ := cmd.Flags().GetBool("no-save")

		domain = models.NormalizeHost(domain)
		if domain == "" {
			return fmt.Errorf("a target domain is required (-d)")
		}

		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		// ── 2. Profile and scope ───────────────────────────────────────────────
		profile, profileName, err := loadProfile(fast)
		if err != nil {
			return err
		}

		scope := resolveScope(scopeFlag)
		if err := checkScope(scope, domain); err != nil {
			return err
		}

		ui := newConsoleRenderer(os.Stdout, quiet)
		if len(scope.AllowedDomains) > 0 {
			ui.Infof("Scope validated: %s is in scope", domain)
		}

		// ── 3. Open bbolt store ────────────────────────────────────────────────
		var store pipeline.StoreInterface
		if !noSave {
			db, err := storage.NewStore(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()
			store = db
		}

		// ── 4. Wire the stages ─────────────────────────────────────────────────
		sink := ui.Sink()
		stages := buildStages(cfg, profile, scope, sink, logger)

		orch := &pipeline.Orchestrator{
			Ports:      stages.ports,
			Subdomains: stages.subdomains,
			Paths:      stages.paths,
			Hints:      stages.hints,
			Store:      store,
			Events:     sink,
			Logger:     logger,
		}

		pipelineCfg := pipeline.PipelineConfig{
			Domain:         domain,
			Profile:        profileName,
			SkipPorts:      noPorts,
			SkipSubdomains: noSubdomains,
			SkipPaths:      noPaths,
			CheckLive:      !noLiveCheck,
			Wordlist:       wordlist,
			Hints:          cfg.Paths.Hints,
			Limits: pipeline.TargetLimits{
				MaxHosts:      cfg.Targets.MaxHosts,
				FallbackHosts: cfg.Targets.FallbackHosts,
				MaxURLs:       cfg.Targets.MaxURLs,
			},
			Scope:        scope,
			OnStageStart: ui.StageStart,
			OnStageDone:  ui.StageDone,
		}

		// ── 5. Run the pipeline ────────────────────────────────────────────────
		ctx, stop := signalContext()
		defer stop()

		ui.Infof("Starting %s scan for %s", profileName, domain)

		result, err := orch.Run(ctx, pipelineCfg)
		if errors.Is(err, pipeline.ErrCancelled) {
			ui.Warnf("Scan interrupted, no report written")
			return err
		}
		if err != nil {
			return fmt.Errorf("pipeline failed: %w", err)
		}

		// ── 6. Write the report file ───────────────────────────────────────────
		saved := ""
		if output == "" && !noSave {
			output = storage.ReportPath(cfg.ReportDir, result.Domain, result.StartedAt, format.Extension())
		}
		if output != "" {
			data := []byte(report.Render(result, format, version))
			if err := storage.WriteReportFile(afero.NewOsFs(), output, data); err != nil {
				ui.Warnf("Warning: failed to write report: %v", err)
			} else {
				saved = output
			}
		}

		// ── 7. Webhook notification (non-fatal) ────────────────────────────────
		notifyCfg := pipeline.NotifyConfig{
			WebhookURL: cfg.Notify.WebhookURL,
			Timeout:    config.Duration(cfg.Notify.Timeout, 0),
		}
		if webhookURL != "" {
			notifyCfg.WebhookURL = webhookURL
		}
		if notifyCfg.WebhookURL != "" {
			if notifyErr := notifyCfg.SendCompletion(ctx, result); notifyErr != nil {
				ui.Warnf("Warning: webhook notification failed: %v", notifyErr)
			} else {
				ui.Infof("Completion notification sent to %s", notifyCfg.WebhookURL)
			}
		}

		// ── 8. Print final summary ─────────────────────────────────────────────
		ui.Summary(result, saved)

		return nil
	},
}

func init() {
	scanCmd.Flags().StringP("domain", "d", "", "Target domain to scan (required)")
	scanCmd.Flags().BoolP("quiet", "q", false, "Only print warnings and the final summary")
	scanCmd.Flags().Bool("fast", false, "Use the fast profile (nmap top ports, shorter timeouts)")
	scanCmd.Flags().Bool("no-subdomains", false, "Skip subdomain discovery")
	scanCmd.Flags().Bool("no-ports", false, "Skip the port scan")
	scanCmd.Flags().Bool("no-paths", false, "Skip path discovery")
	scanCmd.Flags().Bool("no-live-check", false, "Treat every discovered subdomain as live")
	scanCmd.Flags().StringP("wordlist", "w", "", "Wordlist for path discovery")
	scanCmd.Flags().StringP("output", "o", "", "Write the report to this file")
	scanCmd.Flags().String("format", "text", "Report format: text or markdown")
	scanCmd.Flags().String("notify-webhook", "", "HTTP webhook URL to POST a completion summary to")
	scanCmd.Flags().String("scope", "", "Comma-separated allowed domain patterns (e.g. example.com,*.example.com)")
	scanCmd.Flags().Bool("no-save", false, "Do not record the scan in history or write a report unless -o is given")

	scanCmd.MarkFlagRequired("domain")

	rootCmd.AddCommand(scanCmd)
}
