package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/tools"
	"github.com/spf13/cobra"
)

var subdomainsCmd = &cobra.Command{
	Use:   "subdomains",
	Short: "Run only subdomain discovery",
	Long: `Enumerate subdomains of the target with subfinder and probe each name for
an open web port (80 or 443).

The target domain is always part of the result. Without subfinder only the
domain itself is probed. Nothing is recorded in the scan history.

Examples:
  sahin subdomains -d example.com
  sahin subdomains -d example.com --no-live-check`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Step 1: Get flags
		domain, _ := cmd.Flags().GetString("domain")
		fast, _ := cmd.Flags().GetBool("fast")
		noLiveCheck, _ := cmd.Flags().GetBool("no-live-check")
		scopeFlag, _ := cmd.Flags().GetString("scope")

		domain = models.NormalizeHost(domain)
		if domain == "" {
			return fmt.Errorf("a target domain is required (-d)")
		}

		// Step 2: Profile and scope
		profile, _, err := loadProfile(fast)
		if err != nil {
			return err
		}
		scope := resolveScope(scopeFlag)
		if err := checkScope(scope, domain); err != nil {
			return err
		}

		// Step 3: Discover
		ui := newConsoleRenderer(os.Stdout, false)
		stages := buildStages(cfg, profile, scope, ui.Sink(), logger)

		ctx, stop := signalContext()
		defer stop()

		ui.Infof("Discovering subdomains for %s", domain)
		subs, live, err := stages.subdomains.Discover(ctx, domain, !noLiveCheck)
		if errors.Is(err, tools.ErrToolUnavailable) {
			ui.Warnf("subfinder not found, only %s was checked", domain)
		} else if err != nil {
			return err
		}

		// Step 4: Print results
		fmt.Println()
		fmt.Printf("Subdomains (%d):\n", len(subs))
		for _, s := range subs.Sorted() {
			state := "-"
			if live.Has(s) {
				state = "live"
			}
			fmt.Printf("  %-40s %s\n", s, state)
		}
		fmt.Printf("\n[+] %d subdomain(s), %d live\n", len(subs), len(live))

		return nil
	},
}

func init() {
	subdomainsCmd.Flags().StringP("domain", "d", "", "Target domain (required)")
	subdomainsCmd.Flags().Bool("fast", false, "Use the fast profile (shorter timeouts, more probe workers)")
	subdomainsCmd.Flags().Bool("no-live-check", false, "Skip TCP liveness probing")
	subdomainsCmd.Flags().String("scope", "", "Comma-separated allowed domain patterns")
	subdomainsCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(subdomainsCmd)
}
