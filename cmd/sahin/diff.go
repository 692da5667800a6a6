package main

import (
	"fmt"

	"github.com/hakim/sahin/internal/diff"
	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/report"
	"github.com/hakim/sahin/internal/storage"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the two latest scans of a domain",
	Long: `Compare the most recent stored report for a target domain against the one
before it and print what changed: new and removed subdomains, hosts that
became live or went dark, opened and closed ports, new and removed paths and
any change in the risk level.

Use -o to also write the markdown change report to a file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Step 1: Get flags
		domain, _ := cmd.Flags().GetString("domain")
		output, _ := cmd.Flags().GetString("output")
		domain = models.NormalizeHost(domain)

		// Step 2: Open bbolt store
		store, err := storage.NewStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		// Step 3: Load the two latest reports
		reports, err := store.LatestReports(domain, 2)
		if err != nil {
			return fmt.Errorf("loading reports for %s: %w", domain, err)
		}
		if len(reports) == 0 {
			fmt.Printf("[!] No stored reports for %s. Run 'sahin scan -d %s' first\n", domain, domain)
			return nil
		}
		if len(reports) < 2 {
			fmt.Printf("[!] No previous scan found for comparison\n")
			return nil
		}

		current, previous := reports[0], reports[1]
		fmt.Printf("[*] Current:  %s (%s)\n", shortScanID(current.ScanID), current.StartedAt.UTC().Format("2006-01-02 15:04"))
		fmt.Printf("[*] Previous: %s (%s)\n", shortScanID(previous.ScanID), previous.StartedAt.UTC().Format("2006-01-02 15:04"))

		// Step 4: Compute and render
		result := diff.ComputeDiff(current, previous)
		rendered := report.RenderDiff(result)

		fmt.Println()
		fmt.Print(rendered)

		// Step 5: Optionally write the change report
		if output != "" {
			if err := storage.WriteReportFile(afero.NewOsFs(), output, []byte(rendered)); err != nil {
				// Non-fatal: the diff was already printed
				fmt.Printf("[!] Warning: failed to write diff report: %v\n", err)
			} else {
				fmt.Printf("[+] Diff report written to %s\n", output)
			}
		}

		// Step 6: Print summary
		fmt.Println()
		if !result.HasChanges() {
			fmt.Println("[+] No changes since the previous scan")
			return nil
		}
		fmt.Printf("[+] Diff complete!\n")
		fmt.Printf("    Subdomains: +%d new, -%d removed\n",
			len(result.NewSubdomains), len(result.RemovedSubdomains))
		fmt.Printf("    Live:       +%d up, -%d down\n",
			len(result.NewlyLive), len(result.NoLongerLive))
		fmt.Printf("    Ports:      +%d new, -%d closed\n",
			len(result.NewPorts), len(result.ClosedPorts))
		fmt.Printf("    Paths:      +%d new, -%d removed\n",
			len(result.NewPaths), len(result.RemovedPaths))
		if result.RiskChanged() {
			fmt.Printf("    Risk:       %s -> %s\n", result.PreviousRisk, result.CurrentRisk)
		}

		return nil
	},
}

func init() {
	diffCmd.Flags().StringP("domain", "d", "", "Target domain (required)")
	diffCmd.Flags().StringP("output", "o", "", "Write the markdown change report to this file")
	diffCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(diffCmd)
}
