package main

import (
	"fmt"
	"strings"

	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/report"
	"github.com/hakim/sahin/internal/storage"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show scan history for a domain",
	Long: `Display a formatted table of past scans for a target domain.

Scans are listed newest-first. Each row shows the scan ID (truncated), start time,
completion status, profile, risk level and which pipeline stages were run.

Use --limit to cap the number of rows shown (default: 10).

Use --report to print the stored report of the latest finished scan, or
--scan ID to print a specific one. The truncated IDs shown in the table are
accepted as long as they are unambiguous.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Step 1: Get flags
		domain, _ := cmd.Flags().GetString("domain")
		limit, _ := cmd.Flags().GetInt("limit")
		showReport, _ := cmd.Flags().GetBool("report")
		scanID, _ := cmd.Flags().GetString("scan")
		domain = models.NormalizeHost(domain)

		// Step 2: Open bbolt store
		store, err := storage.NewStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		if scanID != "" || showReport {
			return printStoredReport(store, domain, scanID)
		}

		// Step 3: List scans (sorted newest-first by store.ListScans)
		scans, err := store.ListScans(domain)
		if err != nil {
			return fmt.Errorf("listing scans for %s: %w", domain, err)
		}

		if len(scans) == 0 {
			fmt.Printf("No scan history found for %s\n", domain)
			return nil
		}

		// Step 4: Apply limit
		if limit > 0 && len(scans) > limit {
			scans = scans[:limit]
		}

		// Step 5: Print formatted table
		const separator = "────────────────────────────────────────────────────────────────────────────────"

		fmt.Printf("\nScan History for %s\n", domain)
		fmt.Println(separator)
		fmt.Printf("  %-3s  %-12s  %-17s  %-10s  %-7s  %-7s  %s\n", "#", "Scan ID", "Started", "Status", "Profile", "Risk", "Stages")
		fmt.Println(separator)

		for i, scan := range scans {
			fmt.Printf("  %-3d  %-12s  %-17s  %-10s  %-7s  %-7s  %s\n",
				i+1,
				shortScanID(scan.ID),
				scan.StartedAt.UTC().Format("2006-01-02 15:04"),
				string(scan.Status),
				orDash(scan.Profile),
				orDash(string(scan.Risk)),
				formatStages(scan.StagesRun))
		}

		fmt.Println(separator)
		fmt.Printf("Total: %d scan(s)\n\n", len(scans))

		return nil
	},
}

// printStoredReport prints the text report of scanID, or of the latest
// finished scan of domain when scanID is empty.
func printStoredReport(store *storage.Store, domain, scanID string) error {
	var (
		meta *models.ScanMeta
		err  error
	)
	if scanID != "" {
		meta, err = store.GetScan(scanID)
	} else {
		meta, err = store.GetLatestScan(domain)
	}
	if err != nil {
		return fmt.Errorf("looking up scan: %w", err)
	}
	if meta == nil && scanID != "" {
		fmt.Printf("No scan matches %s\n", scanID)
		return nil
	}
	if meta == nil {
		fmt.Printf("No finished scan found for %s\n", domain)
		return nil
	}
	if models.NormalizeHost(meta.Target) != domain {
		return fmt.Errorf("scan %s belongs to %s, not %s", shortScanID(meta.ID), meta.Target, domain)
	}

	rep, err := store.GetReport(meta.ID)
	if err != nil {
		return fmt.Errorf("loading report %s: %w", meta.ID, err)
	}
	if rep == nil {
		fmt.Printf("[!] Scan %s (%s) has no stored report\n", shortScanID(meta.ID), meta.Status)
		return nil
	}

	fmt.Printf("[*] Scan %s (%s)\n\n", meta.ID, meta.Status)
	fmt.Print(report.RenderText(rep, version))
	return nil
}

// shortScanID returns the first 8 characters of a UUID followed by "..." for
// compact table display. Falls back to the full ID when shorter than 8 chars.
func shortScanID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

// formatStages joins the StagesRun slice into a comma-separated string.
// Returns "-" when no stages are recorded.
func formatStages(stages []string) string {
	if len(stages) == 0 {
		return "-"
	}
	return strings.Join(stages, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	historyCmd.Flags().StringP("domain", "d", "", "Target domain (required)")
	historyCmd.Flags().Int("limit", 10, "Maximum number of scans to display")
	historyCmd.Flags().Bool("report", false, "Print the report of the latest finished scan")
	historyCmd.Flags().String("scan", "", "Print the report of this scan ID (prefix accepted)")
	historyCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(historyCmd)
}
