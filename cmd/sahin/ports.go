package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/report"
	"github.com/hakim/sahin/internal/tools"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Run only the port scan",
	Long: `Scan the target domain (and any extra hosts given as arguments) with nmap
and print the open ports with their service labels and risk notes.

Nothing is recorded in the scan history.

Examples:
  sahin ports -d example.com
  sahin ports -d example.com --fast api.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Step 1: Get flags
		domain, _ := cmd.Flags().GetString("domain")
		fast, _ := cmd.Flags().GetBool("fast")
		scopeFlag, _ := cmd.Flags().GetString("scope")

		hosts := models.NewHostSet(domain)
		for _, a := range args {
			hosts.Add(a)
		}
		domain = models.NormalizeHost(domain)
		if domain == "" {
			return fmt.Errorf("a target domain is required (-d)")
		}

		// Step 2: Profile and scope
		profile, profileName, err := loadProfile(fast)
		if err != nil {
			return err
		}
		scope := resolveScope(scopeFlag)
		for _, h := range hosts.Sorted() {
			if err := checkScope(scope, h); err != nil {
				return err
			}
		}

		// Step 3: Scan
		ui := newConsoleRenderer(os.Stdout, false)
		stages := buildStages(cfg, profile, scope, ui.Sink(), logger)

		ctx, stop := signalContext()
		defer stop()

		ui.Infof("Scanning ports on %d host(s) with the %s profile", len(hosts), profileName)
		table, err := stages.ports.ScanPorts(ctx, hosts.Sorted())
		if errors.Is(err, tools.ErrToolUnavailable) {
			return fmt.Errorf("nmap not found. Run 'sahin check' for install instructions")
		}
		if err != nil {
			return err
		}

		// Step 4: Print the table
		fmt.Println()
		if len(table) == 0 {
			fmt.Println("[-] No open ports found")
			return nil
		}
		for _, host := range table.Hosts() {
			fmt.Printf("%s\n", host)
			for _, p := range table.SortedPorts(host) {
				fmt.Printf("  %s\n", report.PortLine(p, table[host][p]))
			}
			fmt.Printf("  %s\n", report.SSLSummary(table[host]))
		}
		fmt.Printf("\n[+] %d open port(s) across %d host(s)\n", table.TotalOpen(), len(table))

		return nil
	},
}

func init() {
	portsCmd.Flags().StringP("domain", "d", "", "Target domain (required)")
	portsCmd.Flags().Bool("fast", false, "Use the fast profile (nmap top ports)")
	portsCmd.Flags().String("scope", "", "Comma-separated allowed domain patterns")
	portsCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(portsCmd)
}
