package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hakim/sahin/internal/tools"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for the external tools sahin drives",
	Long: `Verify which external reconnaissance tools are installed and where they
were found. Tools are searched on PATH, then in $GOPATH/bin and ~/go/bin.

No tool is strictly required: a missing tool only disables its own stage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get tool list
		toolList := tools.DefaultTools()

		// Check all tools
		results := tools.CheckTools(context.Background(), tools.NewRunner(logger), toolList)

		// Create table writer
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Tool\tStatus\tVersion\tPath\tPurpose")
		fmt.Fprintln(w, "----\t------\t-------\t----\t-------")

		found := make(map[string]bool, len(results))
		for _, result := range results {
			status := "[-]"
			version := "-"
			path := "-"

			if result.Found {
				status = "[+]"
				found[result.Tool.Binary] = true
				path = result.Path
				if result.Version != "" && result.Version != "unknown" {
					version = result.Version
				}
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				result.Tool.Name,
				status,
				version,
				path,
				result.Tool.Purpose)
		}

		w.Flush()

		// Print installation instructions for missing tools
		fmt.Println()
		missingTools := false
		for _, result := range results {
			if !result.Found {
				if !missingTools {
					fmt.Println("Missing tools:")
					missingTools = true
				}
				fmt.Printf("  %s\n    Install: %s\n", result.Tool.Name, result.Tool.InstallCmd)
			}
		}

		// Print summary
		fmt.Println()
		fmt.Printf("Summary: %d/%d tools found\n", len(found), len(results))
		if !found[tools.Nmap] {
			fmt.Println("[!] ports stage disabled: nmap missing")
		}
		if !found[tools.Subfinder] {
			fmt.Println("[!] subdomains stage limited to the target itself: subfinder missing")
		}
		if !found[tools.Feroxbuster] && !found[tools.Gobuster] {
			fmt.Println("[!] paths stage disabled: neither feroxbuster nor gobuster found")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
