package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/hakim/sahin/internal/config"
	"github.com/hakim/sahin/internal/paths"
	"github.com/hakim/sahin/internal/tools"
	"github.com/spf13/cobra"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Run only path discovery against one base URL",
	Long: `Brute-force paths under a base URL with feroxbuster (preferred) or
gobuster. When nothing is found, paths announced in robots.txt and
sitemap.xml are listed instead.

Examples:
  sahin paths -u https://example.com
  sahin paths -u http://10.0.0.5:8080 -w ./words.txt --no-hints`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Step 1: Get flags
		rawURL, _ := cmd.Flags().GetString("url")
		wordlist, _ := cmd.Flags().GetString("wordlist")
		noHints, _ := cmd.Flags().GetBool("no-hints")
		scopeFlag, _ := cmd.Flags().GetString("scope")

		u, err := url.Parse(rawURL)
		if err != nil || u.Hostname() == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("invalid base URL %q (expected http(s)://host)", rawURL)
		}

		// Step 2: Scope
		scope := resolveScope(scopeFlag)
		if err := checkScope(scope, u.Hostname()); err != nil {
			return err
		}

		// Step 3: Brute-force
		ui := newConsoleRenderer(os.Stdout, false)
		stages := buildStages(cfg, config.Profile{}, scope, ui.Sink(), logger)

		ctx, stop := signalContext()
		defer stop()

		findings, err := stages.paths.DiscoverPaths(ctx, rawURL, wordlist)
		switch {
		case errors.Is(err, tools.ErrToolUnavailable):
			return fmt.Errorf("neither feroxbuster nor gobuster found. Run 'sahin check' for install instructions")
		case errors.Is(err, paths.ErrNoWordlist):
			return fmt.Errorf("no usable wordlist found, pass one with -w")
		case err != nil:
			ui.Warnf("Warning: %v", err)
		}

		// Step 4: Print findings
		fmt.Println()
		if len(findings) > 0 {
			for _, f := range findings {
				note := paths.Note(f)
				fmt.Printf("  %-40s %d  %s\n", f.Path, f.Status, note)
			}
			fmt.Printf("\n[+] %d path(s), %d interesting\n", len(findings), paths.CountInteresting(findings))
			return nil
		}
		fmt.Println("[-] No paths found")

		// Step 5: robots.txt / sitemap.xml fallback
		if noHints || !cfg.Paths.Hints {
			return nil
		}
		hint := stages.hints.Fetch(ctx, rawURL)
		if hint.Empty() {
			fmt.Println("[-] No robots.txt or sitemap hints")
			return nil
		}
		for _, p := range hint.Robots {
			fmt.Printf("  robots   %s\n", p)
		}
		for _, p := range hint.Sitemap {
			fmt.Printf("  sitemap  %s\n", p)
		}

		return nil
	},
}

func init() {
	pathsCmd.Flags().StringP("url", "u", "", "Base URL to brute-force (required)")
	pathsCmd.Flags().StringP("wordlist", "w", "", "Wordlist for path discovery")
	pathsCmd.Flags().Bool("no-hints", false, "Skip the robots.txt / sitemap.xml fallback")
	pathsCmd.Flags().String("scope", "", "Comma-separated allowed domain patterns")
	pathsCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(pathsCmd)
}
