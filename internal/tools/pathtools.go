package tools

import "github.com/hakim/sahin/internal/models"

// PathTool couples a brute-forcer binary with its argv builder and its
// output parser. Swapping a tool version with a different grammar only
// touches its Parse function.
type PathTool struct {
	Binary string
	Args   func(url, wordlist string) []string
	Parse  func(output string) []models.PathFinding
}

// PathTools returns the supported brute-forcers in preference order.
func PathTools(gobusterThreads int) []PathTool {
	return []PathTool{
		{
			Binary: Feroxbuster,
			Args:   FeroxbusterArgs,
			Parse:  ParseFeroxbuster,
		},
		{
			Binary: Gobuster,
			Args: func(url, wordlist string) []string {
				return GobusterArgs(url, wordlist, gobusterThreads)
			},
			Parse: ParseGobuster,
		},
	}
}

// SelectPathTool returns the first tool lookup can resolve, with its path.
func SelectPathTool(tools []PathTool, lookup LookupFunc) (PathTool, string, bool) {
	if lookup == nil {
		lookup = Resolve
	}
	for _, t := range tools {
		if path, ok := lookup(t.Binary); ok {
			return t, path, true
		}
	}
	return PathTool{}, "", false
}
