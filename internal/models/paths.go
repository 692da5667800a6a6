package models

// PathFinding is a single path reported by a brute-forcer.
// Status defaults to 200 and Size to 0 when the tool does not report them.
type PathFinding struct {
	Path   string `json:"path"`
	Status int    `json:"status"`
	Size   int    `json:"size"`
}

// PathHint holds robots.txt / sitemap.xml paths gathered for a base URL
// when brute-forcing produced nothing.
type PathHint struct {
	URL     string   `json:"url"`
	Robots  []string `json:"robots,omitempty"`
	Sitemap []string `json:"sitemap,omitempty"`
}

// Empty reports whether the hint carries no paths at all.
func (h PathHint) Empty() bool {
	return len(h.Robots) == 0 && len(h.Sitemap) == 0
}
