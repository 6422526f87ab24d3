package pkgver

import (
	"strings"
)

const directiveHeader = "sem-ver:"

// Directives is the semantic impact declared by Sem-Ver lines in commit
// messages, e.g. "Sem-Ver: feature, api-break".
type Directives struct {
	Bump Bump

	// Unknown holds symbols that map to no impact, in first-seen order.
	Unknown []string
}

// ParseDirectives scans commit messages for sem-ver lines. Only lines whose
// first non-blank characters are "sem-ver:" count, case-insensitively.
// bugfix maps to a patch bump, feature and deprecation to minor, api-break
// to major. A major bump absorbs a minor one.
func ParseDirectives(messages []string) Directives {
	var d Directives
	seen := make(map[string]bool)

	for _, msg := range messages {
		for _, line := range strings.Split(msg, "\n") {
			line = strings.ToLower(strings.TrimSpace(line))
			if !strings.HasPrefix(line, directiveHeader) {
				continue
			}
			for _, symbol := range strings.Split(line[len(directiveHeader):], ",") {
				symbol = strings.TrimSpace(symbol)
				if symbol == "" {
					continue
				}
				switch symbol {
				case "bugfix":
					d.Bump.Patch = true
				case "feature", "deprecation":
					d.Bump.Minor = true
				case "api-break":
					d.Bump.Major = true
				default:
					if !seen[symbol] {
						seen[symbol] = true
						d.Unknown = append(d.Unknown, symbol)
					}
				}
			}
		}
	}

	if d.Bump.Major {
		d.Bump.Minor = false
	}
	return d
}
