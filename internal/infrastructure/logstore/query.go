package logstore

import (
	"fmt"
	"strings"
)

// BuildQuery renders the search submitted to each log source: completion
// marker plus tenant hash as substring predicates, ascending by timestamp,
// capped at limit rows. Regex metacharacters in the hash are escaped so a
// hash can never widen the filter.
func BuildQuery(tenantHash string, limit int) string {
	return fmt.Sprintf(
		"fields timestamp, message"+
			" | filter message like /%s/ and message like /%s/"+
			" | sort timestamp asc"+
			" | limit %d",
		"QA_COMPLETE", escapeFilter(tenantHash), limit)
}

var filterEscaper = strings.NewReplacer(
	`\`, `\\`,
	`/`, `\/`,
	`.`, `\.`,
	`*`, `\*`,
	`+`, `\+`,
	`?`, `\?`,
	`(`, `\(`,
	`)`, `\)`,
	`[`, `\[`,
	`]`, `\]`,
	`{`, `\{`,
	`}`, `\}`,
	`^`, `\^`,
	`$`, `\$`,
	`|`, `\|`,
)

func escapeFilter(s string) string {
	return filterEscaper.Replace(s)
}
