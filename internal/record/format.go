package record

import (
	"fmt"
	"strconv"
	"strings"
)

const idPrefix = "id_"

// FormatLine renders an accepted record as `id_<n> <move-text>`.
func FormatLine(id int, moveText string) string {
	return idPrefix + strconv.Itoa(id) + " " + moveText
}

// ParseLine splits an `id_<n> <move-text>` line.
func ParseLine(line string) (id int, moveText string, err error) {
	head, rest, found := strings.Cut(line, " ")
	if !found {
		return 0, "", fmt.Errorf("record line has no move-text: %q", truncate(line, 40))
	}
	if !strings.HasPrefix(head, idPrefix) {
		return 0, "", fmt.Errorf("record line missing %q prefix: %q", idPrefix, truncate(line, 40))
	}
	id, err = strconv.Atoi(head[len(idPrefix):])
	if err != nil {
		return 0, "", fmt.Errorf("record id %q: %w", head, err)
	}
	return id, rest, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
