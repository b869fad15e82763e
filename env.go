package datatable

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// envUnsafe lists the characters that force a value to be quoted.
const envUnsafe = " \t\r\n\"'`$\\#;&|<>()*?[]{}~!"

// writeEnv writes each body row as KEY=value lines, one block per row with
// a blank line between blocks. Keys are upper-cased shell identifiers.
func writeEnv(w io.Writer, g *grid) error {
	keys := g.dataKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = envName(k)
	}
	for i, row := range g.rows {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		for j, cell := range row {
			if _, err := fmt.Fprintf(w, "%s=%s\n", names[j], envValue(cell)); err != nil {
				return err
			}
		}
	}
	return nil
}

// envName maps a column key to a shell variable name.
func envName(key string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(key) {
		if r == '_' || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	name := sb.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "_" + name
	}
	return name
}

func envValue(s string) string {
	if strings.ContainsAny(s, envUnsafe) {
		return strconv.Quote(s)
	}
	return s
}
