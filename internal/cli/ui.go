package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, color.CyanString(logo))
	if title != "" {
		fmt.Fprintln(w, title)
		fmt.Fprintln(w, "─────────────────────")
	}
}

func printJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// mark renders a boolean as a colored check or cross.
func mark(ok bool) string {
	if ok {
		return color.GreenString("✓")
	}
	return color.RedString("✗")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
