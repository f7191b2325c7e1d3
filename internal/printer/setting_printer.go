package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/steamstat/steamstat/internal/cmd/output"
)

var _ output.Printer[SettingEntry] = (*SettingPrinter)(nil)

// secretMask replaces secret values that are set.
const secretMask = "********"

// SettingEntry is one key and its resolved value.
type SettingEntry struct {
	Key    string `json:"key"    yaml:"key"`
	Value  string `json:"value"  yaml:"value"`
	Secret bool   `json:"secret" yaml:"secret"`
}

// Masked returns a copy of e with a non-empty secret value hidden.
func (e SettingEntry) Masked() SettingEntry {
	if e.Secret && e.Value != "" {
		e.Value = secretMask
	}
	return e
}

// SettingPrinter renders settings as aligned key/value rows.
// Entries are expected to be masked by the caller.
type SettingPrinter struct {
	tw *tabwriter.Writer
}

func NewSettingPrinter() *SettingPrinter {
	return &SettingPrinter{}
}

func (p *SettingPrinter) Header(w io.Writer, _ int) {
	p.tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(p.tw, "KEY\tVALUE")
}

func (p *SettingPrinter) Item(w io.Writer, e SettingEntry) error {
	value := e.Value
	if value == "" {
		value = "(unset)"
	}

	if p.tw == nil {
		_, err := fmt.Fprintf(w, "%s = %s\n", e.Key, value)
		return err
	}

	_, err := fmt.Fprintf(p.tw, "%s\t%s\n", e.Key, value)
	return err
}

func (p *SettingPrinter) Footer(io.Writer, int) {
	if p.tw != nil {
		_ = p.tw.Flush()
		p.tw = nil
	}
}
