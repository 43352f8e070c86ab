package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Entry is one printed parameter.
type Entry struct {
	Key   string
	Value string
}

// Entries lists every parameter in file order, with the resolved cost
// function appended.
func (p *Params) Entries() []Entry {
	out := make([]Entry, 0, len(schema)+1)
	for _, fld := range schema {
		out = append(out, Entry{Key: fld.key, Value: fld.show(p)})
	}
	return append(out, Entry{Key: "cost_fn (resolved)", Value: p.CostFn.String()})
}

// Summary renders Entries as aligned "key = value" lines.
func Summary(p *Params) string {
	return Render(p.Entries(), nil)
}

// Render formats entries as "key = value" lines with the keys padded to a
// common width. If decorate is non-nil it is applied to each padded key.
func Render(entries []Entry, decorate func(string) string) string {
	width := 0
	for _, e := range entries {
		if len(e.Key) > width {
			width = len(e.Key)
		}
	}

	var b strings.Builder
	for _, e := range entries {
		key := fmt.Sprintf("%-*s", width, e.Key)
		if decorate != nil {
			key = decorate(key)
		}
		fmt.Fprintf(&b, "%s = %s\n", key, e.Value)
	}
	return b.String()
}

// LabelEntries lists the pp_types of every label section.
func LabelEntries(f *ini.File) []Entry {
	var out []Entry
	for _, sec := range LabelSections(f) {
		ppTypes, _ := lookup(f, sec, PPTypesKey)
		out = append(out, Entry{Key: sec.Name(), Value: ppTypes})
	}
	return out
}
