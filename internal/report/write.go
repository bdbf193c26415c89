package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format selects a report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Write renders rep to w in the given format.
func Write(w io.Writer, rep *RaceReport, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		return writeText(w, rep)
	}
	return fmt.Errorf("unknown report format %q", f)
}

func writeText(w io.Writer, rep *RaceReport) error {
	if _, err := fmt.Fprintf(w, "%s (%s)\n", rep.Name, rep.RaceID); err != nil {
		return err
	}
	for _, st := range rep.Stages {
		fmt.Fprintf(w, "\n[%s] %s, %s, %.1fkm\n", st.StageID, st.Name, st.Kind, st.Length)
		if len(st.Rows) == 0 {
			fmt.Fprintln(w, "  no results")
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  #\tRIDER\tTIME\tPTS\tKOM")
		for _, r := range st.Rows {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%d\t%d\n", r.Position, r.RiderName, r.Elapsed, r.Points, r.MountainPoints)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
