package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/mattn/go-isatty"

	"hemascan/internal/scan"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func stageColor(stage scan.Stage) string {
	switch stage {
	case scan.StageNormal:
		return ansiGreen
	case scan.StageMild, scan.StageModerate:
		return ansiYellow
	case scan.StageSevere:
		return ansiRed
	default:
		return ""
	}
}

func colorizeStage(out io.Writer, stage scan.Stage) string {
	label := stage.Label()
	if shouldColorize(out) {
		if color := stageColor(stage); color != "" {
			return color + label + ansiReset
		}
	}
	return label
}

func printRecord(out io.Writer, record scan.Record) {
	fmt.Fprintf(out, "Scan %s\n", record.ID)
	fmt.Fprintf(out, "  Stage:       %s\n", colorizeStage(out, record.Stage))
	fmt.Fprintf(out, "  Hemoglobin:  %.1f g/dL\n", record.HemoglobinEstimate)
	fmt.Fprintf(out, "  Confidence:  %.0f%%\n", record.Confidence*100)
	if record.Provider != "" {
		fmt.Fprintf(out, "  Provider:    %s\n", record.Provider)
	}
	fmt.Fprintf(out, "  Recorded:    %s\n", record.CreatedAt().Format(time.RFC1123))
	if record.Explanation != "" {
		fmt.Fprintf(out, "  Explanation: %s\n", record.Explanation)
	}

	if len(record.PerSlotFindings) > 0 {
		fmt.Fprintln(out, "  Findings:")
		seen := make(map[string]bool, len(record.PerSlotFindings))
		for _, slot := range scan.SlotNames() {
			if finding, ok := record.PerSlotFindings[slot]; ok {
				fmt.Fprintf(out, "    %-12s %s\n", slot+":", finding)
				seen[slot] = true
			}
		}
		// Providers sometimes report findings under keys outside the capture
		// slots; render those too instead of dropping them.
		extras := make([]string, 0, len(record.PerSlotFindings))
		for key := range record.PerSlotFindings {
			if !seen[key] {
				extras = append(extras, key)
			}
		}
		sort.Strings(extras)
		for _, key := range extras {
			fmt.Fprintf(out, "    %-12s %s\n", key+":", record.PerSlotFindings[key])
		}
	}

	if len(record.Insights) > 0 {
		fmt.Fprintln(out, "  Insights:")
		categories := make([]string, 0, len(record.Insights))
		for category := range record.Insights {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Fprintf(out, "    %-24s %s\n", category+":", record.Insights[category])
		}
	}

	if len(record.ImageURLs) > 0 {
		fmt.Fprintf(out, "  Photos:      %d uploaded\n", len(record.ImageURLs))
	}
}
