package cliapp

import (
	"fmt"
	"strings"
	"time"

	"depscope/internal/data/history"
	"depscope/internal/engine/resolver"
)

func renderHelp(m model) string {
	keys := "Keys: tab activity | / filter | enter details | esc back | r refresh | i install missing | q quit"
	if m.mode == panelActivity {
		keys = "Keys: tab packages | r refresh | q quit"
	}
	return statusStyle.Render(keys)
}

func renderPackageDetail(m model) string {
	d := m.detail
	state := string(d.State)
	if d.State == resolver.StateInstalled && d.Version != "" {
		state = "installed " + d.Version
	}
	lines := []string{
		fmt.Sprintf("Package Detail: %s", d.InstallName),
		fmt.Sprintf("  Imported as: %s", d.ImportName),
		fmt.Sprintf("  State: %s", state),
		fmt.Sprintf("  Imported by (%d):", len(d.Files)),
	}
	for _, file := range d.Files {
		lines = append(lines, "   "+file)
	}
	if len(d.Files) == 0 {
		lines = append(lines, "   none")
	}
	lines = append(lines, "  Press esc to close details.")
	return strings.Join(lines, "\n")
}

func renderInstallTail(m model) string {
	header := installingStyle.Render("pip output")
	if !m.installing {
		header = statusStyle.Render("pip output (finished)")
	}
	return header + "\n" + strings.Join(m.installLines, "\n")
}

func renderActivityPanel(m model) string {
	if m.recordsErr != "" {
		return statusStyle.Render("Operation journal unavailable: " + m.recordsErr)
	}
	if len(m.records) == 0 {
		return statusStyle.Render("No recorded operations yet.")
	}

	lines := []string{"Recent Operations"}
	for _, record := range m.records {
		lines = append(lines, "  "+formatRecord(record))
	}
	return strings.Join(lines, "\n")
}

func formatRecord(record history.Record) string {
	ts := record.Timestamp.Local().Format("15:04:05")
	switch record.Kind {
	case history.KindInstall:
		verdict := "ok"
		if !record.Success {
			verdict = "failed"
		}
		return fmt.Sprintf("%s install %s [%s] %d lines in %v",
			ts, strings.Join(record.Packages, " "), verdict, record.LineCount, record.Duration.Round(time.Millisecond))
	default:
		return fmt.Sprintf("%s refresh %d files, %d modules, %d missing (%s)",
			ts, record.FileCount, record.ModuleCount, record.MissingCount, record.Environment)
	}
}
