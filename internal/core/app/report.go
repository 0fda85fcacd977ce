package app

import (
	"fmt"
	"strings"
	"time"

	"depscope/internal/core/ports"
	"depscope/internal/engine/resolver"
)

// PrintReport writes the plain-text dependency report to stdout.
func (a *App) PrintReport(result ports.RefreshResult, duration time.Duration) {
	if !a.Config.Alerts.TerminalReportEnabled() {
		return
	}

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Scan: %d files, %d modules in %v\n", result.FileCount, result.ModuleCount, duration)
	fmt.Printf("Environment: %s (%s)\n", result.Environment.Label(), result.Environment.Executable)

	if len(result.Missing) > 0 {
		fmt.Printf("⚠️  MISSING %d PACKAGES:\n", len(result.Missing))
		for _, status := range result.Packages {
			if status.State != resolver.StateMissing {
				continue
			}
			if status.InstallName != status.ImportName {
				fmt.Printf("   %s (imported as %s)\n", status.InstallName, status.ImportName)
			} else {
				fmt.Printf("   %s\n", status.InstallName)
			}
		}
	} else {
		fmt.Println("✅ All imported packages are installed.")
	}

	inUse := make([]string, 0, len(result.Packages))
	for _, status := range result.Packages {
		if status.State == resolver.StateInstalled {
			inUse = append(inUse, fmt.Sprintf("%s %s", status.InstallName, status.Version))
		}
	}
	if len(inUse) > 0 {
		fmt.Println("📦 Installed packages in use:")
		for _, line := range inUse {
			fmt.Printf("   %s\n", line)
		}
	}

	if result.StdlibCount > 0 {
		fmt.Printf("📚 Standard library modules: %d\n", result.StdlibCount)
	}
	fmt.Println(strings.Repeat("-", 40))
}
