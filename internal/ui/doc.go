// Package ui provides terminal UI components for the hysenctl CLI.
//
// Output follows a "run once and exit" pattern for single commands and a
// Bubble Tea program for the live watch view. Styling is done with Lipgloss.
//
// # Components
//
//   - Header: device banner with name, profile and endpoint
//   - Status: heating or fan coil status, grouped into sections
//   - Result: success, failure and warning boxes with troubleshooting tips
//   - WatchModel: polls a device on an interval and redraws its status
//
// # Usage
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader(ui.NewHeader("bathroom", "heating · wss://bridge.local/hysen"))
//	if err := p.PrintStatus(state); err != nil {
//	    return err
//	}
//
//	p.PrintError("Status read failed", err, thermostat.TroubleshootingHints(err))
//
// # Logging Integration
//
// zap logging is controlled via the HYSEN_LOG_LEVEL environment variable.
// When unset the logger is silent, so only the curated UI output is shown.
package ui
