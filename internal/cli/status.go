package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/toolguard/internal/core/config"
	"github.com/vietddude/toolguard/internal/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current health of all guarded services",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	url := fmt.Sprintf("http://localhost:%d/health/detailed", cfg.Server.Port)

	resp, err := client.Get(url)
	if err != nil {
		slog.Error("Failed to reach service", "url", url, "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		slog.Error("Failed to decode health report", "error", err)
		os.Exit(1)
	}

	connectivity := "online"
	if !report.IsOnline {
		connectivity = "offline"
	}
	fmt.Printf("System: %s (%s, %d pending operations)\n\n", report.SystemStatus, connectivity, report.PendingOperations)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "SERVICE\tSTATE\tERRORS")

	for _, svc := range report.Services {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", svc.ServiceID, svc.State, svc.Errors)
	}
	_ = w.Flush()
}
