// Package server exposes the ROI report over a local HTTP dashboard.
package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/blackwell-systems/roiwatch/internal/metrics"
)

//go:embed templates/index.html
var templateFS embed.FS

// ReportFunc produces a fresh report. It is invoked on every /api/report
// request so the dashboard stays live as new sessions and commits land.
type ReportFunc func() (*metrics.Report, error)

// Serve starts a local HTTP server on the given port and blocks until
// it stops. When openBrowserFirst is set, the default browser is pointed
// at the dashboard shortly after startup.
func Serve(port int, build ReportFunc, openBrowserFirst bool) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		data, err := templateFS.ReadFile("templates/index.html")
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})

	mux.HandleFunc("/api/report", func(w http.ResponseWriter, r *http.Request) {
		report, err := build()
		if err != nil {
			http.Error(w, "failed to build report: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(report)
	})

	addr := fmt.Sprintf(":%d", port)
	url := fmt.Sprintf("http://localhost:%d", port)

	fmt.Printf("Serving dashboard at %s\n", url)
	fmt.Println("Press Ctrl+C to stop.")

	if openBrowserFirst {
		go func() {
			time.Sleep(300 * time.Millisecond)
			openBrowser(url)
		}()
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return srv.ListenAndServe()
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}
	_ = cmd.Start()
}
