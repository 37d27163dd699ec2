package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	_ "net/http/pprof" // profiling

	_ "github.com/joho/godotenv/autoload" // automatically load .env files

	"github.com/tujuhre12/recycler/internal/cmd"
)

const defaultProfileAddr = "localhost:6060"

func main() {
	if addr := profileAddr(); addr != "" {
		go func() {
			slog.Info("Serving pprof", "addr", addr)
			if httpErr := http.ListenAndServe(addr, nil); httpErr != nil {
				slog.Error("Failed to pprof listen", "addr", addr, "error", httpErr)
			}
		}()
	}

	cmd.Execute()
}

// profileAddr reads RECYCLER_PROFILE. Any value containing a colon is used
// as the listen address, other non-empty values select the default one.
func profileAddr() string {
	v := os.Getenv("RECYCLER_PROFILE")
	switch {
	case v == "":
		return ""
	case strings.Contains(v, ":"):
		return v
	default:
		return defaultProfileAddr
	}
}

