// Command threshold is the terminal client for the THRESHOLD chat server.
// It streams replies through the wire decoder, renders anomaly spans, and
// drives the puzzle gate locally with the same reducer the server trusts.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

func main() {
	server := flag.String("server", envOr("THRESHOLD_SERVER", "http://localhost:8080"), "chat server base URL")
	session := flag.String("session", "", "tab session ID (default: random)")
	flag.Parse()

	sessionID := *session
	if sessionID == "" {
		sessionID = "tab-" + uuid.NewString()
	}

	client, err := NewClient(*server, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "threshold: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "threshold: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
