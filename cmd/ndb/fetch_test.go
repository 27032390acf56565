package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func newFetchFlags() *cobra.Command {
	cmd := &cobra.Command{Use: "fetch"}
	cmd.Flags().Bool("no-retry", false, "")
	return cmd
}

func TestFetchRetryConfig(t *testing.T) {
	tests := []struct {
		name     string
		noRetry  bool
		attempts int
		want     int
	}{
		{"default", false, 0, 3},
		{"configured attempts", false, 5, 5},
		{"no retry wins over config", true, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newFetchFlags()
			if tt.noRetry {
				cmd.Flags().Set("no-retry", "true")
			}
			if got := fetchRetryConfig(cmd, tt.attempts).MaxAttempts; got != tt.want {
				t.Errorf("expected %d attempts, got %d", tt.want, got)
			}
		})
	}
}
