// Command contextmap turns raw terminal session logs of AI-assisted
// coding sessions into a persisted, cumulative context map.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

func main() {
	// Credentials may live in a local .env; loading is best effort.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contextmap",
		Short: "Context Cartographer: map the story of your coding sessions",
		Long: `Context Cartographer analyzes terminal transcripts of AI-assisted coding
sessions and maintains a single cumulative report: the narrative of what
was tried, why each prompt followed the previous one, and where work left
off. The report is overwritten on every run and bounded in size, so it
stays useful for projects spanning many sessions.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newRunCmd())
	return cmd
}
