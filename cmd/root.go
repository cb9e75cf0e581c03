package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/medibook/medibook_backend/cmd/http"
	systemcmd "github.com/medibook/medibook_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "medibook",
	Short: "MediBook clinic appointment booking backend.",
	Long: `MediBook lets patients book doctor consultations by date and shift.
Doctors publish schedules, admins manage the directory, and everyone gets
notified in real time when a booking changes.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
