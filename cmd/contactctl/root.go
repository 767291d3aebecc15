package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	locale  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "contactctl",
	Short: "Command line client for the MUST IP contact form",
	Long: `contactctl drives the contact form the same way the website does:
it validates the fields locally, submits them to the API and reports
the resulting state.

Example:
  contactctl submit --name Kim --email kim@example.com --message "..." --consent
  contactctl submit --file inquiry.yaml --endpoint http://localhost:8080/api/contact
  contactctl categories --locale en`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&locale, "locale", "l", "ko", "form language (ko or en)")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(categoriesCmd)
}
