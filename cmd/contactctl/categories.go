package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mustip/backend/internal/domain"
	"mustip/backend/internal/i18n"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List inquiry categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs := i18n.Resolve(domain.ParseLocale(locale))
		for _, c := range msgs.Categories {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}
