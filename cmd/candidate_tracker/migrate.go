package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the candidate tables if they do not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd.Context(), cfg, zlog)
		if err != nil {
			return err
		}
		defer a.Close()
		return migrateStore(cmd.Context(), a)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
