package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/bulk"
	"github.com/jonathan/candidate-tracker/internal/observability"
	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List candidates awaiting a decision, most urgent first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd.Context(), cfg, zlog)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.lifecycle.ActionItems(cmd.Context())
		if err != nil {
			return err
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintActionItems(items)
		return nil
	},
}

var (
	bulkAction  string
	bulkComment string
	bulkActor   string
)

var bulkCmd = &cobra.Command{
	Use:   "bulk <candidate-id>...",
	Short: "Invite, reject or delete many candidates at once",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]uuid.UUID, 0, len(args))
		for _, arg := range args {
			id, err := uuid.Parse(arg)
			if err != nil {
				return fmt.Errorf("invalid candidate id %q: %w", arg, err)
			}
			ids = append(ids, id)
		}

		a, err := buildApp(cmd.Context(), cfg, zlog)
		if err != nil {
			return err
		}
		defer a.Close()

		action := bulk.Action(bulkAction)
		res, err := a.bulk.Apply(cmd.Context(), bulk.Request{
			IDs:     ids,
			Action:  action,
			Comment: bulkComment,
			Actor:   bulkActor,
		})
		if err != nil {
			return err
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintBulkResult(action, res)
		if res.FailureCount > 0 {
			return fmt.Errorf("%d of %d candidates failed", res.FailureCount, len(res.Items))
		}
		return nil
	},
}

func init() {
	bulkCmd.Flags().StringVarP(&bulkAction, "action", "a", "", "invite, reject or delete (required)")
	bulkCmd.Flags().StringVarP(&bulkComment, "comment", "m", "", "Comment stored with each decision")
	bulkCmd.Flags().StringVar(&bulkActor, "actor", "", "Operator name recorded in the audit trail")
	_ = bulkCmd.MarkFlagRequired("action")

	rootCmd.AddCommand(queueCmd, bulkCmd)
}
