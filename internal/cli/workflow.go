package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/neexbeast/wwtravelclub/internal/storage"
	"github.com/neexbeast/wwtravelclub/internal/workflow"
)

func populateCmd(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "populate",
		Short: "Insert Florence and its packages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := loadAndOpen(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer pool.Close()

			d, err := workflow.Populate(cmd.Context(), storage.NewRepository(pool), log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "DB populated: first destination id is %d\n", d.ID)
			return nil
		},
	}
}

func modifyCmd(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "modify",
		Short: "Describe Florence and raise its package prices by 10%",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := loadAndOpen(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer pool.Close()

			d, err := workflow.Modify(cmd.Context(), storage.NewRepository(pool), log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "New Florence description: %s\n", *d.Description)
			return nil
		},
	}
}
