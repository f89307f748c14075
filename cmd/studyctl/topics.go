package main

import (
	"github.com/spf13/cobra"
)

func newTopicsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List topics with their note counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			topics, err := store.TopicsWithCounts(cmd.Context())
			if err != nil {
				return err
			}
			renderTopics(cmd.OutOrStdout(), topics)
			return nil
		},
	}
}
