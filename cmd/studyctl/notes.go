package main

import (
	"errors"
	"fmt"
	"strconv"

	"studycapture/application/ports"
	"studycapture/domain/core/entities"

	"github.com/spf13/cobra"
)

const defaultNotesLimit = 10

func newNotesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "notes [limit]",
		Short: "List the most recent notes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := defaultNotesLimit
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("limit must be a positive integer, got %q", args[0])
				}
				limit = n
			}

			store, cleanup, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			notes, err := store.ListNotes(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}
			renderNotes(cmd.OutOrStdout(), notes, limit)
			return nil
		},
	}
}

func newNoteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "note <id>",
		Short: "Show one note in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("note id must be an integer, got %q", args[0])
			}

			store, cleanup, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			note, err := store.GetNote(cmd.Context(), entities.NoteID(id))
			if errors.Is(err, ports.ErrNotFound) {
				return fmt.Errorf("note %d not found", id)
			}
			if err != nil {
				return err
			}
			renderNote(cmd.OutOrStdout(), note)
			return nil
		},
	}
}
