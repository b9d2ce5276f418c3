package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainwatch-dev/chainwatch/predicate"
	"github.com/chainwatch-dev/chainwatch/store"
)

func newRegisterCmd(resolveDBPath func() string) *cobra.Command {
	var network string
	var docPath string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "validate and persist a predicate document",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(docPath)
			if err != nil {
				return fmt.Errorf("read predicate document: %w", err)
			}
			var doc predicate.Document
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("decode predicate document: %w", err)
			}
			if errs := predicate.Validate(doc); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(cmd.ErrOrStderr(), "invalid predicate: %s\n", e)
				}
				return fmt.Errorf("%d validation error(s)", len(errs))
			}
			doc.EnsureID()

			db, err := store.Open(resolveDBPath())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			if network != "" {
				if err := db.PutPredicate(network, doc); err != nil {
					return err
				}
			} else {
				for name := range doc.Networks {
					if err := db.PutPredicate(name, doc); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered predicate %s (%s)\n", doc.ID, doc.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "", "persist only this network's body (default: every network in the document)")
	cmd.Flags().StringVar(&docPath, "file", "", "path to a JSON predicate document")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newListCmd(resolveDBPath func() string) *cobra.Command {
	var network string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list persisted predicates for a network",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(resolveDBPath())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			records, err := db.ListPredicates(network)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, rec := range records {
				if err := enc.Encode(rec); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "", "network to list")
	cmd.MarkFlagRequired("network")
	return cmd
}

func newRemoveCmd(resolveDBPath func() string) *cobra.Command {
	var network string
	var predicateID string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "delete a persisted predicate from a network",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(resolveDBPath())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			if err := db.DeletePredicate(network, predicateID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed predicate %s from %s\n", predicateID, network)
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "", "network to remove from")
	cmd.Flags().StringVar(&predicateID, "id", "", "predicate uuid")
	cmd.MarkFlagRequired("network")
	cmd.MarkFlagRequired("id")
	return cmd
}
