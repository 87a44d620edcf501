/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/suparena/typeregistry"
	"github.com/suparena/typeregistry/errors"
	"github.com/suparena/typeregistry/identifier"
	"github.com/suparena/typeregistry/logging"
	"github.com/suparena/typeregistry/manifest"
	"github.com/suparena/typeregistry/registry"
)

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered types and their entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := a.load()
			if err != nil {
				return err
			}
			printTypes(cmd.OutOrStdout(), tr)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [kind]",
		Short: "List registered entries, optionally for one kind",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := a.load()
			if err != nil {
				return err
			}

			kinds := manifest.Kinds()
			if len(args) == 1 {
				k, err := lookupKind(args[0])
				if err != nil {
					return err
				}
				kinds = []manifest.Kind{k}
			}

			out := cmd.OutOrStdout()
			t := newTable(out, "KIND", "ID", "VALUE")
			for _, k := range kinds {
				for _, item := range k.List(tr) {
					t.row(k.Name(), item.ID.String(), item.Value)
				}
			}
			if t.empty() {
				fmt.Fprintln(out, "no entries registered")
				return nil
			}
			return t.flush()
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Print the value registered under an identifier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, id, err := parseTarget(args[0], args[1])
			if err != nil {
				return err
			}
			tr, err := a.load()
			if err != nil {
				return err
			}
			v, ok := k.Get(tr, id)
			if !ok {
				return errors.NewNotFoundError(k.Name(), id.String())
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newUnregisterCmd(a *app) *cobra.Command {
	var ifValue string

	cmd := &cobra.Command{
		Use:   "unregister <kind> <id>...",
		Short: "Remove entries, then show the remaining types",
		Long: `Remove one or more entries of a kind. When the last entry of a kind is
removed its key registry is pruned, which the trailing type listing shows.

With --if-value an entry is only removed when its current value equals the
given one; a mismatch fails with a condition error, a missing entry with a
not-found error.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			ids := make([]identifier.Identifier, 0, len(args)-1)
			for _, raw := range args[1:] {
				id, err := identifier.Parse(raw)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			tr, err := a.load()
			if err != nil {
				return err
			}
			logger := logging.GetLogger("cmd.unregister")
			out := cmd.OutOrStdout()
			conditional := cmd.Flags().Changed("if-value")

			for _, id := range ids {
				if conditional {
					removed, err := k.UnregisterValue(tr, id, ifValue)
					if err != nil {
						return err
					}
					if !removed {
						if k.IsRegistered(tr, id) {
							return errors.NewConditionFailedError("unregister", fmt.Sprintf("%s %s == %q", k.Name(), id, ifValue))
						}
						return errors.NewNotFoundError(k.Name(), id.String())
					}
					fmt.Fprintf(out, "removed %s %s\n", k.Name(), id)
					continue
				}

				v, ok := k.Unregister(tr, id)
				if !ok {
					return errors.NewNotFoundError(k.Name(), id.String())
				}
				logger.Debug().Str("kind", k.Name()).Str("id", id.String()).Msg("Entry removed")
				fmt.Fprintf(out, "removed %s %s (%s)\n", k.Name(), id, v)
			}

			fmt.Fprintln(out)
			printTypes(out, tr)
			return nil
		},
	}
	cmd.Flags().StringVar(&ifValue, "if-value", "", "Only remove entries whose value equals this")
	return cmd
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the value kinds manifests may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable(cmd.OutOrStdout(), "KIND", "TYPE")
			for _, k := range manifest.Kinds() {
				t.row(k.Name(), k.Type().String())
			}
			return t.flush()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := typeregistry.GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "regctl version %s\n", info.Version)
			fmt.Fprintf(out, "  commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "  built:  %s\n", info.BuildDate)
			fmt.Fprintf(out, "  go:     %s\n", info.GoVersion)
		},
	}
}

func printTypes(w io.Writer, tr *registry.TypeRegistry) {
	if tr.IsEmpty() {
		fmt.Fprintln(w, "no types registered")
		return
	}
	t := newTable(w, "KIND", "TYPE", "ENTRIES")
	for _, r := range tr.Registries() {
		name := "-"
		if k, ok := manifest.KindFor(r.ValueType()); ok {
			name = k.Name()
		}
		t.row(name, r.ValueType().String(), fmt.Sprint(r.Len()))
	}
	_ = t.flush()
}

func lookupKind(name string) (manifest.Kind, error) {
	k, ok := manifest.LookupKind(name)
	if !ok {
		return nil, errors.NewValidationError("kind", fmt.Sprintf("unknown kind %q", name))
	}
	return k, nil
}

func parseTarget(kind, rawID string) (manifest.Kind, identifier.Identifier, error) {
	k, err := lookupKind(kind)
	if err != nil {
		return nil, identifier.Identifier{}, err
	}
	id, err := identifier.Parse(rawID)
	if err != nil {
		return nil, identifier.Identifier{}, err
	}
	return k, id, nil
}
