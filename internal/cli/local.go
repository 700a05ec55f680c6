package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dux/internal/paths"
	"github.com/mesh-intelligence/dux/pkg/dux"
	"github.com/mesh-intelligence/dux/pkg/types"
)

// ErrListRejected is returned by list when --if rejects the cached list.
var ErrListRejected = errors.New("list does not satisfy --if")

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "get <entity> <id>",
		Short:   "Print a record from the local snapshot",
		Example: `  duxctl get user 42`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := types.ParseID(parseIDArg(args[1]))
			if err != nil {
				return userError(err)
			}
			return a.withSession(cmd, args[0], func(s *session, e *dux.Entity) error {
				state, _ := s.store.State(e.Name())
				rec, found := dux.GetItem(state, id)
				switch {
				case !found:
					return userError(fmt.Errorf("%s %s not found in snapshot", e.Name(), id))
				case rec == nil:
					return userError(fmt.Errorf("%s %s was deleted", e.Name(), id))
				}
				return writeJSON(cmd.OutOrStdout(), rec)
			})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var (
		cond string
		flat bool
	)
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "Print the list view from the local snapshot",
		Long: `List prints the cached list of an entity type with its records expanded.

--if gates the output on an expression over the list metadata. The
expression sees filters, params, objects, count, page, ipp and total.
When it evaluates to false nothing is printed and the exit code is 1.`,
		Example: `  duxctl list user
  duxctl list user --flat
  duxctl list user --if 'total > 0 && filters.active == true'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pred dux.Predicate
			if cond != "" {
				p, err := dux.ExprPredicate(cond)
				if err != nil {
					return userError(err)
				}
				pred = p
			}
			return a.withSession(cmd, args[0], func(s *session, e *dux.Entity) error {
				state, _ := s.store.State(e.Name())
				if flat {
					arr := dux.GetListArr(state, pred)
					if arr == nil {
						return userError(ErrListRejected)
					}
					return writeJSON(cmd.OutOrStdout(), arr)
				}
				list := dux.GetList(state, pred)
				if list == nil {
					return userError(ErrListRejected)
				}
				return writeJSON(cmd.OutOrStdout(), list)
			})
		},
	}
	cmd.Flags().StringVar(&cond, "if", "", "only print when this expression over the list metadata is true")
	cmd.Flags().BoolVar(&flat, "flat", false, "print the records only, without list metadata")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the snapshot of every entity type as JSONL files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.cfg.DataDir)
			if err != nil {
				return sysError(fmt.Errorf("resolve data dir: %w", err))
			}
			dir := out
			if dir == "" {
				dir = filepath.Join(dataDir, "export")
			}

			s, err := a.openSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.close()

			written, err := s.cache.ExportJSONL(dir)
			if err != nil {
				return sysError(fmt.Errorf("export: %w", err))
			}
			for _, p := range written {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default: <data-dir>/export)")
	return cmd
}
