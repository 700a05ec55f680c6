package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dux/pkg/dux"
)

// queryFlags are the request parameters shared by the network commands.
type queryFlags struct {
	params  []string
	filters []string
}

func (q *queryFlags) register(cmd *cobra.Command, withFilters bool) {
	cmd.Flags().StringArrayVarP(&q.params, "param", "p", nil, "URL template parameter key=value (repeatable)")
	if withFilters {
		cmd.Flags().StringArrayVarP(&q.filters, "filter", "f", nil, "list filter key=value sent as a query parameter (repeatable)")
	}
}

func (q *queryFlags) options() (dux.ActionOptions, error) {
	params, err := parseKV(q.params)
	if err != nil {
		return dux.ActionOptions{}, userError(err)
	}
	filters, err := parseKV(q.filters)
	if err != nil {
		return dux.ActionOptions{}, userError(err)
	}
	return dux.ActionOptions{Params: params, Filters: filters}, nil
}

func newCreateCmd(a *app) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "create <entity> <json|->",
		Short: "POST a new record and add it to the local list",
		Example: `  duxctl create user '{"name":"Ann"}'
  echo '{"name":"Bob"}' | duxctl create user -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := q.options()
			if err != nil {
				return err
			}
			rec, err := parseRecord(args[1], cmd.InOrStdin())
			if err != nil {
				return userError(err)
			}
			return a.withSession(cmd, args[0], func(s *session, e *dux.Entity) error {
				return dispatch(cmd, s, e.Create(rec, opts))
			})
		},
	}
	q.register(cmd, false)
	return cmd
}

func newReadCmd(a *app) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "read <entity> [id]",
		Short: "GET one record, or the list when no id is given",
		Example: `  duxctl read user
  duxctl read user --filter active=true --param org=acme
  duxctl read user 42`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := q.options()
			if err != nil {
				return err
			}
			if len(args) == 2 {
				opts.ID = parseIDArg(args[1])
			}
			return a.withSession(cmd, args[0], func(s *session, e *dux.Entity) error {
				t, err := e.Read(opts)
				if err != nil {
					return userError(err)
				}
				return dispatch(cmd, s, t)
			})
		},
	}
	q.register(cmd, true)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:     "update <entity> <id> <json|->",
		Short:   "PUT a record and replace it locally",
		Example: `  duxctl update user 42 '{"id":42,"name":"Ann B."}'`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := q.options()
			if err != nil {
				return err
			}
			rec, err := parseRecord(args[2], cmd.InOrStdin())
			if err != nil {
				return userError(err)
			}
			return a.withSession(cmd, args[0], func(s *session, e *dux.Entity) error {
				t, err := e.Update(parseIDArg(args[1]), rec, opts)
				if err != nil {
					return userError(err)
				}
				return dispatch(cmd, s, t)
			})
		},
	}
	q.register(cmd, false)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:     "delete <entity> <id>",
		Short:   "DELETE a record and tombstone it locally",
		Example: `  duxctl delete user 42`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := q.options()
			if err != nil {
				return err
			}
			return a.withSession(cmd, args[0], func(s *session, e *dux.Entity) error {
				t, err := e.Delete(parseIDArg(args[1]), opts)
				if err != nil {
					return userError(err)
				}
				return dispatch(cmd, s, t)
			})
		},
	}
	q.register(cmd, false)
	return cmd
}
