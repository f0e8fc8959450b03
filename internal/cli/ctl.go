package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/rileyhilliard/procdash/internal/monitor"
	"github.com/rileyhilliard/procdash/internal/ui"
	"github.com/spf13/cobra"
)

// CtlOptions holds the flags of the ctl command.
type CtlOptions struct {
	Backend BackendFlags
	Yes     bool
	JSON    bool
}

var ctlOpts CtlOptions

var ctlCmd = &cobra.Command{
	Use:   "ctl <action> [name]",
	Short: "Start, stop or restart processes",
	Long: `Send one action to the backend. Per-process actions take the process
name; roster-wide actions take none and ask for confirmation unless --yes is
given.

Per-process actions:
  start, stop, restart, open-folder

Roster-wide actions:
  restart-all, kill-cmd, kill-node

Examples:
  procdash ctl restart api
  procdash ctl stop "worker 2"
  procdash ctl restart-all --yes`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completeCtlArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		action, name, err := parseCtlArgs(args)
		if err != nil {
			return jsonOr(ctlOpts.JSON, cmd.OutOrStdout(), err)
		}
		return ctlCommand(cmd.Context(), cmd.OutOrStdout(), action, name, ctlOpts)
	},
}

func init() {
	AddBackendFlags(ctlCmd, &ctlOpts.Backend)
	ctlCmd.Flags().BoolVarP(&ctlOpts.Yes, "yes", "y", false, "skip the confirmation for roster-wide actions")
	ctlCmd.Flags().BoolVar(&ctlOpts.JSON, "json", false, "output in JSON format")
}

// CtlOutput is the JSON shape of 'procdash ctl --json'.
type CtlOutput struct {
	Action string `json:"action"`
	Name   string `json:"name,omitempty"`
}

func actionNames(actions []backend.Action) string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

// parseCtlArgs checks the action and whether it wants a name.
func parseCtlArgs(args []string) (backend.Action, string, error) {
	action, err := backend.ParseAction(args[0])
	if err != nil {
		return "", "", errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't an action", args[0]),
			fmt.Sprintf("Use one of: %s, %s",
				actionNames(backend.EntityActions), actionNames(backend.GlobalActions)))
	}

	name := ""
	if len(args) > 1 {
		name = strings.TrimSpace(args[1])
	}
	switch {
	case action.NeedsName() && name == "":
		return "", "", errors.New(errors.ErrConfig,
			fmt.Sprintf("%s needs a process name", action),
			fmt.Sprintf("Try: procdash ctl %s <name>", action))
	case !action.NeedsName() && name != "":
		return "", "", errors.New(errors.ErrConfig,
			fmt.Sprintf("%s acts on every process and takes no name", action),
			fmt.Sprintf("Try: procdash ctl %s", action))
	}
	return action, name, nil
}

func ctlCommand(ctx context.Context, stdout io.Writer, action backend.Action, name string, opts CtlOptions) error {
	if !action.NeedsName() && !opts.Yes {
		if err := confirmGlobal(action); err != nil {
			return jsonOr(opts.JSON, stdout, err)
		}
	}

	e, err := loadEnv("ctl", &opts.Backend)
	if err != nil {
		return jsonOr(opts.JSON, stdout, err)
	}
	defer e.Close()

	client, err := e.backend()
	if err != nil {
		return jsonOr(opts.JSON, stdout, err)
	}

	d := monitor.NewDispatcher(client, e.cfg.Backend.Timeout, e.log)
	if err := d.Dispatch(ctx, action, name); err != nil {
		return jsonOr(opts.JSON, stdout, err)
	}

	if opts.JSON {
		return WriteJSONSuccess(stdout, CtlOutput{Action: string(action), Name: name})
	}
	target := string(action)
	if name != "" {
		target += " " + name
	}
	fmt.Fprintf(stdout, "%s %s sent\n", ui.SymbolSuccess, target)
	return nil
}

// confirmGlobal asks before a roster-wide action. Without a terminal the
// caller has to pass --yes.
func confirmGlobal(action backend.Action) error {
	if !stdinIsTerminal() {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("%s needs confirmation", action),
			"Pass --yes to run it without a prompt.")
	}
	ok, err := ui.Confirm(fmt.Sprintf("Run %s?", action), "This affects every managed process.")
	if err != nil {
		return err
	}
	if !ok {
		return ui.ErrCancelled
	}
	return nil
}

// completeCtlArgs completes action names, then process names from a live poll.
func completeCtlArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		var out []string
		for _, a := range append(append([]backend.Action{}, backend.EntityActions...), backend.GlobalActions...) {
			out = append(out, string(a))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	case 1:
		action, err := backend.ParseAction(args[0])
		if err != nil || !action.NeedsName() {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return processNames(cmd.Context()), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func processNames(ctx context.Context) []string {
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := loadEnv("completion", &ctlOpts.Backend)
	if err != nil {
		return nil
	}
	defer e.Close()
	client, err := e.backend()
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Backend.Timeout)
	defer cancel()
	snap, err := client.GetSnapshot(ctx)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(snap.Items))
	for _, it := range snap.Items {
		names = append(names, it.Name)
	}
	return names
}
