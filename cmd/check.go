package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cottand/variance/frontend/ilerr"
	"github.com/cottand/variance/frontend/tenv"
	"github.com/cottand/variance/frontend/variance"
	"github.com/cottand/variance/internal/fixture"
	"github.com/cottand/variance/internal/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check ./fixture.yaml",
	Short:        "Check declaration-site variance on a fixture file",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	logLevel   *int
	debugStack *bool
)

var cliLogger = log.DefaultLogger.With("section", "variance.cli")

func init() {
	logLevel = CheckCmd.Flags().IntP("log-level", "l", int(slog.LevelWarn), "log level")
	debugStack = CheckCmd.Flags().Bool("debug-stack", false, "include a construction stacktrace with each printed error")
}

func runCheck(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))
	ilerr.EnableDebugErrorPrinting = *debugStack

	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "could not read fixture")
	}

	classes, classParents, typedefs, err := fixture.Load(data)
	if err != nil {
		return err
	}
	cliLogger.Debug("loaded fixture", "classes", len(classes), "typedefs", len(typedefs))

	decls := make(map[string]tenv.Decl, len(classes)+len(typedefs))
	for _, c := range classes {
		decls[c.Name] = tenv.Decl{Class: c}
	}
	for _, td := range typedefs {
		decls[td.Name] = tenv.Decl{Typedef: td}
	}
	env := tenv.NewMockEnv(decls)
	oracle := variance.TenvOracle{Env: env}

	var all *ilerr.Errors
	for _, c := range classes {
		all = all.Merge(variance.CheckClass(oracle, c, classParents[c.Name]))
	}
	for _, td := range typedefs {
		all = all.Merge(variance.CheckTypedef(oracle, td))
	}

	if !all.HasError() {
		fmt.Fprintln(cmd.OutOrStdout(), "ok: no variance errors")
		return nil
	}
	for _, e := range all.Errors() {
		fmt.Fprintln(cmd.OutOrStdout(), ilerr.FormatWithCode(e))
		for _, s := range e.Secondaries() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", s.Message)
		}
	}
	return errors.Errorf("%d variance error(s) found", len(all.Errors()))
}
