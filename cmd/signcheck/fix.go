package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"signcheck/internal/diag"
	"signcheck/internal/driver"
	"signcheck/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [file.sgn|directory]...",
	Short: "Apply suggested fixes to fixture files",
	Long: `Check the given paths and apply the fixes attached to diagnostics, such as
turning a narrowing "to" cast into an explicit "to!" cast. Without flags only the
first fix in file order is applied.`,
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply every non-conflicting fix")
	fixCmd.Flags().String("code", "", "apply every fix of this diagnostic kind (e.g. UncheckedNarrowingCast)")
	fixCmd.Flags().String("id", "", "apply the fix with this identifier")
	fixCmd.Flags().Bool("dry-run", false, "print what would change without writing files")
	fixCmd.Flags().StringSlice("stubs", nil, "annotation stub files, applied after those listed in signcheck.toml")
}

func readFixOptions(cmd *cobra.Command) (fix.ApplyOptions, error) {
	var opts fix.ApplyOptions
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return opts, fmt.Errorf("failed to get all flag: %w", err)
	}
	kind, err := cmd.Flags().GetString("code")
	if err != nil {
		return opts, fmt.Errorf("failed to get code flag: %w", err)
	}
	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return opts, fmt.Errorf("failed to get id flag: %w", err)
	}
	if opts.DryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
		return opts, fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	return selectFixMode(opts, all, kind, id)
}

func selectFixMode(opts fix.ApplyOptions, all bool, kind, id string) (fix.ApplyOptions, error) {
	set := 0
	for _, on := range []bool{all, kind != "", id != ""} {
		if on {
			set++
		}
	}
	if set > 1 {
		return opts, fmt.Errorf("--all, --code and --id are mutually exclusive")
	}
	switch {
	case all:
		opts.Mode = fix.ApplyModeAll
	case kind != "":
		code, ok := diag.ParseKind(kind)
		if !ok {
			return opts, fmt.Errorf("unknown diagnostic kind %q", kind)
		}
		opts.Mode = fix.ApplyModeCode
		opts.TargetCode = code
	case id != "":
		opts.Mode = fix.ApplyModeID
		opts.TargetID = id
	default:
		opts.Mode = fix.ApplyModeOnce
	}
	return opts, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	opts, err := readFixOptions(cmd)
	if err != nil {
		return err
	}
	stubs, err := cmd.Flags().GetStringSlice("stubs")
	if err != nil {
		return fmt.Errorf("failed to get stubs flag: %w", err)
	}
	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, cfgDiag, err := resolveCheckConfig(args, checkFlags{format: "pretty", stubs: stubs})
	if err != nil {
		return err
	}
	if cfgDiag != nil {
		bag := diag.NewBag(1)
		bag.Add(cfgDiag.diagnostic)
		return writeDiagnostics(os.Stdout, bag, cfgDiag.fs, "short", checkFlags{})
	}

	report, err := driver.CheckPaths(cmd.Context(), cfg.paths, driver.Options{
		Jobs:   cfg.jobs,
		Store:  cfg.store,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("fix: check failed: %w", err)
	}

	res, applyErr := fix.Apply(report.FileSet, report.Bag().Items(), opts)
	if err := printApplyResult(os.Stdout, res, opts.DryRun); err != nil {
		return err
	}
	if errors.Is(applyErr, fix.ErrNoFixes) {
		fmt.Fprintln(os.Stdout, "no applicable fixes found")
		return nil
	}
	return applyErr
}

func printApplyResult(out io.Writer, res *fix.ApplyResult, dryRun bool) error {
	if res == nil {
		return nil
	}
	verb := "Applied"
	if dryRun {
		verb = "Would apply"
	}
	if len(res.Applied) > 0 {
		if _, err := fmt.Fprintf(out, "%s %d fix(es):\n", verb, len(res.Applied)); err != nil {
			return err
		}
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			if _, err := fmt.Fprintf(out, "  %s [%s] %s (%d edits)\n", item.Title, item.ID, location, item.EditCount); err != nil {
				return err
			}
		}
	}
	if len(res.FileChanges) > 0 && !dryRun {
		if _, err := fmt.Fprintln(out, "Updated files:"); err != nil {
			return err
		}
		for _, change := range res.FileChanges {
			if _, err := fmt.Fprintf(out, "  %s (%d edits)\n", change.Path, change.EditCount); err != nil {
				return err
			}
		}
	}
	if len(res.Skipped) > 0 {
		if _, err := fmt.Fprintln(out, "Skipped fixes:"); err != nil {
			return err
		}
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if _, err := fmt.Fprintf(out, "  [%s] %s: %s\n", id, skip.Title, skip.Reason); err != nil {
				return err
			}
		}
	}
	return nil
}
