package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRewriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite [flags] file.lisp",
		Short: "Apply set-equivalence rewrite passes without reordering",
		Long: `Rewrite runs rewrite passes over a program's tree and prints the result.
Operands are not sorted or flattened. By default passes run until one makes
no change; --passes stops earlier.`,
		Args: cobra.ExactArgs(1),
		RunE: runRewrite,
	}
	cmd.Flags().Int("passes", 0, "maximum number of passes (0 runs to a fixed point)")
	return cmd
}

func runRewrite(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("passes")
	if err != nil {
		return fmt.Errorf("failed to get passes flag: %w", err)
	}
	if limit < 0 {
		return fmt.Errorf("--passes must not be negative, got %d", limit)
	}

	root, err := s.load(args[0])
	if err != nil {
		return err
	}
	t, err := s.newTree(root)
	if err != nil {
		return err
	}

	n, passes := t.Root(), 0
	if limit == 0 {
		n, passes, err = t.Rewrite(n)
		if err != nil {
			s.reportNotConverged(err)
			return err
		}
	} else {
		for passes < limit {
			var changed bool
			n, changed, err = t.ReplaceSetEquivalences(n)
			if err != nil {
				return err
			}
			passes++
			if !changed {
				break
			}
		}
	}

	fmt.Fprintln(s.out, n)
	fmt.Fprintf(s.errOut, "%s %d\n", s.paint("passes:", headerAttrs), passes)
	return nil
}
