package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/csgtree/pkg/csg"
)

// errDiffer reports that two programs have different canonical forms.
var errDiffer = errors.New("canonical forms differ")

func newEqualCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "equal a.lisp b.lisp",
		Short: "Report whether two programs normalize to the same tree",
		Long: `Equal normalizes both programs and compares their canonical forms. It
exits with status 1 when they differ.`,
		Args: cobra.ExactArgs(2),
		RunE: runEqual,
	}
}

func runEqual(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	var canon [2]*csg.Node
	var g errgroup.Group
	for i, path := range args {
		g.Go(func() error {
			root, err := s.load(path)
			if err != nil {
				return err
			}
			t, err := s.newTree(root)
			if err != nil {
				return err
			}
			if err := t.NormalizeRoot(); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			canon[i] = t.Root()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if csg.Equal(canon[0], canon[1]) {
		fmt.Fprintln(s.out, s.paint("equal", okAttrs))
		return nil
	}
	fmt.Fprintln(s.out, s.paint("differ", badAttrs))
	fmt.Fprintf(s.out, "  %s %s\n", s.paint("%s:", dimAttrs, args[0]), canon[0])
	fmt.Fprintf(s.out, "  %s %s\n", s.paint("%s:", dimAttrs, args[1]), canon[1])
	return errDiffer
}
