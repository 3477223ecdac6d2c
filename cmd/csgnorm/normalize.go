package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/csgtree/pkg/csg"
	"github.com/chazu/csgtree/pkg/kernel"
	"github.com/chazu/csgtree/pkg/kernel/sdfx"
)

func newNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [flags] file.lisp",
		Short: "Rewrite a CSG program into canonical form",
		Long: `Normalize evaluates a program, rewrites its tree to a fixed point and
prints the canonical form. With --verify the input and output solids are
sampled on a grid and compared point by point.`,
		Args: cobra.ExactArgs(1),
		RunE: runNormalize,
	}
	cmd.Flags().String("out", "", "write the canonical tree to this msgpack file")
	cmd.Flags().Bool("stats", false, "print node counts and depth before and after")
	cmd.Flags().Int("verify", 0, "sample the solids on an NxNxN grid and check they agree (0 disables)")
	return cmd
}

func runNormalize(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	stats, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return fmt.Errorf("failed to get stats flag: %w", err)
	}
	samples, err := cmd.Flags().GetInt("verify")
	if err != nil {
		return fmt.Errorf("failed to get verify flag: %w", err)
	}

	root, err := s.load(args[0])
	if err != nil {
		return err
	}
	var before *csg.Node
	if samples > 0 {
		before = root.Clone()
	}
	sizeBefore, depthBefore := root.Size(), root.Depth()

	t, err := s.newTree(root)
	if err != nil {
		return err
	}
	if err := t.NormalizeRoot(); err != nil {
		s.reportNotConverged(err)
		return err
	}
	out := t.Root()
	fmt.Fprintln(s.out, out)

	if stats {
		fmt.Fprintf(s.errOut, "%s %d -> %d\n", s.paint("nodes:", headerAttrs), sizeBefore, out.Size())
		fmt.Fprintf(s.errOut, "%s %d -> %d\n", s.paint("depth:", headerAttrs), depthBefore, out.Depth())
	}

	if samples > 0 {
		if err := kernel.Verify(sdfx.New(), before, out, samples); err != nil {
			fmt.Fprintln(s.errOut, s.paint("verify: FAILED", badAttrs))
			return err
		}
		fmt.Fprintf(s.errOut, "%s %d³ samples agree\n", s.paint("verify: ok", okAttrs), samples)
	}

	if outPath != "" {
		if err := writeTree(outPath, out); err != nil {
			return err
		}
		s.log.WithField("file", outPath).Info("wrote canonical tree")
	}
	return nil
}

// writeTree encodes n to a new file at path.
func writeTree(path string, n *csg.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csg.Encode(f, n); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
