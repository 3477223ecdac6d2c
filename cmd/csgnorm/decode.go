package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/csgtree/pkg/csg"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [flags] tree.msgpack",
		Short: "Print a tree written by normalize --out",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecode,
	}
	cmd.Flags().Bool("stats", false, "print node count and depth")
	return cmd
}

func runDecode(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	stats, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return fmt.Errorf("failed to get stats flag: %w", err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := csg.Decode(f, csg.TokenResolver)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, n)
	if stats {
		fmt.Fprintf(s.errOut, "%s %d\n", s.paint("nodes:", headerAttrs), n.Size())
		fmt.Fprintf(s.errOut, "%s %d\n", s.paint("depth:", headerAttrs), n.Depth())
	}
	return nil
}
