package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chazu/csgtree/pkg/csg"
	"github.com/chazu/csgtree/pkg/engine"
	"github.com/chazu/csgtree/pkg/logging"
)

// session carries what every subcommand needs: the decoded config, a logger
// and the output streams.
type session struct {
	mu     sync.Mutex // guards errOut while loads run concurrently
	cfg    csg.Config
	log    logrus.FieldLogger
	out    io.Writer
	errOut io.Writer
	color  bool
}

func newSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Root().PersistentFlags()

	cfg := csg.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		if cfg, err = csg.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	level, _ := flags.GetString("log-level")
	logger, err := logging.NewLoggerWithCommand(cmd.ErrOrStderr(), cmd.Name(), level)
	if err != nil {
		return nil, err
	}

	colorFlag, _ := flags.GetString("color")
	useColor, err := colorEnabled(colorFlag, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:    cfg,
		log:    logger,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		color:  useColor,
	}, nil
}

// colorEnabled resolves the --color flag. "auto" colors only terminals.
func colorEnabled(flag string, w io.Writer) (bool, error) {
	switch flag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("invalid --color %q, expected auto, on or off", flag)
	}
}

// paint formats text in the given attributes when color is enabled.
func (s *session) paint(format string, attrs []color.Attribute, a ...any) string {
	c := color.New(attrs...)
	if s.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprintf(format, a...)
}

var (
	headerAttrs = []color.Attribute{color.FgCyan, color.Bold}
	okAttrs     = []color.Attribute{color.FgGreen, color.Bold}
	badAttrs    = []color.Attribute{color.FgRed, color.Bold}
	dimAttrs    = []color.Attribute{color.Faint}
)

// newTree wraps root in a Tree configured from the session.
func (s *session) newTree(root *csg.Node) (*csg.Tree, error) {
	return csg.NewTree(root, csg.WithConfig(s.cfg), csg.WithLogger(s.log))
}

// load reads a tree from path. Files ending in .msgpack are decoded as
// encoded trees whose leaves become opaque tokens; anything else is
// evaluated as a program.
func (s *session) load(path string) (*csg.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".msgpack") {
		return csg.Decode(bytes.NewReader(data), csg.TokenResolver)
	}

	root, evalErrs, err := engine.NewEngine().Evaluate(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, e := range evalErrs {
			loc := path
			if e.Line > 0 {
				loc = fmt.Sprintf("%s:%d", path, e.Line)
			}
			fmt.Fprintf(s.errOut, "%s %s\n", s.paint("%s:", badAttrs, loc), e.Message)
		}
		return nil, fmt.Errorf("%s: %d evaluation error(s)", path, len(evalErrs))
	}
	s.log.WithFields(logrus.Fields{
		"file":  path,
		"nodes": root.Size(),
	}).Debug("loaded tree")
	return root, nil
}

// reportNotConverged prints the partial rewrite carried by a
// *csg.NotConvergedError before the error itself is returned.
func (s *session) reportNotConverged(err error) {
	var nc *csg.NotConvergedError
	if errors.As(err, &nc) && nc.Partial != nil {
		fmt.Fprintln(s.errOut, s.paint("partial:", dimAttrs), nc.Partial)
	}
}
