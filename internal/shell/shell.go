// Package shell implements the command interpreter that runs against the
// virtual tree. It keeps its own working path, separate from the desktop's
// current folder, and syncs the desktop when cd lands on an existing path.
package shell

import (
	"strings"
	"time"

	"github.com/drakeos/drakeos/internal/metrics"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/drakeos/drakeos/internal/vpath"
	"go.uber.org/zap"
)

// Navigator is the desktop side of the shell: it knows the desktop's
// current folder and can move it.
type Navigator interface {
	CurrentPath() string
	Navigate(path string) error
}

// Opener is implemented by navigators that can also open file windows.
type Opener interface {
	OpenPath(path string) error
}

// Config holds the identity the shell presents.
type Config struct {
	Home     string
	User     string
	Hostname string
	Now      func() time.Time
}

func (c *Config) setDefaults() {
	if c.Home == "" {
		c.Home = "/home/drake"
	}
	c.Home = vpath.Normalize(c.Home)
	if c.User == "" {
		c.User = "drake"
	}
	if c.Hostname == "" {
		c.Hostname = "drakeos"
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Result is the outcome of one submitted line.
type Result struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	Lines   []string `json:"lines"`
	Err     error    `json:"-"`
	// Clear asks the front end to wipe its output.
	Clear bool `json:"clear,omitempty"`
}

// Output returns the lines to print, with the error line last.
func (r Result) Output() []string {
	if r.Err == nil {
		return r.Lines
	}
	out := make([]string, 0, len(r.Lines)+1)
	out = append(out, r.Lines...)
	return append(out, r.Err.Error())
}

// Interpreter executes command lines. It is not safe for concurrent use.
type Interpreter struct {
	tree      *vfs.Tree
	nav       Navigator
	cfg       Config
	shellPath string
	history   History
	logger    *zap.Logger
}

// New creates an interpreter over tree starting in the home folder. nav may
// be nil, in which case cd never syncs a desktop.
func New(tree *vfs.Tree, nav Navigator, cfg Config, logger *zap.Logger) *Interpreter {
	cfg.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{
		tree:      tree,
		nav:       nav,
		cfg:       cfg,
		shellPath: cfg.Home,
		logger:    logger,
	}
}

// SetTree swaps in a freshly loaded tree. The working path and history are
// kept.
func (i *Interpreter) SetTree(tree *vfs.Tree) {
	i.tree = tree
}

// Path returns the shell's working path.
func (i *Interpreter) Path() string {
	return i.shellPath
}

// History returns the command history.
func (i *Interpreter) History() *History {
	return &i.history
}

// Prompt returns the prompt string, e.g. "drake@drakeos:~/Projects$ ".
func (i *Interpreter) Prompt() string {
	return i.cfg.User + "@" + i.cfg.Hostname + ":" + i.DisplayPath(i.shellPath) + "$ "
}

// DisplayPath abbreviates the home folder to "~".
func (i *Interpreter) DisplayPath(p string) string {
	home := i.cfg.Home
	switch {
	case p == home:
		return "~"
	case home != vpath.Root && strings.HasPrefix(p, home+"/"):
		return "~" + p[len(home):]
	}
	return p
}

// Execute runs one line. Blank lines are ignored and not recorded; any
// other line is recorded exactly as typed.
func (i *Interpreter) Execute(line string) Result {
	if strings.TrimSpace(line) == "" {
		return Result{}
	}
	i.history.Add(line)

	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	cmd, ok := commands[verb]
	if !ok {
		metrics.RecordCommand("unknown", false)
		i.logger.Debug("unknown command", zap.String("command", verb))
		return Result{
			Command: verb,
			Args:    args,
			Err:     &CommandError{Command: verb, Err: ErrUnknownCommand},
		}
	}

	res := cmd.run(i, verb, args)
	res.Command = verb
	res.Args = args
	metrics.RecordCommand(verb, res.Err == nil)
	if res.Err != nil {
		i.logger.Debug("command failed",
			zap.String("command", verb),
			zap.Strings("args", args),
			zap.Error(res.Err),
		)
	}
	return res
}

// expand resolves an argument against the working path, honouring "~".
func (i *Interpreter) expand(arg string) string {
	switch {
	case arg == "~":
		return i.cfg.Home
	case strings.HasPrefix(arg, "~/"):
		return vpath.Resolve(i.cfg.Home, arg[2:])
	}
	return vpath.Resolve(i.shellPath, arg)
}

func fail(verb, arg string, err error) Result {
	return Result{Err: &CommandError{Command: verb, Arg: arg, Err: err}}
}

func lines(ls ...string) Result {
	return Result{Lines: ls}
}
