package shell

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/drakeos/drakeos/internal/vpath"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

type command struct {
	run   func(i *Interpreter, verb string, args []string) Result
	usage string
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"cd":      {(*Interpreter).cd, "cd [dir]            change the shell directory"},
		"pwd":     {(*Interpreter).pwd, "pwd                 print the shell directory"},
		"ls":      {(*Interpreter).ls, "ls [-a|-l|-la] [dir] list a folder"},
		"ll":      {(*Interpreter).ls, "ll [dir]            long listing with hidden entries"},
		"cat":     {(*Interpreter).cat, "cat <file>...       print file contents"},
		"less":    {(*Interpreter).cat, "less <file>...      same as cat"},
		"more":    {(*Interpreter).cat, "more <file>...      same as cat"},
		"open":    {(*Interpreter).open, "open <path>         open a file window or folder"},
		"mkdir":   {(*Interpreter).readOnly, "mkdir <dir>         create a folder (not persisted)"},
		"touch":   {(*Interpreter).readOnly, "touch <file>        create a file (not persisted)"},
		"rm":      {(*Interpreter).readOnly, "rm <path>           remove a path (not persisted)"},
		"echo":    {(*Interpreter).echo, "echo [text]         print text"},
		"whoami":  {(*Interpreter).whoami, "whoami              print the user name"},
		"date":    {(*Interpreter).date, "date                print the date"},
		"history": {(*Interpreter).printHistory, "history             list previous commands"},
		"clear":   {(*Interpreter).clear, "clear               clear the terminal"},
		"help":    {(*Interpreter).help, "help                show this help"},
	}
}

// Commands returns the known verbs in sorted order.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (i *Interpreter) cd(verb string, args []string) Result {
	var target string
	switch {
	case len(args) == 0:
		target = i.cfg.Home
	case args[0] == "..":
		target = vpath.Parent(i.shellPath)
	case strings.HasPrefix(args[0], "/"):
		target = vpath.Normalize(args[0])
	default:
		target = i.expand(args[0])
	}

	// The working path is committed unchecked; a bad target shows up on the
	// next ls or cat.
	i.shellPath = target

	if i.nav != nil && target != i.nav.CurrentPath() && i.tree.Exists(target) {
		if err := i.nav.Navigate(target); err != nil {
			i.logger.Debug("desktop sync failed", zap.String("path", target), zap.Error(err))
		}
	}
	return Result{}
}

func (i *Interpreter) pwd(string, []string) Result {
	return lines(i.shellPath)
}

func (i *Interpreter) ls(verb string, args []string) Result {
	showHidden := verb == "ll"
	long := verb == "ll"
	var targets []string

	for _, arg := range args {
		if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			for _, f := range arg[1:] {
				switch f {
				case 'a':
					showHidden = true
				case 'l':
					long = true
				default:
					return fail(verb, arg, ErrInvalidOption)
				}
			}
			continue
		}
		targets = append(targets, arg)
	}

	if len(targets) <= 1 {
		var target string
		if len(targets) == 1 {
			target = targets[0]
		}
		out, err := i.listOne(verb, target, showHidden, long)
		if err != nil {
			return Result{Err: err}
		}
		return Result{Lines: out}
	}

	// Several operands are listed in turn under a "name:" header. The
	// first operand that cannot be listed is reported after the rest.
	var res Result
	res.Lines = []string{}
	for _, target := range targets {
		out, err := i.listOne(verb, target, showHidden, long)
		if err != nil {
			if res.Err == nil {
				res.Err = err
			}
			continue
		}
		if len(res.Lines) > 0 {
			res.Lines = append(res.Lines, "")
		}
		res.Lines = append(res.Lines, target+":")
		res.Lines = append(res.Lines, out...)
	}
	return res
}

func (i *Interpreter) listOne(verb, target string, showHidden, long bool) ([]string, error) {
	path := i.shellPath
	if target != "" {
		path = i.expand(target)
	}

	node := i.tree.GetNode(path)
	switch {
	case node == nil:
		return nil, &CommandError{Command: verb, Arg: displayArg(target, path), Err: vfs.ErrNotFound}
	case !node.IsFolder():
		return nil, &CommandError{Command: verb, Arg: displayArg(target, path), Err: vfs.ErrNotAFolder}
	}

	children := i.tree.ListChildren(path, showHidden)
	if long {
		return i.longListing(children), nil
	}
	if len(children) == 0 {
		return []string{}, nil
	}
	names := make([]string, len(children))
	for k, c := range children {
		names[k] = entryName(c)
	}
	return []string{strings.Join(names, "  ")}, nil
}

func (i *Interpreter) longListing(children []*vfs.Node) []string {
	sizes := make([]string, len(children))
	names := make([]string, len(children))
	sizeWidth, nameWidth := 0, 0
	for k, c := range children {
		sizes[k] = strconv.Itoa(nodeSize(c))
		names[k] = entryName(c)
		if len(sizes[k]) > sizeWidth {
			sizeWidth = len(sizes[k])
		}
		if w := runewidth.StringWidth(names[k]); w > nameWidth {
			nameWidth = w
		}
	}

	out := make([]string, 0, len(children)+1)
	out = append(out, fmt.Sprintf("total %d", len(children)))
	for k, c := range children {
		mode := "-rw-r--r--"
		if c.IsFolder() {
			mode = "drwxr-xr-x"
		}
		out = append(out, fmt.Sprintf("%s  %s  %*s  %s  %s",
			mode,
			i.cfg.User,
			sizeWidth, sizes[k],
			runewidth.FillRight(names[k], nameWidth),
			describeKind(c),
		))
	}
	return out
}

func (i *Interpreter) cat(verb string, args []string) Result {
	if len(args) == 0 {
		return fail(verb, "", ErrMissingOperand)
	}
	var out []string
	for _, arg := range args {
		node := i.tree.GetNode(i.expand(arg))
		var err error
		switch {
		case node == nil:
			err = vfs.ErrNotFound
		case node.IsFolder():
			err = vfs.ErrIsAFolder
		case !node.HasContent():
			err = vfs.ErrUnreadableContent
		}
		if err != nil {
			res := fail(verb, arg, err)
			res.Lines = out
			return res
		}
		out = append(out, strings.Split(node.Content, "\n")...)
	}
	return lines(out...)
}

func (i *Interpreter) open(verb string, args []string) Result {
	if len(args) == 0 {
		return fail(verb, "", ErrMissingOperand)
	}
	path := i.expand(args[0])
	node := i.tree.GetNode(path)
	if node == nil {
		return fail(verb, args[0], vfs.ErrNotFound)
	}

	if node.IsFolder() {
		if i.nav == nil {
			return fail(verb, args[0], ErrUnsupported)
		}
		if err := i.nav.Navigate(path); err != nil {
			return fail(verb, args[0], err)
		}
		return lines("Opening " + node.Name + "/")
	}

	opener, ok := i.nav.(Opener)
	if !ok {
		return fail(verb, args[0], ErrUnsupported)
	}
	if err := opener.OpenPath(path); err != nil {
		return fail(verb, args[0], err)
	}
	return lines("Opening " + node.Name)
}

func (i *Interpreter) readOnly(verb string, args []string) Result {
	if len(args) == 0 {
		return fail(verb, "", ErrMissingOperand)
	}
	out := make([]string, 0, len(args))
	for _, arg := range args {
		var action string
		switch verb {
		case "mkdir":
			action = "created directory"
		case "touch":
			action = "created file"
		default:
			action = "removed"
		}
		out = append(out, fmt.Sprintf("%s: %s '%s' (read-only filesystem, change not saved)", verb, action, arg))
	}
	return lines(out...)
}

func (i *Interpreter) echo(_ string, args []string) Result {
	return lines(strings.Join(args, " "))
}

func (i *Interpreter) whoami(string, []string) Result {
	return lines(i.cfg.User)
}

func (i *Interpreter) date(string, []string) Result {
	return lines(i.cfg.Now().Format("Mon Jan _2 15:04:05 MST 2006"))
}

func (i *Interpreter) printHistory(string, []string) Result {
	entries := i.history.Entries()
	out := make([]string, len(entries))
	for k, e := range entries {
		out[k] = fmt.Sprintf("%5d  %s", k+1, e)
	}
	return lines(out...)
}

func (i *Interpreter) clear(string, []string) Result {
	return Result{Clear: true}
}

func (i *Interpreter) help(string, []string) Result {
	out := []string{"Available commands:"}
	for _, name := range Commands() {
		out = append(out, "  "+commands[name].usage)
	}
	return lines(out...)
}

func entryName(n *vfs.Node) string {
	if n.IsFolder() {
		return n.Name + "/"
	}
	return n.Name
}

func nodeSize(n *vfs.Node) int {
	if n.IsFolder() {
		return len(n.Children)
	}
	return len(n.Content)
}

func describeKind(n *vfs.Node) string {
	switch {
	case n.IsFolder():
		return "folder"
	case n.FileType != "":
		return n.FileType
	case n.Extension() != "":
		return n.Extension()
	}
	return "file"
}

func displayArg(arg, path string) string {
	if arg != "" {
		return arg
	}
	return path
}
