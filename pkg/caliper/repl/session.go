// Package repl implements the interactive conversion shell.
package repl

import (
	stderrors "errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
	"github.com/sambeau/caliper/pkg/caliper/format"
	"github.com/sambeau/caliper/pkg/caliper/numeric"
	"github.com/sambeau/caliper/pkg/caliper/quantity"
	"github.com/sambeau/caliper/pkg/caliper/unit"
)

// ErrExit is returned by Eval when the user asks to leave the shell.
var ErrExit = stderrors.New("exit")

// Commands understood by Eval, used for completion and help.
var commands = []string{
	"convert", "factor", "base", "info", "list", "multiply", "divide", "exit", "quit", ":help",
}

const helpText = `Commands:
  convert <amount> <from> <to>   Convert an amount between units
  <amount> <from> to <to>        Same as convert
  factor <from> <to>             Show the conversion factor
  base <symbol>                  Show the base symbol of a unit
  info <symbol>                  Describe a unit
  list [type]                    List units, optionally of one type
  multiply <a> <b>               Define the product unit a·b
  divide <a> <b>                 Define the quotient unit a/b
  :help, :h, :?                  Show this help
  exit, quit                     Leave the shell`

// Session evaluates shell commands against a registry.
type Session struct {
	registry  *unit.Registry
	formatter *format.Formatter
}

// NewSession returns a session over reg. A nil formatter formats English
// amounts at full precision.
func NewSession(reg *unit.Registry, f *format.Formatter) *Session {
	if f == nil {
		f = format.NewFormatter(language.English, -1)
	}
	return &Session{registry: reg, formatter: f}
}

// Eval runs one line and returns its output. An empty line yields no
// output.
func (s *Session) Eval(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "exit", "quit":
		return "", ErrExit
	case ":help", ":h", ":?", "help":
		return helpText, nil
	case "convert":
		if len(args) != 3 {
			return "", usage("convert <amount> <from> <to>")
		}
		return s.convert(args[0], args[1], args[2])
	case "factor":
		if len(args) != 2 {
			return "", usage("factor <from> <to>")
		}
		return s.factor(args[0], args[1])
	case "base":
		if len(args) != 1 {
			return "", usage("base <symbol>")
		}
		return s.base(args[0])
	case "info":
		if len(args) != 1 {
			return "", usage("info <symbol>")
		}
		u, err := s.registry.Lookup(args[0])
		if err != nil {
			return "", err
		}
		return u.Describe(), nil
	case "list":
		if len(args) > 1 {
			return "", usage("list [type]")
		}
		return s.list(args)
	case "multiply", "divide":
		if len(args) != 2 {
			return "", usage(cmd + " <a> <b>")
		}
		return s.compose(cmd, args[0], args[1])
	}

	// <amount> <from> to|in <to>
	if len(fields) == 4 && (fields[2] == "to" || fields[2] == "in") {
		return s.convert(fields[0], fields[1], fields[3])
	}
	return "", fmt.Errorf("unknown command %q (type :help for commands)", fields[0])
}

func usage(form string) error {
	return fmt.Errorf("usage: %s", form)
}

func (s *Session) convert(amount, from, to string) (string, error) {
	q, err := quantity.NewFromString(s.registry, amount, from)
	if err != nil {
		return "", err
	}
	target, err := s.registry.Lookup(to)
	if err != nil {
		return "", err
	}
	result, err := q.Convert(target)
	if err != nil {
		return "", err
	}
	return s.formatter.Quantity(q) + " = " + s.formatter.Quantity(result), nil
}

func (s *Session) factor(from, to string) (string, error) {
	a, err := s.registry.Lookup(from)
	if err != nil {
		return "", err
	}
	b, err := s.registry.Lookup(to)
	if err != nil {
		return "", err
	}
	f, err := a.ConversionFactor(b)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("1 %s = %s %s", a, f, b), nil
}

func (s *Session) base(symbol string) (string, error) {
	u, err := s.registry.Lookup(symbol)
	if err != nil {
		return "", err
	}
	red, err := unit.Reduce(u)
	if err != nil {
		return "", err
	}
	if red.Scale.Equal(numeric.One) {
		return red.BaseSymbol(), nil
	}
	return fmt.Sprintf("%s (× %s)", red.BaseSymbol(), red.Scale), nil
}

func (s *Session) list(args []string) (string, error) {
	var filter unit.Type
	if len(args) == 1 {
		filter = unit.Type(strings.ToUpper(args[0]))
		if !filter.Known() {
			return "", cerrors.New("CONF-0001", map[string]any{"Type": args[0]})
		}
	}
	var sb strings.Builder
	for _, u := range s.registry.Units() {
		if filter != "" && u.Type() != filter {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(u.Describe())
	}
	if sb.Len() == 0 {
		return "(no units)", nil
	}
	return sb.String(), nil
}

func (s *Session) compose(op, a, b string) (string, error) {
	left, err := s.registry.Lookup(a)
	if err != nil {
		return "", err
	}
	right, err := s.registry.Lookup(b)
	if err != nil {
		return "", err
	}
	var u *unit.Unit
	if op == "multiply" {
		u, err = left.Multiply(right)
	} else {
		u, err = left.Divide(right)
	}
	if err != nil {
		return "", err
	}
	return u.Describe(), nil
}

// Complete returns the commands and unit symbols that start with the last
// word of line.
func (s *Session) Complete(line string) []string {
	if strings.TrimSpace(line) == "" || strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
		return nil
	}
	words := strings.Fields(line)
	last := words[len(words)-1]
	prefix := line[:len(line)-len(last)]

	candidates := s.registry.Symbols()
	if len(words) == 1 {
		candidates = append(append([]string(nil), commands...), candidates...)
	}
	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, last) {
			matches = append(matches, prefix+c)
		}
	}
	return matches
}

// FormatError renders err for display, translating library errors into
// the formatter's locale.
func (s *Session) FormatError(err error) string {
	var ce *cerrors.CaliperError
	if !stderrors.As(err, &ce) {
		return "Error: " + err.Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error [%s]: %s", ce.Code, ce.Localize(s.formatter.Tag()))
	for _, hint := range ce.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}
	return sb.String()
}
