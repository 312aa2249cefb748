package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const PROMPT = "≈ "

// Start runs the shell on the terminal with line editing, history and
// completion of commands and unit symbols.
func Start(s *Session, out io.Writer, version string) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(s.Complete)

	historyFile := filepath.Join(os.TempDir(), ".caliper_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, "caliper", version)
	fmt.Fprintln(out, "Type ':help' for commands, 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "")

	for {
		input, err := line.Prompt(PROMPT)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if !evalLine(s, input, out) {
			fmt.Fprintln(out, "Goodbye!")
			return
		}
	}
}

// Run evaluates every line of in, for piped input. It stops at the first
// exit command.
func Run(s *Session, in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	for _, input := range strings.Split(string(data), "\n") {
		if !evalLine(s, input, out) {
			return nil
		}
	}
	return nil
}

// evalLine reports false once the session should end.
func evalLine(s *Session, input string, out io.Writer) bool {
	result, err := s.Eval(input)
	switch {
	case errors.Is(err, ErrExit):
		return false
	case err != nil:
		fmt.Fprintln(out, s.FormatError(err))
	case result != "":
		fmt.Fprintln(out, result)
	}
	return true
}
