package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/sagelang/sage/pkg/sage/errors"
	"github.com/sagelang/sage/pkg/sage/evaluator"
	"github.com/sagelang/sage/pkg/sage/session"
)

const PROMPT = ">> "
const CONTINUATION_PROMPT = ".. "

const SAGE_LOGO = `
█▀ ▄▀█ █▀▀ █▀▀
▄█ █▀█ █▄█ ██▄ `

// Sage keywords and type names for tab completion. Builtins and
// user-defined names come from the live session.
var completionWords = []string{
	"let", "const", "func", "return", "if", "else", "while", "for",
	"int", "float", "string", "bool", "char", "void", "any", "Array",
	"true", "false", "null",
}

// Options configures the interactive loop.
type Options struct {
	Prompt      string // Main prompt
	HistoryFile string // History file path, empty disables persistence
	HistorySize int    // Maximum history entries loaded, 0 disables persistence
}

// DefaultOptions returns the options used when no host configuration
// is present.
func DefaultOptions() Options {
	return Options{
		Prompt:      PROMPT,
		HistoryFile: filepath.Join(os.TempDir(), ".sage_history"),
		HistorySize: 1000,
	}
}

// Start runs the interactive loop with the default options.
func Start(in io.Reader, out io.Writer, version string) {
	StartWithOptions(in, out, version, DefaultOptions())
}

// StartWithOptions runs the interactive loop with line editing, history,
// and tab completion. State accumulates in a single session until :clear.
func StartWithOptions(in io.Reader, out io.Writer, version string, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	if opts.Prompt == "" {
		opts.Prompt = PROMPT
	}

	sess := session.New()

	line.SetCompleter(func(line string) []string {
		return filterCompletions(line, sess.Identifiers())
	})

	persistHistory := opts.HistoryFile != "" && opts.HistorySize > 0
	if persistHistory {
		loadHistory(line, opts.HistoryFile, opts.HistorySize)
		defer func() {
			if f, err := os.Create(opts.HistoryFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Fprintf(out, "%s", SAGE_LOGO)
	fmt.Fprintln(out, "v", version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		currentPrompt := opts.Prompt
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C clears any buffered input and returns to the main prompt
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			if quit := handleReplCommand(trimmed, sess, out); quit {
				return
			}
			continue
		}

		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}

		if trimmed != "" {
			line.AppendHistory(fullInput)
		}

		result := sess.Execute(fullInput)
		printResult(out, result)

		inputBuffer.Reset()
	}
}

// loadHistory reads at most limit entries from the history file into
// the editor, keeping the most recent ones.
func loadHistory(line *liner.State, path string, limit int) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	for _, entry := range lines {
		if strings.TrimSpace(entry) != "" {
			line.AppendHistory(entry)
		}
	}
}

// printResult writes one execution's output, diagnostics, fault, and
// result value.
func printResult(out io.Writer, result *session.Result) {
	for _, line := range result.Output {
		io.WriteString(out, line)
		io.WriteString(out, "\n")
	}

	if len(result.Diagnostics) > 0 {
		printDiagnostics(out, result.Diagnostics)
		return
	}
	if result.Err != nil {
		io.WriteString(out, result.Err.PrettyString())
		io.WriteString(out, "\n")
		return
	}

	if result.Value != nil && result.Value != evaluator.NULL {
		io.WriteString(out, result.Value.Inspect())
		io.WriteString(out, "\n")
	}
}

// handleReplCommand handles meta-commands that start with ':'.
// Returns true when the REPL should exit.
func handleReplCommand(cmd string, sess *session.Session, out io.Writer) bool {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "REPL Commands:")
		fmt.Fprintln(out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(out, "  :env            Show variables and functions in scope")
		fmt.Fprintln(out, "  :clear          Discard all variables and functions")
		fmt.Fprintln(out, "  :quit           Exit the REPL")
		fmt.Fprintln(out, "  exit, quit      Exit the REPL")
		return false

	case ":env":
		printEnvironment(sess, out)
		return false

	case ":clear":
		sess.Reset()
		fmt.Fprintln(out, "Environment cleared")
		return false

	case ":quit", ":q":
		fmt.Fprintln(out, "Goodbye!")
		return true

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", cmd)
		return false
	}
}

// printEnvironment lists the session's variables and functions.
func printEnvironment(sess *session.Session, out io.Writer) {
	vars := sess.Variables()
	fns := sess.Functions()
	if len(vars) == 0 && len(fns) == 0 {
		fmt.Fprintln(out, "(empty environment)")
		return
	}

	for _, v := range vars {
		value := v.Value
		if len(value) > 60 {
			value = value[:57] + "..."
		}
		if v.Mutable {
			fmt.Fprintf(out, "  %s: %s = %s\n", v.Name, v.Type, value)
		} else {
			fmt.Fprintf(out, "  %s: %s = %s (const)\n", v.Name, v.Type, value)
		}
	}
	for _, fn := range fns {
		fmt.Fprintf(out, "  %s\n", fn.Signature)
	}
}

// filterCompletions returns completion suggestions for the word being
// typed, drawn from keywords plus the session's identifiers.
func filterCompletions(line string, identifiers []string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
		return nil
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}
	lastWord := words[len(words)-1]

	seen := make(map[string]bool)
	var matches []string
	for _, word := range completionWords {
		if strings.HasPrefix(word, lastWord) && !seen[word] {
			seen[word] = true
			matches = append(matches, word)
		}
	}
	for _, word := range identifiers {
		if strings.HasPrefix(word, lastWord) && !seen[word] {
			seen[word] = true
			matches = append(matches, word)
		}
	}
	return matches
}

// needsMoreInput checks if the input has unclosed braces, brackets, or
// parentheses, ignoring those inside string and char literals.
func needsMoreInput(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	braceCount := 0
	bracketCount := 0
	parenCount := 0
	inString := false
	inChar := false
	escapeNext := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if ch == '\\' {
			escapeNext = true
			continue
		}

		if ch == '"' && !inChar {
			inString = !inString
			continue
		}
		if ch == '\'' && !inString {
			inChar = !inChar
			continue
		}
		if inString || inChar {
			continue
		}

		switch ch {
		case '{':
			braceCount++
		case '}':
			braceCount--
		case '[':
			bracketCount++
		case ']':
			bracketCount--
		case '(':
			parenCount++
		case ')':
			parenCount--
		}
	}

	return braceCount > 0 || bracketCount > 0 || parenCount > 0
}

// printDiagnostics writes parser and checker diagnostics.
func printDiagnostics(out io.Writer, diags []*errors.SageError) {
	for _, d := range diags {
		io.WriteString(out, d.PrettyString())
		io.WriteString(out, "\n")
	}
}
