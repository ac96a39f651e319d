package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/profile"

	"github.com/sagelang/sage/config"
	"github.com/sagelang/sage/pkg/sage/checker"
	"github.com/sagelang/sage/pkg/sage/errors"
	"github.com/sagelang/sage/pkg/sage/evaluator"
	"github.com/sagelang/sage/pkg/sage/lexer"
	"github.com/sagelang/sage/pkg/sage/parser"
	"github.com/sagelang/sage/pkg/sage/repl"
	"github.com/sagelang/sage/pkg/sage/session"
)

// Version is set at compile time via -ldflags
var Version = "0.3.0"

var (
	// Display flags
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")
	noColorFlag     = flag.Bool("no-color", false, "Disable colored output")

	// Evaluation flags
	evalFlag     = flag.String("e", "", "Evaluate code string")
	evalLongFlag = flag.String("eval", "", "Evaluate code string")
	checkFlag    = flag.Bool("check", false, "Parse and type-check without executing")
	replFlag     = flag.Bool("repl", false, "Start the interactive REPL")
	watchFlag    = flag.Bool("watch", false, "Re-run the script whenever it changes")
	varsFlag     = flag.Bool("vars", false, "Dump session variables after a successful run")

	// Host flags
	configFlag  = flag.String("config", "", "Path to config file")
	profileFlag = flag.String("profile", "", "Write a profile: cpu, mem, or trace")
)

var (
	errorHeading = color.New(color.FgRed, color.Bold)
	warnHeading  = color.New(color.FgYellow, color.Bold)
	hintText     = color.New(color.FgCyan)
	caretMark    = color.New(color.FgGreen, color.Bold)
)

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag || *versionLongFlag {
		fmt.Printf("sage version %s\n", Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFlag, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	for _, warning := range config.Warnings(cfg) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	applyColorMode(cfg.Output.Color, *noColorFlag)

	// Prefer -e over --eval if both are set
	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLongFlag
	}

	switch {
	case evalCode != "":
		os.Exit(runWithProfile(*profileFlag, func() int {
			return executeInline(evalCode, cfg)
		}))

	case *checkFlag:
		files := flag.Args()
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --check requires at least one file")
			os.Exit(2)
		}
		os.Exit(checkFiles(files))

	case *watchFlag:
		files := flag.Args()
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --watch requires a script file")
			os.Exit(2)
		}
		if err := watchFile(files[0], cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case *replFlag || len(flag.Args()) == 0:
		startREPL(cfg)

	default:
		filename := flag.Args()[0]
		os.Exit(runWithProfile(*profileFlag, func() int {
			return executeFile(filename, cfg)
		}))
	}
}

func printHelp() {
	fmt.Printf(`sage - Sage language interpreter version %s

Usage:
  sage [options] [file]
  sage -e "code"
  sage --check <file>...
  sage --watch <file>

Display Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  --no-color            Disable colored output

Evaluation Options:
  -e, --eval <code>     Evaluate code string and print the result
  --check               Parse and type-check without executing
  --repl                Start the interactive REPL (default with no file)
  --watch               Re-run the script whenever it changes on disk
  --vars                Dump session variables after a successful run

Host Options:
  --config <path>       Config file (default: SAGE_CONFIG, ./sage.yaml,
                        ~/.config/sage/sage.yaml)
  --profile <mode>      Write a profile to the current directory:
                        cpu, mem, or trace

Examples:
  sage                        Start interactive REPL
  sage script.sage            Execute a Sage script
  sage -e "1 + 2"             Evaluate inline code (outputs: 3)
  sage -e "let x: int = 5; x" Declarations persist within a run
  sage --check script.sage    Report diagnostics without executing
  sage --check *.sage         Check multiple files
  sage --watch script.sage    Re-run on every save
  sage --vars script.sage     Show final variable bindings
`, Version)
}

// applyColorMode resolves the config color setting and the --no-color
// flag into the global color toggle. "auto" keeps TTY detection.
func applyColorMode(mode string, noColor bool) {
	if noColor {
		color.NoColor = true
		return
	}
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}
}

// runWithProfile wraps a run with the requested profiler, if any.
func runWithProfile(mode string, run func() int) int {
	if mode == "" {
		return run()
	}
	stop, err := startProfiler(mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer stop.Stop()
	return run()
}

func startProfiler(mode string) (interface{ Stop() }, error) {
	switch mode {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(".")), nil
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath(".")), nil
	case "trace":
		return profile.Start(profile.TraceProfile, profile.ProfilePath(".")), nil
	default:
		return nil, fmt.Errorf("unknown profile mode %q (use cpu, mem, or trace)", mode)
	}
}

func startREPL(cfg *config.Config) {
	opts := repl.DefaultOptions()
	if cfg.REPL.Prompt != "" {
		opts.Prompt = cfg.REPL.Prompt
	}
	if cfg.REPL.HistoryFile != "" {
		opts.HistoryFile = cfg.REPL.HistoryFile
	}
	opts.HistorySize = cfg.REPL.HistorySize
	repl.StartWithOptions(os.Stdin, os.Stdout, Version, opts)
}

// executeInline evaluates code provided via -e and echoes the result.
func executeInline(code string, cfg *config.Config) int {
	sess := session.New()
	sess.Filename = "<eval>"
	result := sess.Execute(code)

	for _, line := range result.Output {
		fmt.Println(line)
	}

	if len(result.Diagnostics) > 0 {
		printDiagnostics(code, result.Diagnostics)
		return 1
	}
	if result.Err != nil {
		printRuntimeFault(code, result.Err)
		return 1
	}

	if result.Value != nil && result.Value != evaluator.NULL {
		fmt.Println(renderValue(result.Value, cfg.Output.FloatPrecision))
	}

	if *varsFlag {
		printVariables(sess)
	}
	return 0
}

// executeFile reads and executes a Sage source file. Script output goes
// to stdout, diagnostics and faults to stderr.
func executeFile(filename string, cfg *config.Config) int {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", filename, err)
		return 1
	}
	source := string(content)

	sess := session.New()
	sess.Filename = filename
	result := sess.Execute(source)

	for _, line := range result.Output {
		fmt.Println(line)
	}

	if len(result.Diagnostics) > 0 {
		printDiagnostics(source, result.Diagnostics)
		return 1
	}
	if result.Err != nil {
		printRuntimeFault(source, result.Err)
		return 1
	}

	if *varsFlag {
		printVariables(sess)
	}
	return 0
}

// checkFiles parses and type-checks files without executing them.
// Returns 0 on success, 1 for diagnostics, 2 for file errors.
func checkFiles(files []string) int {
	hasDiagnostics := false

	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
			return 2
		}
		source := string(content)

		l := lexer.NewWithFilename(source, filename)
		p := parser.New(l)
		program := p.ParseProgram()

		diags := p.Diagnostics()
		if len(diags) == 0 {
			c := checker.New()
			diags = c.Check(program)
		}

		if len(diags) > 0 {
			stamped := make([]*errors.SageError, len(diags))
			for i, d := range diags {
				stamped[i] = d.WithFile(filename)
			}
			printDiagnostics(source, stamped)
			hasDiagnostics = true
		}
	}

	if hasDiagnostics {
		return 1
	}
	return 0
}

// renderValue formats a result value for echoing, honoring the
// configured float precision.
func renderValue(obj evaluator.Object, precision int) string {
	if f, ok := obj.(*evaluator.Float); ok && precision >= 0 {
		return strconv.FormatFloat(f.Value, 'f', precision, 64)
	}
	return obj.Inspect()
}

// printVariables dumps the session's variable bindings.
func printVariables(sess *session.Session) {
	vars := sess.Variables()
	if len(vars) == 0 {
		fmt.Println("(no variables)")
		return
	}
	for _, v := range vars {
		if v.Mutable {
			fmt.Printf("%s: %s = %s\n", v.Name, v.Type, v.Value)
		} else {
			fmt.Printf("%s: %s = %s (const)\n", v.Name, v.Type, v.Value)
		}
	}
}

// printDiagnostics prints parse and type diagnostics with source context.
func printDiagnostics(source string, diags []*errors.SageError) {
	lines := strings.Split(source, "\n")
	for _, d := range diags {
		printReport(lines, headingFor(d), d)
	}
}

// printRuntimeFault prints a runtime fault with source context.
func printRuntimeFault(source string, fault *errors.SageError) {
	lines := strings.Split(source, "\n")
	printReport(lines, "Runtime error", fault)
}

func headingFor(d *errors.SageError) string {
	switch d.Class {
	case errors.ClassLexical:
		return "Lexical error"
	case errors.ClassParse:
		return "Syntax error"
	case errors.ClassType:
		return "Type error"
	default:
		return "Error"
	}
}

func printReport(lines []string, heading string, d *errors.SageError) {
	headingColor := errorHeading
	if d.Severity == errors.SeverityWarning {
		headingColor = warnHeading
		heading = "Warning"
	}
	headingColor.Fprint(os.Stderr, heading)

	if d.File != "" {
		fmt.Fprintf(os.Stderr, " in %s", d.File)
	}
	if d.Line > 0 {
		fmt.Fprintf(os.Stderr, ": line %d, column %d", d.Line, d.Column)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "  %s\n", d.Message)

	for _, hint := range d.Hints {
		hintText.Fprintf(os.Stderr, "  hint: %s\n", hint)
	}

	if d.Line > 0 {
		printSourceContext(lines, d.Line, d.Column)
	}
}

// printSourceContext prints the source line and a pointer to the error
// position, accounting for leading whitespace and tab width.
func printSourceContext(lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := lines[lineNum-1]

	// Calculate how many columns the leading whitespace occupies
	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == ' ' {
			trimCount++
		} else if sourceLine[i] == '\t' {
			trimCount += 8
		} else {
			break
		}
	}

	trimmedLine := strings.TrimLeft(sourceLine, " \t")
	fmt.Fprintf(os.Stderr, "    %s\n", trimmedLine)

	if colNum > 0 {
		// Visual column accounting for tabs up to the error position
		visualCol := 0
		for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += 8
			} else {
				visualCol++
			}
		}

		adjustedCol := max(visualCol-trimCount, 0)
		fmt.Fprint(os.Stderr, "    "+strings.Repeat(" ", adjustedCol))
		caretMark.Fprintln(os.Stderr, "^")
	}
}
