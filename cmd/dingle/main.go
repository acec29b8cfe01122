// Command dingle runs, checks and formats Dinglebob programs, and hosts the
// interactive REPL.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dinglebob/dingle/pkg/config"
	"github.com/dinglebob/dingle/pkg/diagnostics"
	"github.com/dinglebob/dingle/pkg/formatter"
	"github.com/dinglebob/dingle/pkg/help"
	"github.com/dinglebob/dingle/pkg/session"
)

const version = "0.3.0"

type RunCmd struct {
	File string `arg:"positional,required" help:"program to run, or - for stdin"`
}

type CheckCmd struct {
	File string `arg:"positional,required" help:"program to check, or - for stdin"`
}

type FmtCmd struct {
	File  string `arg:"positional,required" help:"program to format, or - for stdin"`
	Write bool   `arg:"-w,--write" help:"rewrite the file in place"`
}

type ReplCmd struct{}

type HelpCmd struct {
	Topic string `arg:"positional" help:"topic name or unique prefix"`
	Index bool   `arg:"--index" help:"list the built-in functions"`
}

type Args struct {
	Run   *RunCmd   `arg:"subcommand:run" help:"run a program"`
	Check *CheckCmd `arg:"subcommand:check" help:"report static errors without running"`
	Fmt   *FmtCmd   `arg:"subcommand:fmt" help:"print a program in canonical form"`
	Repl  *ReplCmd  `arg:"subcommand:repl" help:"start the interactive prompt"`
	Help  *HelpCmd  `arg:"subcommand:help" help:"show language help"`

	Config   string `arg:"--config,env:DINGLE_CONFIG" help:"config file path"`
	JSON     bool   `arg:"--json" help:"emit diagnostics as JSON"`
	NoColor  bool   `arg:"--no-color" help:"disable colored diagnostics"`
	LogLevel string `arg:"--log-level,env:DINGLE_LOG_LEVEL" help:"debug, info, warn or error"`
}

func (Args) Description() string {
	return "dingle runs Dinglebob programs. With a bare file it runs it; with no arguments it starts the REPL."
}

func (Args) Version() string {
	return "dingle " + version
}

var commands = []string{"run", "check", "fmt", "repl", "help"}

// flags that consume the following argument
var valueFlags = map[string]bool{"--config": true, "--log-level": true}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// withDefaultCommand turns `dingle file.dingle` into `dingle run file.dingle`
// and a bare `dingle` into `dingle repl`.
func withDefaultCommand(args []string) []string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if valueFlags[a] {
			i++
			continue
		}
		if a == "-h" || a == "--help" || a == "--version" {
			return args
		}
		if strings.HasPrefix(a, "-") && a != "-" {
			continue
		}
		for _, c := range commands {
			if a == c {
				return args
			}
		}
		out := append([]string{}, args[:i]...)
		out = append(out, "run")
		return append(out, args[i:]...)
	}
	return append(append([]string{}, args...), "repl")
}

func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var args Args
	p, err := arg.NewParser(arg.Config{Program: "dingle"}, &args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return session.ExitUsage
	}
	switch err := p.Parse(withDefaultCommand(argv)); {
	case err == arg.ErrHelp:
		p.WriteHelp(stdout)
		return session.ExitOK
	case err == arg.ErrVersion:
		fmt.Fprintln(stdout, args.Version())
		return session.ExitOK
	case err != nil:
		p.WriteUsage(stderr)
		fmt.Fprintf(stderr, "error: %s\n", err)
		return session.ExitUsage
	}

	if args.Help != nil {
		return cmdHelp(args.Help, stdout, stderr)
	}

	cfg, err := loadConfig(&args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return session.ExitUsage
	}
	level, _ := cfg.LogLevel()
	logger := newLogger(level, stderr)
	defer logger.Sync() //nolint:errcheck

	sess := session.New(
		session.WithStdout(stdout),
		session.WithStderr(stderr),
		session.WithLogger(logger),
		session.WithDiagOptions(diagnostics.Options{JSON: cfg.Diagnostics.JSON, Color: cfg.Diagnostics.Color}),
	)

	switch {
	case args.Run != nil:
		return cmdRun(sess, args.Run.File, stdin, stderr)
	case args.Check != nil:
		return cmdCheck(sess, args.Check.File, cfg.Diagnostics.JSON, stdin, stdout, stderr)
	case args.Fmt != nil:
		return cmdFmt(sess, args.Fmt, stdin, stdout, stderr)
	default:
		return cmdRepl(sess, cfg, logger, stdout, stderr)
	}
}

// loadConfig reads the config file and layers the environment and flags over it.
func loadConfig(args *Args) (*config.Config, error) {
	cwd, _ := os.Getwd()
	cfg, _, err := config.Load(args.Config, cwd)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if args.JSON {
		cfg.Diagnostics.JSON = true
	}
	if args.NoColor {
		cfg.Diagnostics.Color = false
	}
	if args.LogLevel != "" {
		cfg.Log.Level = args.LogLevel
		if _, err := cfg.LogLevel(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger(level zapcore.Level, w io.Writer) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core, zap.AddStacktrace(zap.DPanicLevel))
}

func cmdRun(sess *session.Session, file string, stdin io.Reader, stderr io.Writer) int {
	if file != "-" {
		return session.ExitCode(sess.RunFile(file))
	}
	source, filename, code := readSource(file, stdin, stderr)
	if code != session.ExitOK {
		return code
	}
	return session.ExitCode(sess.RunSource(source, filename))
}

func cmdCheck(sess *session.Session, file string, jsonOut bool, stdin io.Reader, stdout, stderr io.Writer) int {
	source, filename, code := readSource(file, stdin, stderr)
	if code != session.ExitOK {
		return code
	}

	diags := sess.Check(source, filename)
	if len(diags) > 0 {
		err := &session.DiagnosticError{Diagnostics: diags}
		fmt.Fprintln(stderr, sess.Render(err, source, filename))
		return session.ExitCode(err)
	}

	if jsonOut {
		fmt.Fprintln(stdout, "[]")
	} else {
		fmt.Fprintln(stdout, "No errors found.")
	}
	return session.ExitOK
}

func cmdFmt(sess *session.Session, c *FmtCmd, stdin io.Reader, stdout, stderr io.Writer) int {
	if c.Write && c.File == "-" {
		fmt.Fprintln(stderr, "error: --write needs a file, not stdin")
		return session.ExitUsage
	}
	source, filename, code := readSource(c.File, stdin, stderr)
	if code != session.ExitOK {
		return code
	}

	formatted, err := sess.Format(source, filename)
	if err != nil {
		fmt.Fprintln(stderr, sess.Render(err, source, filename))
		return session.ExitCode(err)
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(stderr, "warning: comments are not preserved by the formatter")
	}

	if c.Write {
		if err := os.WriteFile(c.File, []byte(formatted), 0o644); err != nil {
			fmt.Fprintf(stderr, "error writing file: %s\n", err)
			return session.ExitUsage
		}
		return session.ExitOK
	}
	fmt.Fprint(stdout, formatted)
	return session.ExitOK
}

func cmdHelp(c *HelpCmd, stdout, stderr io.Writer) int {
	if c.Index {
		fmt.Fprint(stdout, help.BuiltinIndex())
		return session.ExitOK
	}
	if c.Topic == "" {
		fmt.Fprint(stdout, help.QUICKREF)
		return session.ExitOK
	}
	_, content, err := help.MatchTopic(c.Topic)
	if err != nil {
		fmt.Fprintf(stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return session.ExitUsage
	}
	fmt.Fprint(stdout, content)
	return session.ExitOK
}

// readSource reads file, or stdin when file is "-".
func readSource(file string, stdin io.Reader, stderr io.Writer) (string, string, int) {
	if file == "-" && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "error reading stdin: %s\n", err)
			return "", "", session.ExitUsage
		}
		return string(data), "<stdin>", session.ExitOK
	}

	source, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, "")
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostic(diag, diagnostics.Options{}))
		return "", "", session.ExitUsage
	}
	return string(source), file, session.ExitOK
}
