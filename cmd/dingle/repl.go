package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dinglebob/dingle/pkg/config"
	"github.com/dinglebob/dingle/pkg/help"
	"github.com/dinglebob/dingle/pkg/session"
)

const (
	banner     = "Dinglebob " + version + " (:help for help, :quit or Ctrl-D to exit)"
	promptCont = "... "
)

// prompter is the part of *liner.State the loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func cmdRepl(sess *session.Session, cfg *config.Config, logger *zap.Logger, stdout, stderr io.Writer) int {
	if cfg.Repl.Banner {
		fmt.Fprintln(stdout, banner)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.HistoryPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(histPath)
			if err != nil {
				logger.Warn("cannot save history", zap.String("path", histPath), zap.Error(err))
				return
			}
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	return replLoop(sess, ln, cfg.Repl.Prompt, stdout)
}

func replLoop(sess *session.Session, p prompter, prompt string, stdout io.Writer) int {
	for {
		entry, ok := readEntry(p, prompt)
		if !ok {
			fmt.Fprintln(stdout)
			return session.ExitOK
		}
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		p.AppendHistory(strings.ReplaceAll(entry, "\n", " "))

		if trimmed == "exit()" || trimmed == "exit();" {
			return session.ExitOK
		}
		if strings.HasPrefix(trimmed, ":") {
			if quit := replCommand(sess, trimmed, stdout); quit {
				return session.ExitOK
			}
			continue
		}
		// errors are already rendered and the state rolled back
		_ = sess.RunLine(entry)
	}
}

func replCommand(sess *session.Session, cmd string, stdout io.Writer) (quit bool) {
	fields := strings.Fields(cmd)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q":
		return true
	case ":env":
		for _, name := range sess.Globals() {
			fmt.Fprintln(stdout, name)
		}
	case ":help":
		if len(fields) == 1 {
			fmt.Fprint(stdout, help.QUICKREF)
			return false
		}
		_, content, err := help.MatchTopic(strings.Join(fields[1:], " "))
		if err != nil {
			fmt.Fprintln(stdout, err)
			return false
		}
		fmt.Fprint(stdout, content)
	default:
		fmt.Fprintf(stdout, "unknown command %s. Type :help or :quit.\n", fields[0])
	}
	return false
}

// readEntry reads lines until they form a complete entry. Ctrl-C drops the
// partial entry; Ctrl-D or a closed input ends the session.
func readEntry(p prompter, prompt string) (string, bool) {
	var b strings.Builder
	for {
		current := prompt
		if b.Len() > 0 {
			current = promptCont
		}
		line, err := p.Prompt(current)
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !session.NeedsMore(src) {
			return src, true
		}
	}
}
