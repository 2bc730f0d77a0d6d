// Package repl implements CascadeLang's interactive line-editing shell,
// built on the teacher's own REPL dependency: github.com/peterh/liner.
package repl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/caivega/cascadelang/lang/interp"
	"github.com/caivega/cascadelang/lang/parser"
)

const historyFile = ".cascadelang_history"

// Run starts an interactive session against one persistent interpreter,
// reading lines from stdin until EOF (Ctrl-D) or an explicit `exit`.
// Lex/parse/runtime errors are reported to stderr and do not end the
// session, matching spec.md's REPL error-handling contract.
func Run(out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyPath()); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	in := interp.New()
	in.SetPrint(func(s string) { fmt.Fprintln(out, s) })

	for {
		text, err := line.Prompt("cascadelang> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "repl:", err)
			break
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			break
		}
		line.AppendHistory(text)

		result, execErr := evalLine(in, trimmed)
		if execErr != nil {
			fmt.Fprintln(os.Stderr, execErr)
			continue
		}
		if result != "" {
			fmt.Fprintln(out, result)
		}
	}

	if f, err := os.Create(historyPath()); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
	return nil
}

func evalLine(in *interp.Interp, src string) (string, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return "", err
	}
	if len(prog.Stmts) != 1 {
		for _, st := range prog.Stmts[:len(prog.Stmts)-1] {
			if _, err := in.RunLine(st); err != nil {
				return "", err
			}
		}
		return in.RunLine(prog.Stmts[len(prog.Stmts)-1])
	}
	return in.RunLine(prog.Stmts[0])
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return home + string(os.PathSeparator) + historyFile
}
