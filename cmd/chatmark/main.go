// Command chatmark renders chat messages from files or stdin.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chatmark",
		Short: "Render chat markdown",
		Long: `chatmark parses messages written in the chat markdown dialect and
renders them for terminals, browsers and documents.

Examples:
  chatmark render reply.md                 # styled output on a terminal
  echo '*Memory*: hi' | chatmark render -f json
  chatmark render notes.md -f docx -o notes.docx
  chatmark stream response.txt             # decode a data stream`,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
	}
	root.AddCommand(newRenderCmd(), newStreamCmd())
	return root
}

// readInput reads the named file, or in when no file is given or it is "-".
func readInput(args []string, in io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
