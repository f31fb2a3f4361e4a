package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/chatmark/internal/doctree"
	"github.com/dgallion1/chatmark/internal/parser"
	"github.com/dgallion1/chatmark/internal/stream"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type streamOptions struct {
	renderOptions
	tools bool
}

func newStreamCmd() *cobra.Command {
	opts := &streamOptions{}
	cmd := &cobra.Command{
		Use:   "stream [file]",
		Short: "Decode an agent data stream and render its messages",
		Long: `Decode a captured data stream (one "<code>:<json>" part per line),
split it into messages at finish parts and render each message.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			p, err := parser.ForDialect(opts.dialect)
			if err != nil {
				return err
			}
			tr, err := stream.ReadTranscript(bytes.NewReader(input), p)
			if err != nil {
				return err
			}

			w, closeOut, err := opts.output(cmd)
			if err != nil {
				return err
			}
			defer closeOut()

			format := opts.resolveFormat(w)
			if format == "docx" && opts.out == "" && isTerminal(w) {
				return errors.New("refusing to write docx to a terminal; use --out")
			}

			docs := make([]doctree.Document, 0, len(tr.Messages))
			for _, m := range tr.Messages {
				docs = append(docs, m.Document())
			}
			if opts.tools && (format == "ansi" || format == "text") {
				err = writeWithTools(w, tr.Messages, format, opts.style, isTerminal(w))
			} else {
				err = writeDocuments(w, docs, format, opts.style, isTerminal(w))
			}
			if err != nil {
				return err
			}

			if opts.verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "decoded %s message(s) from %s, skipped %d malformed line(s)\n",
					humanize.Comma(int64(len(tr.Messages))), humanize.Bytes(uint64(len(input))), tr.Skipped)
			}
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().BoolVar(&opts.tools, "tools", false, "show tool calls and errors between messages (ansi and text)")
	return cmd
}

// writeWithTools renders each message followed by its tool activity.
func writeWithTools(w io.Writer, msgs []*stream.Message, format, style string, tty bool) error {
	for i, m := range msgs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if m.Text() != "" {
			if err := writeDocuments(w, []doctree.Document{m.Document()}, format, style, tty); err != nil {
				return err
			}
		}
		for _, tc := range m.ToolCalls {
			fmt.Fprintf(w, "→ %s(%s)\n", tc.Name, tc.Args)
		}
		for _, tr := range m.ToolResults {
			fmt.Fprintf(w, "← %s %s\n", tr.ID, tr.Result)
		}
		for _, e := range m.Errors {
			fmt.Fprintf(w, "! %s\n", e)
		}
	}
	return nil
}
