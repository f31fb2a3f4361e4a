package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dgallion1/chatmark/internal/doctree"
	"github.com/dgallion1/chatmark/internal/parser"
	"github.com/dgallion1/chatmark/internal/render"
	"github.com/dustin/go-humanize"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

var formats = []string{"json", "html", "ansi", "text", "docx", "dump"}

type renderOptions struct {
	format  string
	dialect string
	out     string
	style   string
	verbose bool
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render one message",
		Long: `Render a single chat message read from a file or stdin.

The default format is ansi when writing to a terminal and json otherwise.`,
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
			doc := p.Parse(string(input))

			w, closeOut, err := opts.output(cmd)
			if err != nil {
				return err
			}
			defer closeOut()

			format := opts.resolveFormat(w)
			if format == "docx" && opts.out == "" && isTerminal(w) {
				return errors.New("refusing to write docx to a terminal; use --out")
			}
			if err := writeDocuments(w, []doctree.Document{doc}, format, opts.style, isTerminal(w)); err != nil {
				return err
			}
			if opts.verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "rendered %s block(s) from %s as %s\n",
					humanize.Comma(int64(blockCount(doc))), humanize.Bytes(uint64(len(input))), format)
			}
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}

func (o *renderOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format: "+strings.Join(formats, ", "))
	cmd.Flags().StringVarP(&o.dialect, "dialect", "d", parser.DialectChat, "markdown dialect: chat or commonmark")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "write output to a file instead of stdout")
	cmd.Flags().StringVar(&o.style, "style", "monokai", "code highlighting style")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "print a summary to stderr")
	cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return formats, cobra.ShellCompDirectiveNoFileComp
	})
}

// output returns the destination writer and a function closing it.
func (o *renderOptions) output(cmd *cobra.Command) (io.Writer, func(), error) {
	if o.out == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(o.out)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func (o *renderOptions) resolveFormat(w io.Writer) string {
	if o.format != "" {
		return strings.ToLower(o.format)
	}
	if isTerminal(w) {
		return "ansi"
	}
	return "json"
}

// writeDocuments renders docs to w in format. Multiple documents are
// separated by a blank line, except for json (an array) and docx (one file).
func writeDocuments(w io.Writer, docs []doctree.Document, format, style string, tty bool) error {
	if !slices.Contains(formats, format) {
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(formats, ", "))
	}
	hl := render.NewHighlighter(style)

	switch format {
	case "json":
		var v any = docs
		if len(docs) == 1 {
			v = docs[0]
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "docx":
		return render.NewDOCXRenderer(hl).Write(w, docs)
	}

	for i, doc := range docs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		switch format {
		case "html":
			out, err := render.NewHTMLRenderer(hl).Render(doc)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, out)
		case "ansi":
			fmt.Fprintln(w, render.NewTerminalRenderer(w, hl, tty).Render(doc))
		case "text":
			fmt.Fprintln(w, doc.PlainText())
		case "dump":
			pp.ColoringEnabled = tty
			pp.Fprintln(w, doc)
		}
	}
	return nil
}

func blockCount(doc doctree.Document) int {
	if doc.Semantic != nil {
		return len(doc.Semantic.Body)
	}
	return len(doc.Blocks)
}
