// Package chat is the interactive terminal front end.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/futig/bms-rag/internal/pkg/formatter"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxLineSize = 1 << 20

var (
	banner    = strings.Repeat("=", 60)
	separator = strings.Repeat("-", 60)
)

type Asker interface {
	Ask(ctx context.Context, query string) (*entity.Answer, error)
}

type Saver interface {
	Save(ctx context.Context, answer *entity.Answer) (string, error)
}

// Session reads queries line by line until exit, EOF or cancellation.
// The history command lists only this session's answered queries, even when
// the usecase also persists them to a shared store.
type Session struct {
	asker   Asker
	saver   Saver
	in      io.Reader
	out     io.Writer
	history []string
}

// NewSession builds a chat session. saver may be nil to disable exports.
func NewSession(asker Asker, saver Saver, in io.Reader, out io.Writer) *Session {
	return &Session{
		asker: asker,
		saver: saver,
		in:    in,
		out:   out,
	}
}

// PrintBanner writes the startup header. exportDir is ignored when save is false.
func PrintBanner(out io.Writer, save bool, exportDir string) {
	fmt.Fprintln(out, banner)
	fmt.Fprintln(out, "  BMS RAG Chatbot - powered by chromem-go + Gemini")
	fmt.Fprintln(out, banner)
	if save {
		fmt.Fprintf(out, "  Export: ON  ->  %s/\n", exportDir)
	} else {
		fmt.Fprintln(out, "  Export: OFF (use --output-dir DIR to enable)")
	}
}

// PrintStep writes one of the numbered startup steps.
func PrintStep(out io.Writer, step, total int, text string) {
	fmt.Fprintf(out, "\n[%d/%d] %s\n", step, total, text)
}

func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := s.readLines(ctx)

	fmt.Fprintln(s.out, "\nReady! Ask anything in natural language.")
	fmt.Fprintln(s.out, "Commands: 'exit' to quit | 'history' to list past queries")
	fmt.Fprintln(s.out, separator)

	for {
		fmt.Fprint(s.out, "\nQuery: ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out, "\nSession ended.")
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out, "\nSession ended.")
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "exit", "quit":
			fmt.Fprintln(s.out, "Goodbye.")
			return nil
		case "history":
			s.printHistory()
			continue
		}

		fmt.Fprintln(s.out)
		s.handleQuery(ctx, line)

		if ctx.Err() != nil {
			fmt.Fprintln(s.out, "\nSession ended.")
			return nil
		}
		fmt.Fprintln(s.out, separator)
	}
}

// readLines feeds stdin into a channel so the loop can also wait on ctx
func (s *Session) readLines(ctx context.Context) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		sc := bufio.NewScanner(s.in)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			ctxzap.Warn(ctx, "stdin read failed", zap.Error(err))
		}
	}()

	return lines
}

func (s *Session) printHistory() {
	if len(s.history) == 0 {
		fmt.Fprintln(s.out, "No history yet.")
		return
	}
	for i, q := range s.history {
		fmt.Fprintf(s.out, "  [%d] %s\n", i+1, q)
	}
}

func (s *Session) handleQuery(ctx context.Context, query string) {
	answer, err := s.asker.Ask(ctx, query)
	if err != nil {
		if ctx.Err() == nil {
			fmt.Fprintf(s.out, "[Error] %v\n", err)
		}
		return
	}

	WriteAnswer(s.out, answer)

	if !answer.Parsed() {
		return
	}
	s.history = append(s.history, answer.Query)

	if s.saver == nil {
		return
	}

	path, err := s.saver.Save(ctx, answer)
	if err != nil {
		fmt.Fprintf(s.out, "[Export error] %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "  Saved -> %s\n", path)
}

// WriteAnswer prints the indented reply and its summary, or the parse error and
// the raw reply when it was not JSON.
func WriteAnswer(out io.Writer, answer *entity.Answer) {
	if !answer.Parsed() {
		fmt.Fprintln(out, "[JSON parse error]", answer.ParseError)
		fmt.Fprintln(out, answer.Raw)
		return
	}

	fmt.Fprintln(out, string(formatter.PrettyJSON(answer.JSON)))
	fmt.Fprintf(out, "\n[Intent] %s\n", answer.Intent)
	for _, section := range answer.Sections {
		fmt.Fprintf(out, "  %s: %d item(s)\n", section.Name, section.Count)
	}
}
