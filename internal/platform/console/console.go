package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

// Message markers.
const (
	InfoMarker     = "(i)"
	WarnMarker     = "(!)"
	QuestionMarker = "(?)"
	ResultMarker   = "(@)"
)

// Options configure a Console.
type Options struct {
	// Color enables colored markers. Color is also off when the output is not a
	// terminal or NO_COLOR is set.
	Color bool
}

// lineReader reads one line per call, showing prompt first.
type lineReader interface {
	readLine(prompt string) (string, error)
	close() error
}

// Console implements session.Prompter on top of a line reader and an output
// stream.
type Console struct {
	reader lineReader
	out    io.Writer

	info     *color.Color
	warn     *color.Color
	question *color.Color
	result   *color.Color
}

func newConsole(reader lineReader, out io.Writer, opts Options) *Console {
	c := &Console{
		reader:   reader,
		out:      out,
		info:     color.New(color.FgCyan),
		warn:     color.New(color.FgRed, color.Bold),
		question: color.New(color.FgYellow),
		result:   color.New(color.FgGreen, color.Bold),
	}
	if !opts.Color {
		for _, attr := range []*color.Color{c.info, c.warn, c.question, c.result} {
			attr.DisableColor()
		}
	}
	return c
}

// NewLineConsole reads plain lines from in and echoes prompts to out. It is
// used when stdin is not a terminal.
func NewLineConsole(in io.Reader, out io.Writer, opts Options) *Console {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	return newConsole(&scannerReader{scanner: scanner, out: out}, out, opts)
}

// NewTerminalConsole reads from the terminal with line editing and an
// in-memory command history.
func NewTerminalConsole(out io.Writer, opts Options) (*Console, error) {
	if out == nil {
		out = os.Stdout
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
		HistorySearchFold: true,

		Stdin:  readline.NewCancelableStdin(os.Stdin),
		Stdout: out,
		Stderr: os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}

	return newConsole(&readlineReader{rl: rl}, rl.Stdout(), opts), nil
}

// ReadLine shows prompt and returns the next line without its line ending.
// It returns io.EOF when the input ends or the user interrupts an empty line.
func (c *Console) ReadLine(prompt string) (string, error) {
	return c.reader.readLine(c.colorPrompt(prompt))
}

// Printf writes plain output.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Info writes a line marked "(i)".
func (c *Console) Info(format string, args ...any) {
	c.marked(c.info, InfoMarker, format, args...)
}

// Warn writes a line marked "(!)".
func (c *Console) Warn(format string, args ...any) {
	c.marked(c.warn, WarnMarker, format, args...)
}

// Result writes a line marked "(@)".
func (c *Console) Result(format string, args ...any) {
	c.marked(c.result, ResultMarker, format, args...)
}

// Confirm asks a yes/no question marked "(?)". Only "y" and "yes" confirm.
func (c *Console) Confirm(format string, args ...any) (bool, error) {
	question := fmt.Sprintf(QuestionMarker+" "+format, args...) + " [y/N] "
	line, err := c.ReadLine(question)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Close releases the terminal.
func (c *Console) Close() error {
	return c.reader.close()
}

func (c *Console) marked(attr *color.Color, marker, format string, args ...any) {
	fmt.Fprintf(c.out, "%s %s\n", attr.Sprint(marker), fmt.Sprintf(format, args...))
}

// colorPrompt colors a leading "(?)" marker.
func (c *Console) colorPrompt(prompt string) string {
	if rest, ok := strings.CutPrefix(prompt, QuestionMarker); ok {
		return c.question.Sprint(QuestionMarker) + rest
	}
	return prompt
}

type scannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *scannerReader) readLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(r.scanner.Text(), "\r"), nil
}

func (r *scannerReader) close() error {
	return nil
}

type readlineReader struct {
	rl *readline.Instance
}

func (r *readlineReader) readLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	for {
		line, err := r.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl+C on a partly typed line clears it.
			if len(line) > 0 {
				continue
			}
			return "", io.EOF
		}
		return line, err
	}
}

func (r *readlineReader) close() error {
	return r.rl.Close()
}
