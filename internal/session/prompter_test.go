package session

import (
	"fmt"
	"io"
	"strings"
)

// scriptedPrompter replays canned input lines and records everything written.
type scriptedPrompter struct {
	lines   []string
	prompts []string
	out     strings.Builder
	infos   []string
	warns   []string
}

func newScriptedPrompter(lines ...string) *scriptedPrompter {
	return &scriptedPrompter{lines: lines}
}

func (p *scriptedPrompter) ReadLine(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func (p *scriptedPrompter) Printf(format string, args ...any) {
	fmt.Fprintf(&p.out, format, args...)
}

func (p *scriptedPrompter) Info(format string, args ...any) {
	p.infos = append(p.infos, fmt.Sprintf(format, args...))
}

func (p *scriptedPrompter) Warn(format string, args ...any) {
	p.warns = append(p.warns, fmt.Sprintf(format, args...))
}
