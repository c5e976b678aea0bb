// Package console provides the interactive terminal the CLI talks through.
//
// A Console reads one line per prompt and writes messages decorated with
// markers: "(i)" for information, "(!)" for errors and warnings, "(?)" for
// questions and "(@)" for results. NewTerminalConsole adds line editing via
// readline; NewLineConsole reads plain lines and is used for pipes and tests.
package console
