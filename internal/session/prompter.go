package session

// Prompter is the console the interactive flows talk to. Implementations read
// one line per call and decorate messages with the usual markers.
//
// ReadLine returns io.EOF when the input ends.
type Prompter interface {
	ReadLine(prompt string) (string, error)

	// Printf writes plain output.
	Printf(format string, args ...any)

	// Info writes an informational message, marked "(i)".
	Info(format string, args ...any)

	// Warn writes an error or warning message, marked "(!)".
	Warn(format string, args ...any)
}
