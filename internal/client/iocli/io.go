// Package iocli abstracts the terminal so commands can be tested without one.
package iocli

//go:generate moq -out io_mock.go . IO

// IO is the terminal as seen by CLI commands
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	// ReadSecret reads a line without echo when the input is a terminal
	ReadSecret(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
