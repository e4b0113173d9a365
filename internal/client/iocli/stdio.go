package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio реализует IO поверх потоков процесса.
// Пароль читается без эха, если stdin является терминалом.
type Stdio struct {
	in  *bufio.Reader
	out io.Writer
	// isTerminal и readPassword подменяются в тестах
	isTerminal   func() bool
	readPassword func() ([]byte, error)
}

// NewStdio returns IO bound to os.Stdin and os.Stdout
func NewStdio() *Stdio {
	fd := int(os.Stdin.Fd())
	return &Stdio{
		in:           bufio.NewReader(os.Stdin),
		out:          os.Stdout,
		isTerminal:   func() bool { return term.IsTerminal(fd) },
		readPassword: func() ([]byte, error) { return term.ReadPassword(fd) },
	}
}

// NewStream returns IO over arbitrary streams; passwords are read as plain lines
func NewStream(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{
		in:         bufio.NewReader(in),
		out:        out,
		isTerminal: func() bool { return false },
	}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	return s.readLine()
}

func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)

	if !s.isTerminal() {
		return s.readLine()
	}

	pwBytes, err := s.readPassword()
	// после ввода без эха курсор остается на строке приглашения
	s.Println()
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}

// readLine читает строку до \n; последняя строка без \n тоже принимается
func (s *Stdio) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
