package transport

import (
	"io"
	"os"
)

// StdioReadWriteCloser reads requests from stdin and writes to stdout, for
// clients that launch the adapter as a child process.
type StdioReadWriteCloser struct {
	In  io.ReadCloser
	Out io.WriteCloser
}

// NewStdio returns a StdioReadWriteCloser over os.Stdin and os.Stdout.
func NewStdio() *StdioReadWriteCloser {
	return &StdioReadWriteCloser{In: os.Stdin, Out: os.Stdout}
}

func (s *StdioReadWriteCloser) Read(p []byte) (n int, err error) {
	return s.In.Read(p)
}

func (s *StdioReadWriteCloser) Write(p []byte) (n int, err error) {
	return s.Out.Write(p)
}

// Close closes both ends; the first error wins.
func (s *StdioReadWriteCloser) Close() error {
	inErr := s.In.Close()
	outErr := s.Out.Close()
	if inErr != nil {
		return inErr
	}
	return outErr
}
