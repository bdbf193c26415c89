package main

import "io"

// lazyWriteCloser opens its destination on the first write, so a failed
// report leaves no empty output file behind.
type lazyWriteCloser struct {
	init   func() (io.WriteCloser, error)
	writer io.WriteCloser
}

func newLazyWriteCloser(init func() (io.WriteCloser, error)) *lazyWriteCloser {
	return &lazyWriteCloser{init: init}
}

func (f *lazyWriteCloser) Write(p []byte) (int, error) {
	if f.writer == nil {
		var err error
		f.writer, err = f.init()
		if err != nil {
			return 0, err
		}
	}
	return f.writer.Write(p)
}

func (f *lazyWriteCloser) Close() error {
	if f.writer != nil {
		return f.writer.Close()
	}
	return nil
}
