// Package ioutils opens and creates table files, handling stdin/stdout ("-")
// and gzip compression.
package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
)

var gzipMagic = []byte{0x1f, 0x8b}

// OpenMaybeCompressed opens a file path or stdin ("-") and returns a reader.
// Input named *.gz or starting with the gzip magic bytes is decompressed.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return maybeGunzip(bufio.NewReader(os.Stdin), func() error { return nil }, false)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := maybeGunzip(bufio.NewReader(f), f.Close, filepath.Ext(path) == ".gz")
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return rc, nil
}

func maybeGunzip(br *bufio.Reader, closeFn func() error, force bool) (io.ReadCloser, error) {
	if !force {
		b, err := br.Peek(len(gzipMagic))
		force = err == nil && b[0] == gzipMagic[0] && b[1] == gzipMagic[1]
	}
	if !force {
		return readCloser{Reader: br, closeFn: closeFn}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, err
	}
	return readCloser{Reader: zr, closeFn: func() error { _ = zr.Close(); return closeFn() }}, nil
}

// CreateMaybeCompressed creates a file (or stdout if path is "-") and
// returns a buffered writer. If the path ends in .gz, output is gzip compressed.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		bw := bufio.NewWriter(os.Stdout)
		return writeCloser{Writer: bw, closeFn: bw.Flush}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		zw := gzip.NewWriter(f)
		return writeCloser{Writer: zw, closeFn: func() error {
			if err := zw.Close(); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		}}, nil
	}
	bw := bufio.NewWriter(f)
	return writeCloser{Writer: bw, closeFn: func() error {
		if err := bw.Flush(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}}, nil
}

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error { return r.closeFn() }

type writeCloser struct {
	io.Writer
	closeFn func() error
}

func (w writeCloser) Close() error { return w.closeFn() }
