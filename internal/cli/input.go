package cli

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"github.com/rs/xid"
	"io"
	"os"
	"path/filepath"
)

const maxLineBytes = 64 << 20

// source is a named input: a file path or "-" for stdin.
type source struct {
	name string
	open func() (io.ReadCloser, error)
}

func sources(args []string, stdin io.Reader) []source {
	if len(args) == 0 {
		args = []string{"-"}
	}
	out := make([]source, len(args))
	for i, arg := range args {
		if arg == "-" {
			out[i] = source{name: "stdin", open: func() (io.ReadCloser, error) {
				return io.NopCloser(stdin), nil
			}}
			continue
		}
		out[i] = source{name: arg, open: func() (io.ReadCloser, error) {
			return os.Open(arg)
		}}
	}
	return out
}

func (s source) readAll() ([]byte, error) {
	r, err := s.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// eachBase64Line calls fn for every non-blank line of r. n is the physical
// line number, counting blank lines. raw is the line itself; data is its
// decoded form, nil when decodeErr is set.
func eachBase64Line(r io.Reader, fn func(n int, raw, data []byte, decodeErr error) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		data, err := decodeBase64(line)
		if err := fn(n, line, data, err); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func decodeBase64(line []byte) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(string(line))
	if err == nil {
		return data, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(string(line)); rawErr == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("invalid base64: %w", err)
}

// dumpPayload writes a payload that failed to decode to otk.<xid>.bin.
func dumpPayload(dir string, payload []byte) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("otk.%s.bin", xid.New().String()))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to dump payload: %w", err)
	}
	return path, nil
}
