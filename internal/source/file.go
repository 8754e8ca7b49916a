package source

import (
	"context"
	"fmt"
	"io"
	"os"
)

// FileLoader reads mind-map JSON from a file, or from Stdin when Path is "-".
type FileLoader struct {
	Path    string
	Stdin   io.Reader
	Decoder Decoder
}

// NewFileLoader creates a FileLoader reading from path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path, Stdin: os.Stdin}
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		raw []byte
		err error
	)
	if l.Path == "-" {
		if l.Stdin == nil {
			return nil, fmt.Errorf("read stdin: no input")
		}
		raw, err = io.ReadAll(l.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	} else {
		raw, err = os.ReadFile(l.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", l.Path, err)
		}
	}

	res, err := l.Decoder.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.name(), err)
	}
	return res, nil
}

func (l *FileLoader) name() string {
	if l.Path == "-" {
		return "stdin"
	}
	return l.Path
}
