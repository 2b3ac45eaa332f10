package iojson

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader decodes a T from the file named by its flag, or from piped
// stdin when the flag is unset.
type FileReader[T any] struct {
	fileFlagValue string
}

// Set reports whether a file was given.
func (fr *FileReader[T]) Set() bool { return fr.fileFlagValue != "" }

// Piped reports whether stdin is a pipe or file rather than a terminal.
func Piped() bool {
	return !term.IsTerminal(int(os.Stdin.Fd()))
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

func (fr *FileReader[T]) Read() (T, error) {
	var reader io.Reader
	var input T

	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		if !Piped() {
			return input, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
		}
		reader = os.Stdin
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return input, fmt.Errorf("read input: %w", err)
	}

	if err := sonic.Unmarshal(data, &input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
