package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// readText returns the caption text from --text, --file or stdin ("-").
func readText(text, file string, stdin io.Reader) (string, error) {
	switch {
	case text != "" && file != "":
		return "", errors.New("use either --text or --file, not both")
	case text != "":
		return text, nil
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(data), nil
	}
	return "", errors.New("no text given (use --text, --file or --file -)")
}
