package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errNoOperator = errors.New("operator name must not be empty")

// promptOperator asks who is performing the conversion and reads one line.
func promptOperator(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Who is performing this conversion? ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read operator: %w", err)
	}

	name := strings.TrimSpace(line)
	if name == "" {
		return "", errNoOperator
	}
	return name, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
