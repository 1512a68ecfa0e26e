package fs

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// MaxInspectSize caps how much of a file LoadLines will read.
const MaxInspectSize = 8 << 20

var (
	ErrBinary   = errors.New("binary file")
	ErrTooLarge = errors.New("file too large to inspect")
)

// LoadLines reads a text file as a sequence of lines without trailing
// newlines. Binary and oversized files are refused.
func LoadLines(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxInspectSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isBinary(data) {
		return nil, fmt.Errorf("%w: %s", ErrBinary, path)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), MaxInspectSize)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// isBinary sniffs the first 2KB of data.
func isBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	head := data
	if len(head) > 2048 {
		head = head[:2048]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}

	contentType := http.DetectContentType(head)
	return !strings.HasPrefix(contentType, "text/")
}
