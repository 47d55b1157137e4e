package stats

import (
	"bytes"
	"io"
	"os"
	"strings"
)

const (
	// HeadWindow is the most bytes read from the start of a file.
	HeadWindow = 8 * 1024
	// TailWindow is the most bytes read from the end of a file.
	TailWindow = 64 * 1024
)

// SampleBoundary returns the first and last records of a session file
// using two bounded reads. It returns false for empty files and for any
// I/O failure; files in the projects directory are written and removed
// while we scan, so failures are routine and not reported.
func SampleBoundary(path string) (BoundaryRecord, bool) {
	rec, err := sampleBoundary(path)
	if err != nil || rec == nil {
		return BoundaryRecord{}, false
	}
	return *rec, true
}

func sampleBoundary(path string) (*BoundaryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, HeadWindow)
	n, err := f.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	head = head[:n]
	first := head
	if nl := bytes.IndexByte(head, '\n'); nl >= 0 {
		first = head[:nl]
	}
	firstLine := string(first)

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size < 2 {
		return &BoundaryRecord{FirstLine: firstLine, LastLine: firstLine}, nil
	}

	tail, err := readTail(f, size, TailWindow)
	if err != nil {
		return nil, err
	}

	lastLine := lastNonBlankLine(tail)
	if lastLine == "" {
		lastLine = firstLine
	}
	return &BoundaryRecord{FirstLine: firstLine, LastLine: lastLine}, nil
}

// readTail reads up to maxBytes ending at size.
func readTail(f *os.File, size, maxBytes int64) ([]byte, error) {
	readSize := min(maxBytes, size)
	buf := make([]byte, readSize)
	n, err := f.ReadAt(buf, size-readSize)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

func lastNonBlankLine(data []byte) string {
	lines := strings.Split(string(data), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}
