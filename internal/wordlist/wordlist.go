// Package wordlist loads line-oriented lists of words or passages.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadWords reads one word per line from path, keeping words accepted by keep.
func LoadWords(path string, keep FilterFunc) ([]string, error) {
	return loadFile(path, keep)
}

// LoadPassages reads one passage per line from path. Runs of whitespace inside a passage are
// collapsed to single spaces.
func LoadPassages(path string) ([]string, error) {
	return loadFile(path, nil)
}

// ParsePassages reads one passage per line from r.
func ParsePassages(r io.Reader) ([]string, error) {
	return parse(r, nil)
}

func loadFile(path string, keep FilterFunc) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only list.
			_ = cerr
		}
	}()
	return parse(file, keep)
}

func parse(r io.Reader, keep FilterFunc) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), " ")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if keep != nil && !keep(line) {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("list is empty")
	}
	return lines, nil
}
