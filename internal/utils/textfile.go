package utils

import (
	"bufio"
	"strings"

	"github.com/spf13/afero"
)

// ReadNonEmptyLines returns the trimmed lines of a text file.
// Blank lines and lines starting with # are skipped.
func ReadNonEmptyLines(fsys afero.Fs, path string) ([]string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
