package file

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadList reads a text file line by line and returns the non-empty,
// non-comment lines. The CLI uses it for files that list pipeline configs,
// one path per line.
//
// Lines that are empty or start with '#' (after trimming) are skipped. The
// order of lines is preserved.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}
