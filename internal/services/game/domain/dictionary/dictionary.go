// Package dictionary loads the list of place names a match accepts.
package dictionary

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed places.txt
var defaultPlaces string

// Default returns the built-in place list.
func Default() []string {
	words, err := Parse(strings.NewReader(defaultPlaces))
	if err != nil {
		panic(fmt.Sprintf("dictionary: embedded places: %v", err))
	}
	return words
}

// Parse reads one place per line. Blank lines and lines starting with '#'
// are skipped; names are lowercased and repeats dropped, first one kept.
func Parse(r io.Reader) ([]string, error) {
	var words []string
	seen := map[string]struct{}{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word := strings.ToLower(line)
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return words, nil
}

// LoadFile parses the dictionary at path.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	words, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("dictionary %s has no places", path)
	}
	return words, nil
}

// Load returns the dictionary at path, or the built-in list when path is empty.
func Load(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
