package classifier

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"help-desk/errors"
)

//go:embed phrases/*.txt
var phraseFS embed.FS

const (
	chatSet     = "chat"
	workSet     = "work"
	decisionSet = "decision"
)

// PhraseSets maps a set name (the file name without .txt) to its phrases.
type PhraseSets map[string][]string

// PhraseLoader reads one phrase per line from every .txt file of a directory.
type PhraseLoader struct {
	fs fs.FS
}

func NewPhraseLoader(f fs.FS) *PhraseLoader {
	return &PhraseLoader{fs: f}
}

// LoadAll parses every .txt file under dir. Blank lines and lines starting with # are skipped.
// A file without any phrase is an error.
func (l *PhraseLoader) LoadAll(dir string) (PhraseSets, error) {
	entries, err := fs.ReadDir(l.fs, dir)
	if err != nil {
		return nil, err
	}

	sets := make(PhraseSets)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".txt")

		data, err := fs.ReadFile(l.fs, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		unique := make(map[string]struct{})
		// Scanner copes with \r\n files
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			unique[strings.ToLower(line)] = struct{}{}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		if len(unique) == 0 {
			return nil, fmt.Errorf("%w: %s", errors.ErrEmptyPhraseSet, name)
		}

		phrases := make([]string, 0, len(unique))
		for p := range unique {
			phrases = append(phrases, p)
		}
		sort.Strings(phrases)
		sets[name] = phrases
	}
	return sets, nil
}

// DefaultPhraseSets loads the embedded chat, work and decision sets.
func DefaultPhraseSets() (PhraseSets, error) {
	sets, err := NewPhraseLoader(phraseFS).LoadAll("phrases")
	if err != nil {
		return nil, err
	}
	for _, name := range []string{chatSet, workSet, decisionSet} {
		if len(sets[name]) == 0 {
			return nil, fmt.Errorf("%w: %s", errors.ErrEmptyPhraseSet, name)
		}
	}
	return sets, nil
}
