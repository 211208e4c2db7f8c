// Package phrasebook rewrites spoken transcripts with user-maintained
// substitutions before they reach the interpreter, e.g.
//
//	heathrow => London (LHR)
//	s/\bwhy why see\b/YYC/g
//
// Literal rules replace every case-insensitive occurrence. Sed-style rules
// take any non-alphanumeric delimiter and the flags i, g, m and s; they are
// case-insensitive unless stated otherwise and replace the first match
// unless g is given.
package phrasebook

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

const defaultPassLimit = 30

// Book applies substitutions until the text stops changing.
type Book struct {
	entries   []substitution
	passLimit int
}

type substitution struct {
	re          *regexp.Regexp
	replacement string
	all         bool
}

// Load reads a phrasebook file. A missing or unset path yields an empty book.
func Load(path string, passLimit int) (*Book, error) {
	if strings.TrimSpace(path) == "" {
		return newBook(nil, passLimit), nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newBook(nil, passLimit), nil
		}
		return nil, fmt.Errorf("failed to open phrasebook %q: %w", path, err)
	}
	defer file.Close()

	book, err := Parse(file, passLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phrasebook %q: %w", path, err)
	}
	return book, nil
}

// Parse reads rules line by line; blank lines and # comments are skipped.
func Parse(r io.Reader, passLimit int) (*Book, error) {
	var entries []substitution

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return newBook(entries, passLimit), nil
}

func newBook(entries []substitution, passLimit int) *Book {
	if passLimit <= 0 {
		passLimit = defaultPassLimit
	}
	return &Book{entries: entries, passLimit: passLimit}
}

// Len reports how many rules were loaded.
func (b *Book) Len() int {
	return len(b.entries)
}

// Apply implements ports.TranscriptNormalizer.
func (b *Book) Apply(text string) (string, error) {
	if len(b.entries) == 0 {
		return text, nil
	}

	for pass := 0; pass < b.passLimit; pass++ {
		before := text
		for _, entry := range b.entries {
			text = entry.apply(text)
		}
		if text == before {
			break
		}
	}
	return text, nil
}

func (s substitution) apply(text string) string {
	if s.all {
		return s.re.ReplaceAllString(text, s.replacement)
	}
	loc := s.re.FindStringSubmatchIndex(text)
	if loc == nil {
		return text
	}
	var out []byte
	out = s.re.ExpandString(out, s.replacement, text, loc)
	return text[:loc[0]] + string(out) + text[loc[1]:]
}

func parseLine(line string) (substitution, error) {
	if isSedRule(line) {
		return parseSed(line)
	}
	if from, to, ok := strings.Cut(line, "=>"); ok {
		return parseLiteral(strings.TrimSpace(from), strings.TrimSpace(to))
	}
	return substitution{}, errors.New("unsupported rule format")
}

func parseLiteral(from, to string) (substitution, error) {
	if from == "" {
		return substitution{}, errors.New("literal rule source cannot be empty")
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(from))
	if err != nil {
		return substitution{}, fmt.Errorf("invalid literal source: %w", err)
	}
	return substitution{re: re, replacement: strings.ReplaceAll(to, "$", "$$"), all: true}, nil
}

func parseSed(line string) (substitution, error) {
	delim := line[1]
	parts, rest, err := splitDelimited(line[2:], delim, 2)
	if err != nil {
		return substitution{}, err
	}

	all := false
	modes := "i"
	for _, flag := range strings.TrimSpace(rest) {
		switch flag {
		case 'i':
		case 'g':
			all = true
		case 'm', 's':
			modes += string(flag)
		case ' ':
		default:
			return substitution{}, fmt.Errorf("unsupported regex flag %q", flag)
		}
	}
	re, err := regexp.Compile("(?" + modes + ")" + parts[0])
	if err != nil {
		return substitution{}, fmt.Errorf("invalid regex: %w", err)
	}
	return substitution{re: re, replacement: parts[1], all: all}, nil
}

// splitDelimited reads n delimiter-terminated fields, honouring backslash escapes.
func splitDelimited(input string, delim byte, n int) ([]string, string, error) {
	fields := make([]string, 0, n)
	var current strings.Builder
	escaped := false

	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case escaped:
			current.WriteByte(c)
			escaped = false
		case c == '\\':
			current.WriteByte(c)
			escaped = true
		case c == delim:
			fields = append(fields, current.String())
			current.Reset()
			if len(fields) == n {
				return fields, input[i+1:], nil
			}
		default:
			current.WriteByte(c)
		}
	}
	return nil, "", errors.New("unterminated expression")
}

func isSedRule(line string) bool {
	if len(line) < 2 || line[0] != 's' {
		return false
	}
	c := line[1]
	alnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
	return !alnum && c != ' ' && c != '\t'
}
