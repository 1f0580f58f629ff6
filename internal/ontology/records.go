package ontology

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// maxLineCapacity bounds scanner buffers for long annotation lines.
const maxLineCapacity = 1024 * 1024

// annotSep splits annotation lines: whitespace, commas or semicolons.
var annotSep = regexp.MustCompile(`[\s,;]+`)

// ReadTermRecords reads term records from a JSONL stream, one record per
// line, skipping blank lines.
func ReadTermRecords(r io.Reader) ([]TermRecord, error) {
	var terms []TermRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineCapacity), maxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var t TermRecord
		if err := json.Unmarshal(line, &t); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if t.ID == "" {
			return nil, fmt.Errorf("term at line %d has no id", lineNum)
		}
		terms = append(terms, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading term records: %w", err)
	}
	return terms, nil
}

// ReadTermRecordsFile reads term records from a JSONL file.
func ReadTermRecordsFile(path string) ([]TermRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening term records: %w", err)
	}
	defer f.Close()
	return ReadTermRecords(f)
}

// ReadAnnotations reads an entity annotation table: one entity per line,
// first token the entity identifier, remaining tokens term identifiers.
// Tokens may be separated by whitespace, commas or semicolons.
func ReadAnnotations(r io.Reader) (map[string][]string, error) {
	annots := make(map[string][]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineCapacity), maxLineCapacity)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := annotSep.Split(line, -1)
		entity := fields[0]
		for _, tt := range fields[1:] {
			if tt != "" {
				annots[entity] = append(annots[entity], tt)
			}
		}
		if _, ok := annots[entity]; !ok {
			annots[entity] = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading annotations: %w", err)
	}
	return annots, nil
}

// ReadAnnotationsFile reads an entity annotation table from a file.
func ReadAnnotationsFile(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening annotations: %w", err)
	}
	defer f.Close()
	return ReadAnnotations(f)
}

// IDPair is one identifier pair read from a pair list.
type IDPair struct {
	A, B string
}

// ReadPairs reads an identifier pair table: one pair per line, two tokens
// separated by whitespace, commas or semicolons. Lines with any other shape
// are rejected.
func ReadPairs(r io.Reader) ([]IDPair, error) {
	var pairs []IDPair
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineCapacity), maxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := annotSep.Split(line, -1)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected two identifiers, got %d", lineNum, len(fields))
		}
		pairs = append(pairs, IDPair{A: fields[0], B: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pairs: %w", err)
	}
	return pairs, nil
}

// ReadPairsFile reads an identifier pair table from a file.
func ReadPairsFile(path string) ([]IDPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pairs: %w", err)
	}
	defer f.Close()
	return ReadPairs(f)
}

// ReadTermList reads a target term list: identifiers separated by
// whitespace, commas or semicolons, across any number of lines.
func ReadTermList(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading term list: %w", err)
	}
	var terms []string
	for _, tt := range annotSep.Split(strings.TrimSpace(string(data)), -1) {
		if tt != "" {
			terms = append(terms, tt)
		}
	}
	return terms, nil
}
