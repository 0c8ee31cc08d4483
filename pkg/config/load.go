package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// yamlLineRe pulls the line number out of yaml.v3 error strings such as
// "yaml: line 3: mapping values are not allowed in this context".
var yamlLineRe = regexp.MustCompile(`line (\d+):?\s*`)

// Load reads and parses the YAML document at path. The document must be a
// mapping; an empty file yields an empty Node.
//
// A missing file returns an error matching both ErrNotFound and
// fs.ErrNotExist. Malformed YAML returns a *ParseError.
func Load(path string) (*Node, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
		}
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return LoadBytes(data, path)
}

// LoadBytes parses a YAML mapping held in memory. name is only used in
// error messages.
func LoadBytes(data []byte, name string) (*Node, error) {
	v, line, err := decodeDocument(data, name)
	if err != nil {
		return nil, err
	}
	return asRoot(v, name, line)
}

// decodeValue parses any single YAML document into a Node value.
func decodeValue(data []byte, name string) (any, error) {
	v, _, err := decodeDocument(data, name)
	return v, err
}

func decodeDocument(data []byte, name string) (any, int, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, newParseError(name, err)
	}

	// Only the first document is used, but a malformed trailer is still an error.
	var extra yaml.Node
	if err := dec.Decode(&extra); err != nil && !errors.Is(err, io.EOF) {
		return nil, 0, newParseError(name, err)
	}

	line := doc.Line
	if len(doc.Content) > 0 {
		line = doc.Content[0].Line
	}

	v, err := fromYAML(&doc, name)
	if err != nil {
		return nil, 0, err
	}
	return v, line, nil
}

func newParseError(name string, err error) *ParseError {
	msg := err.Error()
	line := 0
	if m := yamlLineRe.FindStringSubmatchIndex(msg); m != nil {
		line, _ = strconv.Atoi(msg[m[2]:m[3]])
		msg = msg[:m[0]] + msg[m[1]:]
	}
	msg = trimYAMLPrefix(msg)
	return &ParseError{File: name, Line: line, Msg: msg, Err: err}
}

func trimYAMLPrefix(msg string) string {
	const prefix = "yaml: "
	if len(msg) >= len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
