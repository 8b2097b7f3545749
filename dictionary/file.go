package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// File is a dictionary read from a JSON document of the form
//
//	{"cut_scenes": {"scenes": "3,10,42"}}
//
// The file is re-read on every lookup, so edits apply to the next request.
type File struct {
	path string
	name string
}

func NewFile(path, name string) *File {
	return &File{path: path, name: name}
}

func (d *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(d.path) //nolint:gosec // path is from ROUTER_DICTIONARY_FILE, controlled by the operator
	if err != nil {
		return "", false, fmt.Errorf("failed to read dictionary file: %w", err)
	}

	var dictionaries map[string]map[string]string
	if err := json.Unmarshal(data, &dictionaries); err != nil {
		return "", false, fmt.Errorf("failed to parse dictionary file %s: %w", d.path, err)
	}

	value, ok := dictionaries[d.name][key]
	return value, ok, nil
}
