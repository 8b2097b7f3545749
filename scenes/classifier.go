// Package scenes decides whether a segment is a cut scene, using a scene list
// held in an external configuration dictionary.
package scenes

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// DictionaryName is the name of the configuration dictionary holding the
	// scene list.
	DictionaryName = "cut_scenes"
	// ListKey is the dictionary key whose value is the comma-separated list
	// of cut scene segment numbers.
	ListKey = "scenes"
)

var (
	ErrSceneListMissing      = errors.New("scene list key not found in dictionary")
	ErrDictionaryUnavailable = errors.New("dictionary unavailable")
)

// Dictionary is a read-only key-value store.
type Dictionary interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
}

// ParseError reports a scene list token that isn't a non-negative integer.
type ParseError struct {
	Token    string
	Position int
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("scene list token %d (%q) is not a segment number: %v", e.Position, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseList splits raw on commas and parses every token. A single bad token
// fails the whole list.
func ParseList(raw string) ([]uint32, error) {
	tokens := strings.Split(raw, ",")
	list := make([]uint32, 0, len(tokens))
	for i, tok := range tokens {
		n, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return nil, &ParseError{Token: tok, Position: i, Err: err}
		}
		list = append(list, uint32(n))
	}
	return list, nil
}

type Classifier struct {
	dict    Dictionary
	timeout time.Duration
}

// NewClassifier returns a Classifier reading from dict. A positive timeout
// bounds each dictionary read.
func NewClassifier(dict Dictionary, timeout time.Duration) *Classifier {
	return &Classifier{dict: dict, timeout: timeout}
}

// List fetches and parses the current scene list. Nothing is cached, so a
// change in the dictionary is seen by the next call.
func (c *Classifier) List(ctx context.Context) ([]uint32, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, found, err := c.dict.Get(ctx, ListKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDictionaryUnavailable, err)
	}
	if !found {
		return nil, ErrSceneListMissing
	}
	return ParseList(raw)
}

// IsCutScene reports whether seg is in the current scene list.
func (c *Classifier) IsCutScene(ctx context.Context, seg uint32) (bool, error) {
	list, err := c.List(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(list, seg), nil
}
