// Package schema decodes the home menu document and the referenced set
// documents it points to.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

var (
	// ErrMissingCollection is returned when a home document lacks the
	// requested collection key.
	ErrMissingCollection = errors.New("collection not found")
	// ErrNotStandard is returned when containers are requested from a
	// collection that is not a standard collection.
	ErrNotStandard = errors.New("not a standard collection")
	// ErrEmptyRefSet is returned when a ref set document holds no set.
	ErrEmptyRefSet = errors.New("ref set document holds no set")
)

// Home is the home menu document.
type Home struct {
	Data map[string]*Collection `json:"data"`
}

// ParseHome decodes a home menu document.
func ParseHome(r io.Reader) (*Home, error) {
	var h Home
	if err := decode(r, &h); err != nil {
		return nil, fmt.Errorf("parse home document: %w", err)
	}
	return &h, nil
}

// Collection returns the collection stored under key.
func (h *Home) Collection(key string) (*Collection, error) {
	c, ok := h.Data[key]
	if !ok || c == nil {
		return nil, fmt.Errorf("%w: key %q does not exist", ErrMissingCollection, key)
	}
	return c, nil
}

// RefSet is a referenced set document.
type RefSet struct {
	Data map[string]*Set `json:"data"`
}

// ParseRefSet decodes a referenced set document.
func ParseRefSet(r io.Reader) (*RefSet, error) {
	var rs RefSet
	if err := decode(r, &rs); err != nil {
		return nil, fmt.Errorf("parse ref set document: %w", err)
	}
	return &rs, nil
}

// Set returns the set held by the document. When the document holds more
// than one, the set under the lexically first key wins.
func (rs *RefSet) Set() (*Set, error) {
	keys := make([]string, 0, len(rs.Data))
	for k, s := range rs.Data {
		if s != nil {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, ErrEmptyRefSet
	}
	sort.Strings(keys)
	return rs.Data[keys[0]], nil
}

func decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
