package analysis

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// The recognizer table maps a finite, fixed set of standard operations
// to the error kinds they imply. Operations outside the table contribute
// nothing: the extractor never claims a behavior that is not mechanically
// recognizable here. Adding a recognized operation is a data change, not
// a code change.

// RecognizerTable holds the implied-raise lookup data.
type RecognizerTable struct {
	// Calls maps a callee name (as written, including dotted names) to
	// the kinds its invocation implies.
	Calls map[string][]ErrorKind `yaml:"calls"`

	// Operators maps a binary operator token to implied kinds.
	Operators map[string][]ErrorKind `yaml:"operators"`

	// SubscriptIndex applies to subscripts with an integer literal
	// index, SubscriptKey to every other subscript.
	SubscriptIndex []ErrorKind `yaml:"subscript_index"`
	SubscriptKey   []ErrorKind `yaml:"subscript_key"`
}

// DefaultRecognizers returns the built-in table:
//
//	open()            -> FileNotFoundError, PermissionError
//	int(), float()    -> ValueError
//	d[key]            -> KeyError
//	seq[0]            -> IndexError
//	/, //, %          -> ZeroDivisionError
func DefaultRecognizers() *RecognizerTable {
	return &RecognizerTable{
		Calls: map[string][]ErrorKind{
			"open":  {"FileNotFoundError", "PermissionError"},
			"int":   {"ValueError"},
			"float": {"ValueError"},
		},
		Operators: map[string][]ErrorKind{
			"/":  {"ZeroDivisionError"},
			"//": {"ZeroDivisionError"},
			"%":  {"ZeroDivisionError"},
		},
		SubscriptIndex: []ErrorKind{"IndexError"},
		SubscriptKey:   []ErrorKind{"KeyError"},
	}
}

// LoadRecognizers reads a YAML extension file and merges it over the
// built-in table. Entries for an already-known operation replace the
// built-in kinds for that operation.
func LoadRecognizers(path string) (*RecognizerTable, error) {
	table := DefaultRecognizers()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return table, nil
		}
		return nil, fmt.Errorf("failed to read recognizers %s: %w", path, err)
	}

	var ext RecognizerTable
	if err := yaml.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("failed to parse recognizers %s: %w", path, err)
	}

	for name, kinds := range ext.Calls {
		table.Calls[name] = kinds
	}
	for op, kinds := range ext.Operators {
		table.Operators[op] = kinds
	}
	if len(ext.SubscriptIndex) > 0 {
		table.SubscriptIndex = ext.SubscriptIndex
	}
	if len(ext.SubscriptKey) > 0 {
		table.SubscriptKey = ext.SubscriptKey
	}
	return table, nil
}

func sortedKinds(set map[ErrorKind]struct{}) []ErrorKind {
	out := make([]ErrorKind, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
