package models

import (
	"strconv"
	"strings"
)

// Kind identifies the backing table of an entity ID
type Kind string

const (
	KindList         Kind = "list"
	KindTask         Kind = "task"
	KindNote         Kind = "note"
	KindQuestion     Kind = "question"
	KindReminder     Kind = "reminder"
	KindEdge         Kind = "edge"
	KindAnnouncement Kind = "announcement"
)

// GraphNodeKinds are the kinds that participate in the workspace graph
// (edge endpoints and question sources)
var GraphNodeKinds = []Kind{KindList, KindTask, KindNote, KindQuestion, KindReminder}

// Valid reports whether k is a known entity kind
func (k Kind) Valid() bool {
	switch k {
	case KindList, KindTask, KindNote, KindQuestion, KindReminder, KindEdge, KindAnnouncement:
		return true
	default:
		return false
	}
}

// IsGraphNode reports whether k can be an edge endpoint or question source
func (k Kind) IsGraphNode() bool {
	switch k {
	case KindList, KindTask, KindNote, KindQuestion, KindReminder:
		return true
	default:
		return false
	}
}

// Label returns the human-facing name of the kind, used in assembled trees
// for deleted-endpoint fallbacks
func (k Kind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// ID is the parsed form of an entity identifier ("<kind>:<seq>").
// Callers should parse once and dispatch on Kind rather than re-inspecting
// the raw string.
type ID struct {
	Kind Kind
	Seq  int64
}

// ParseID parses an identifier of the form "<kind>:<seq>".
// A malformed identifier yields an *InvalidIDError.
func ParseID(s string) (ID, error) {
	kind, seq, ok := strings.Cut(s, ":")
	if !ok {
		return ID{}, &InvalidIDError{ID: s, Reason: "missing kind separator"}
	}

	k := Kind(kind)
	if !k.Valid() {
		return ID{}, &InvalidIDError{ID: s, Reason: "unknown kind " + strconv.Quote(kind)}
	}

	n, err := strconv.ParseInt(seq, 10, 64)
	if err != nil || n < 1 {
		return ID{}, &InvalidIDError{ID: s, Reason: "sequence must be a positive integer"}
	}

	return ID{Kind: k, Seq: n}, nil
}

// ParseIDOfKind parses s and additionally requires the given kind,
// returning an *InvalidIDError on a tag mismatch.
func ParseIDOfKind(s string, kind Kind) (ID, error) {
	id, err := ParseID(s)
	if err != nil {
		return ID{}, err
	}
	if id.Kind != kind {
		return ID{}, &InvalidIDError{ID: s, Reason: "expected a " + string(kind) + " identifier"}
	}
	return id, nil
}

// String renders the identifier in its persisted form
func (id ID) String() string {
	return string(id.Kind) + ":" + strconv.FormatInt(id.Seq, 10)
}
