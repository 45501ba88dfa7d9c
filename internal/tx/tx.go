// Package tx defines the primitive write operations accepted by the store
// and an ordered Batch builder for composing them into one atomic submission.
package tx

import (
	"fmt"
	"maps"
	"strings"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
)

// Action is the kind of a primitive operation.
type Action string

// Supported actions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionLink   Action = "link"
	ActionUnlink Action = "unlink"
	ActionDelete Action = "delete"
)

// Attrs holds attribute values keyed by the domain Attr* names.
// A nil value clears the attribute.
type Attrs map[string]any

// Op is a single primitive operation. Label and Target are set for
// link and unlink; Attrs for create and update.
type Op struct {
	Action Action      `json:"action"`
	Kind   domain.Kind `json:"kind"`
	ID     string      `json:"id"`
	Attrs  Attrs       `json:"attrs,omitempty"`
	Label  string      `json:"label,omitempty"`
	Target string      `json:"target,omitempty"`
}

// String renders the op for logs, e.g. "link pieces/p1.parts->x".
func (o Op) String() string {
	switch o.Action {
	case ActionLink, ActionUnlink:
		return fmt.Sprintf("%s %s/%s.%s->%s", o.Action, o.Kind, o.ID, o.Label, o.Target)
	default:
		return fmt.Sprintf("%s %s/%s", o.Action, o.Kind, o.ID)
	}
}

// Batch is an ordered list of operations applied all-or-nothing.
type Batch struct {
	ops []Op
}

// New returns an empty batch.
func New() *Batch {
	return &Batch{}
}

// Create adds a create op. The record must not already exist.
func (b *Batch) Create(kind domain.Kind, id string, attrs Attrs) *Batch {
	b.ops = append(b.ops, Op{Action: ActionCreate, Kind: kind, ID: id, Attrs: maps.Clone(attrs)})
	return b
}

// Update adds an update op that merges attrs into an existing record.
func (b *Batch) Update(kind domain.Kind, id string, attrs Attrs) *Batch {
	b.ops = append(b.ops, Op{Action: ActionUpdate, Kind: kind, ID: id, Attrs: maps.Clone(attrs)})
	return b
}

// Link adds an edge from kind/id along label to target.
func (b *Batch) Link(kind domain.Kind, id, label, target string) *Batch {
	b.ops = append(b.ops, Op{Action: ActionLink, Kind: kind, ID: id, Label: label, Target: target})
	return b
}

// Unlink removes the edge from kind/id along label to target.
func (b *Batch) Unlink(kind domain.Kind, id, label, target string) *Batch {
	b.ops = append(b.ops, Op{Action: ActionUnlink, Kind: kind, ID: id, Label: label, Target: target})
	return b
}

// Delete removes the record and every edge touching it.
func (b *Batch) Delete(kind domain.Kind, id string) *Batch {
	b.ops = append(b.ops, Op{Action: ActionDelete, Kind: kind, ID: id})
	return b
}

// Append adds all ops of other after the ops of b.
func (b *Batch) Append(other *Batch) *Batch {
	if other != nil {
		b.ops = append(b.ops, other.ops...)
	}
	return b
}

// Ops returns a copy of the batch's operations in order.
func (b *Batch) Ops() []Op {
	out := make([]Op, len(b.ops))
	copy(out, b.ops)
	return out
}

// Len returns the number of operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Empty reports whether the batch has no operations.
func (b *Batch) Empty() bool {
	return len(b.ops) == 0
}

// Kinds returns the distinct record kinds touched by the batch, including
// the target side of links.
func (b *Batch) Kinds() []domain.Kind {
	seen := make(map[domain.Kind]bool)
	var out []domain.Kind
	add := func(k domain.Kind) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, op := range b.ops {
		add(op.Kind)
		if op.Label != "" {
			if rel, ok := domain.LookupRelation(op.Kind, op.Label); ok {
				add(rel.To)
			}
		}
	}
	return out
}

// Validate checks the structure of every op: known kinds and actions,
// non-empty ids and relation labels declared for the kind.
func (b *Batch) Validate() error {
	for i, op := range b.ops {
		if err := op.validate(); err != nil {
			return domainerrors.Wrapf(err, domainerrors.CodeTransaction, "op %d (%s) is invalid", i, op)
		}
	}
	return nil
}

func (o Op) validate() error {
	if !o.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", o.Kind)
	}
	if strings.TrimSpace(o.ID) == "" {
		return domainerrors.New("empty id")
	}
	if strings.ContainsRune(o.ID, ':') || strings.ContainsRune(o.Target, ':') {
		return domainerrors.New("ids may not contain ':'")
	}
	switch o.Action {
	case ActionCreate, ActionUpdate:
		for k := range o.Attrs {
			if k == domain.AttrID {
				return fmt.Errorf("attribute %q is reserved", k)
			}
		}
	case ActionDelete:
	case ActionLink, ActionUnlink:
		if _, ok := domain.LookupRelation(o.Kind, o.Label); !ok {
			return fmt.Errorf("unknown relation %s.%s", o.Kind, o.Label)
		}
		if strings.TrimSpace(o.Target) == "" {
			return domainerrors.New("empty link target")
		}
	default:
		return fmt.Errorf("unknown action %q", o.Action)
	}
	return nil
}
