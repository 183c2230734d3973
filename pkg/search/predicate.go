package search

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"strings"
)

type Op int

const (
	OpEq Op = iota
	OpNe
	OpContains
	OpGt
	OpLt
	OpGte
	OpLte
	OpExists
)

var opNames = map[Op]string{
	OpEq:       "eq",
	OpNe:       "ne",
	OpContains: "contains",
	OpGt:       "gt",
	OpLt:       "lt",
	OpGte:      "gte",
	OpLte:      "lte",
	OpExists:   "exists",
}

var opAliases = map[string]Op{
	"==": OpEq,
	"=":  OpEq,
	"!=": OpNe,
	"~":  OpContains,
	">":  OpGt,
	"<":  OpLt,
	">=": OpGte,
	"<=": OpLte,
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp accepts both the word and the symbolic spelling of an operator.
func ParseOp(s string) (Op, error) {
	if op, ok := opAliases[s]; ok {
		return op, nil
	}
	lower := strings.ToLower(s)
	for op, name := range opNames {
		if name == lower {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

// Predicate decides whether a span, seen together with its scope and
// resource, is selected.
type Predicate interface {
	Eval(m *Match) bool
	String() string
}

type leaf struct {
	field   Field
	op      Op
	literal model.AttributeValue
}

// NewLeaf validates field and literal up front so that evaluation can not
// fail. The literal is ignored for OpExists.
func NewLeaf(field string, op Op, literal model.AttributeValue) (Predicate, error) {
	f, err := ParseField(field)
	if err != nil {
		return nil, err
	}
	if _, ok := opNames[op]; !ok {
		return nil, &PredicateError{Field: field, Reason: fmt.Sprintf("unknown operator %d", int(op))}
	}
	if op == OpExists {
		return &leaf{field: f, op: op}, nil
	}
	if literal.IsEmpty() {
		return nil, &PredicateError{Field: field, Reason: fmt.Sprintf("operator %s needs a value", op)}
	}
	lit, err := f.literal(literal)
	if err != nil {
		return nil, &PredicateError{Field: field, Literal: literalText(literal), Reason: err.Error()}
	}
	if op == OpContains && !f.isAttribute() {
		if _, ok := lit.AsString(); !ok {
			return nil, &PredicateError{Field: field, Literal: literalText(literal), Reason: "contains needs a string field"}
		}
	}
	return &leaf{field: f, op: op, literal: lit}, nil
}

func (l *leaf) Eval(m *Match) bool {
	v, ok := l.field.value(m)
	if !ok {
		return false
	}
	if l.op == OpExists {
		return true
	}
	return compare(l.op, v, l.literal)
}

func (l *leaf) String() string {
	if l.op == OpExists {
		return fmt.Sprintf("%s exists", l.field)
	}
	return fmt.Sprintf("%s %s %s", l.field, l.op, literalText(l.literal))
}

func literalText(v model.AttributeValue) string {
	if s, ok := v.AsString(); ok {
		return fmt.Sprintf("%q", s)
	}
	if i, ok := v.AsInt(); ok {
		return fmt.Sprintf("%d", i)
	}
	if f, ok := v.AsDouble(); ok {
		return fmt.Sprintf("%g", f)
	}
	if b, ok := v.AsBool(); ok {
		return fmt.Sprintf("%t", b)
	}
	return v.Type.String()
}

// compare applies op to a present value. Values of incompatible variants
// never match, for ne as well as for the other operators.
func compare(op Op, v, lit model.AttributeValue) bool {
	switch op {
	case OpEq:
		c, ok := order(v, lit)
		return ok && c == 0
	case OpNe:
		c, ok := order(v, lit)
		return ok && c != 0
	case OpGt:
		c, ok := order(v, lit)
		return ok && ordered(v) && c > 0
	case OpLt:
		c, ok := order(v, lit)
		return ok && ordered(v) && c < 0
	case OpGte:
		c, ok := order(v, lit)
		return ok && ordered(v) && c >= 0
	case OpLte:
		c, ok := order(v, lit)
		return ok && ordered(v) && c <= 0
	case OpContains:
		return contains(v, lit)
	}
	return false
}

// ordered reports whether v admits gt, lt, gte and lte. Only numeric
// variants do.
func ordered(v model.AttributeValue) bool {
	switch v.Type {
	case model.ValueInt, model.ValueDouble:
		return true
	}
	return false
}

// order returns the sign of v - lit and whether the two are comparable.
func order(v, lit model.AttributeValue) (int, bool) {
	if a, ok := v.AsNumber(); ok {
		b, ok := lit.AsNumber()
		if !ok {
			return 0, false
		}
		if ai, ok := v.AsInt(); ok {
			if bi, ok := lit.AsInt(); ok {
				return cmpInt(ai, bi), true
			}
		}
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		case a == b:
			return 0, true
		}
		return 0, false
	}
	switch v.Type {
	case model.ValueString:
		a, _ := v.AsString()
		b, ok := lit.AsString()
		if !ok {
			return 0, false
		}
		return strings.Compare(a, b), true
	case model.ValueBool:
		a, _ := v.AsBool()
		b, ok := lit.AsBool()
		if !ok {
			return 0, false
		}
		if a == b {
			return 0, true
		}
		return 1, true
	case model.ValueBytes:
		a, _ := v.AsBytes()
		if b, ok := lit.AsBytes(); ok {
			return bytes.Compare(a, b), true
		}
		if s, ok := lit.AsString(); ok {
			b, err := hex.DecodeString(strings.TrimPrefix(s, "bytes:"))
			if err != nil {
				return 0, false
			}
			return bytes.Compare(a, b), true
		}
		return 0, false
	case model.ValueArray, model.ValueKvList:
		if v.Type != lit.Type {
			return 0, false
		}
		if v.Equal(lit) {
			return 0, true
		}
		return 1, true
	}
	return 0, false
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func contains(v, lit model.AttributeValue) bool {
	switch v.Type {
	case model.ValueString:
		a, _ := v.AsString()
		b, ok := lit.AsString()
		return ok && strings.Contains(a, b)
	case model.ValueArray:
		elems, _ := v.AsArray()
		for _, e := range elems {
			if c, ok := order(e, lit); ok && c == 0 {
				return true
			}
		}
		return false
	case model.ValueKvList:
		key, ok := lit.AsString()
		if !ok {
			return false
		}
		kvs, _ := v.AsKvList()
		_, found := model.Attributes(kvs).Get(key)
		return found
	}
	return false
}

type and struct {
	children []Predicate
}

// And matches when every child matches. An empty And matches everything.
func And(children ...Predicate) Predicate {
	return &and{children: children}
}

func (a *and) Eval(m *Match) bool {
	for _, c := range a.children {
		if !c.Eval(m) {
			return false
		}
	}
	return true
}

func (a *and) String() string {
	return join(a.children, " and ", "true")
}

type or struct {
	children []Predicate
}

// Or matches when any child matches. An empty Or matches nothing.
func Or(children ...Predicate) Predicate {
	return &or{children: children}
}

func (o *or) Eval(m *Match) bool {
	for _, c := range o.children {
		if c.Eval(m) {
			return true
		}
	}
	return false
}

func (o *or) String() string {
	return join(o.children, " or ", "false")
}

type not struct {
	child Predicate
}

func Not(child Predicate) Predicate {
	return &not{child: child}
}

func (n *not) Eval(m *Match) bool {
	return !n.child.Eval(m)
}

func (n *not) String() string {
	return "not (" + n.child.String() + ")"
}

// All matches every span.
func All() Predicate {
	return And()
}

func join(children []Predicate, sep, empty string) string {
	if len(children) == 0 {
		return empty
	}
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = "(" + c.String() + ")"
	}
	return strings.Join(parts, sep)
}
