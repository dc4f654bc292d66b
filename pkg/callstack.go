package quill

import (
	"fmt"
	"sort"
	"strings"
)

type RecordKind int

const (
	RecordProgram RecordKind = iota
	RecordFunction
)

func (k RecordKind) String() string {
	switch k {
	case RecordProgram:
		return "PROGRAM"
	case RecordFunction:
		return "FUNCTION"
	default:
		return fmt.Sprintf("RecordKind(%d)", int(k))
	}
}

// ActivationRecord holds the variables of one program or function
// invocation.
type ActivationRecord struct {
	Kind         RecordKind
	Name         string
	NestingLevel int

	members map[string]Value
}

func NewActivationRecord(kind RecordKind, name string, nestingLevel int) *ActivationRecord {
	return &ActivationRecord{
		Kind:         kind,
		Name:         name,
		NestingLevel: nestingLevel,
		members:      make(map[string]Value),
	}
}

func (r *ActivationRecord) Set(name string, v Value) {
	r.members[name] = v
}

func (r *ActivationRecord) Get(name string) (Value, bool) {
	v, ok := r.members[name]
	return v, ok
}

func (r *ActivationRecord) Len() int {
	return len(r.members)
}

func (r *ActivationRecord) Names() []string {
	names := make([]string, 0, len(r.members))
	for name := range r.members {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

func (r *ActivationRecord) String() string {
	var str strings.Builder

	fmt.Fprintf(&str, "%d: %s %s\n", r.NestingLevel, r.Kind, r.Name)
	for _, name := range r.Names() {
		fmt.Fprintf(&str, "    %-20s: %s\n", name, r.members[name])
	}

	return str.String()
}

type CallStack struct {
	records []*ActivationRecord
}

func NewCallStack() *CallStack {
	return &CallStack{}
}

// Push panics on a nil record.
func (s *CallStack) Push(r *ActivationRecord) {
	if r == nil {
		panic("quill: push of nil activation record")
	}

	s.records = append(s.records, r)
}

// Pop returns nil when the stack is empty.
func (s *CallStack) Pop() *ActivationRecord {
	if len(s.records) == 0 {
		return nil
	}

	r := s.records[len(s.records)-1]
	s.records = s.records[:len(s.records)-1]

	return r
}

// Peek returns nil when the stack is empty.
func (s *CallStack) Peek() *ActivationRecord {
	if len(s.records) == 0 {
		return nil
	}

	return s.records[len(s.records)-1]
}

func (s *CallStack) Len() int {
	return len(s.records)
}

func (s *CallStack) String() string {
	var str strings.Builder

	str.WriteString("CALL STACK\n")
	for i := len(s.records) - 1; i >= 0; i-- {
		str.WriteString(s.records[i].String())
	}

	return str.String()
}
