package evaluator

import (
	"github.com/lumen-lang/lumen/internal/ast"
)

// Kind tags the variant of a Value (spec.md §3).
type Kind int

const (
	KNull Kind = iota
	KBool
	KInt
	KStr
	KList
	KObject
	KFunc
)

// TypeName returns the canonical printable type name used in errors and by
// the universal "type" type-function (spec.md §4.1).
func (k Kind) TypeName() string {
	switch k {
	case KNull:
		return "null"
	case KBool:
		return "bool"
	case KInt:
		return "int"
	case KStr:
		return "string"
	case KList:
		return "list"
	case KObject:
		return "object"
	case KFunc:
		return "func"
	default:
		return "unknown"
	}
}

// Value is the tagged-union runtime value (spec.md §3). Null/Bool/Int/Str
// carry their payload directly and are copied by value; List/Object/Func
// carry a pointer to shared, mutable backing storage — copying a Value
// copies the handle, not the storage, which is exactly the aliasing scripts
// observe.
type Value struct {
	Kind    Kind
	BoolV   bool
	IntV    int64
	StrV    string
	ListV   *ListValue
	ObjectV *ObjectValue
	FuncV   *FuncValue
}

func NullValue() Value       { return Value{Kind: KNull} }
func BoolValue(b bool) Value { return Value{Kind: KBool, BoolV: b} }
func IntValue(n int64) Value { return Value{Kind: KInt, IntV: n} }
func StrValue(s string) Value { return Value{Kind: KStr, StrV: s} }

func ListValueOf(items []SourcedValue) Value {
	return Value{Kind: KList, ListV: &ListValue{Items: items}}
}

func ObjectValueOf(m *ObjectValue) Value {
	return Value{Kind: KObject, ObjectV: m}
}

func FuncValueOf(f *FuncValue) Value {
	return Value{Kind: KFunc, FuncV: f}
}

func BuiltinValueOf(name string, fn BuiltinFn) Value {
	return Value{Kind: KFunc, FuncV: &FuncValue{Name: &name, Builtin: fn}}
}

// ListValue is the shared, mutable backing storage for a List value.
// Pointer identity is the reference-equality primitive for lists.
type ListValue struct {
	Items []SourcedValue
}

// ObjectValue is the shared, mutable backing storage for an Object value.
// Keys are kept sorted so iteration and printing are deterministic
// (spec.md invariant 4).
type ObjectValue struct {
	keys   []string
	values map[string]SourcedValue
}

func NewObject() *ObjectValue {
	return &ObjectValue{values: make(map[string]SourcedValue)}
}

func (o *ObjectValue) Get(key string) (SourcedValue, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set inserts or overwrites key, keeping keys sorted.
func (o *ObjectValue) Set(key string, v SourcedValue) {
	if _, exists := o.values[key]; !exists {
		o.insertSorted(key)
	}
	o.values[key] = v
}

func (o *ObjectValue) insertSorted(key string) {
	i := 0
	for i < len(o.keys) && o.keys[i] < key {
		i++
	}
	o.keys = append(o.keys, "")
	copy(o.keys[i+1:], o.keys[i:])
	o.keys[i] = key
}

// Keys returns the object's keys in sorted order.
func (o *ObjectValue) Keys() []string { return o.keys }

func (o *ObjectValue) Len() int { return len(o.keys) }

// BuiltinFn is the signature of a native function. this is the receiver
// (spec.md's SourcedValue.source consumed at the call site), nil when the
// call had no receiver.
type BuiltinFn func(ctx *Context, this *Value, args []SourcedValue) (SourcedValue, error)

// FuncValue represents either a user-defined function (Body != nil) or a
// built-in function (Builtin != nil). Keeping both under one Value kind
// (KFunc) matches spec.md's unified "func" type name for both.
type FuncValue struct {
	Name        *string
	Params      []ast.Expr
	CollectArgs bool
	Body        *ast.Block
	Closure     *ScopeStack

	Builtin BuiltinFn
}

func (f *FuncValue) IsBuiltin() bool { return f.Builtin != nil }

// DebugName renders the function's display name for print (spec.md §4.6).
func (f *FuncValue) DebugName() string {
	if f.Name != nil {
		return *f.Name
	}
	return "anonymous"
}

// SourcedValue pairs a value with the optional receiver it was obtained
// from (spec.md §3). Source is non-nil only immediately after a property,
// index-on-object, or type-property access, and is consumed as `this` only
// if that SourcedValue is the callee of an immediate Call.
type SourcedValue struct {
	V      Value
	Source *Value
}

func Sourced(v Value) SourcedValue { return SourcedValue{V: v} }

func SourcedFrom(v Value, source Value) SourcedValue {
	return SourcedValue{V: v, Source: &source}
}

// RefEq implements pointer equality on shared handles (spec.md §4.1). Two
// values of different kinds, or of a kind without a shared handle, are
// never ref-equal.
func RefEq(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KList:
		return a.ListV == b.ListV
	case KObject:
		return a.ObjectV == b.ObjectV
	case KFunc:
		return a.FuncV == b.FuncV
	default:
		return false
	}
}

// DeepEqual implements the structural equality used by "==" (spec.md
// §4.4): pointer-equal containers short-circuit true, otherwise element-
// wise/field-wise comparison. Values of different kinds are never equal.
func DeepEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KNull:
		return true
	case KBool:
		return a.BoolV == b.BoolV
	case KInt:
		return a.IntV == b.IntV
	case KStr:
		return a.StrV == b.StrV
	case KList:
		if a.ListV == b.ListV {
			return true
		}
		if len(a.ListV.Items) != len(b.ListV.Items) {
			return false
		}
		for i := range a.ListV.Items {
			if !DeepEqual(a.ListV.Items[i].V, b.ListV.Items[i].V) {
				return false
			}
		}
		return true
	case KObject:
		if a.ObjectV == b.ObjectV {
			return true
		}
		if a.ObjectV.Len() != b.ObjectV.Len() {
			return false
		}
		for _, k := range a.ObjectV.Keys() {
			av, _ := a.ObjectV.Get(k)
			bv, ok := b.ObjectV.Get(k)
			if !ok || !DeepEqual(av.V, bv.V) {
				return false
			}
		}
		return true
	case KFunc:
		return a.FuncV == b.FuncV
	default:
		return false
	}
}

// CopyForStore implements the scope stack's copy policy (spec.md §4.2):
// scalars are independent after assignment, containers are shared by
// handle. Since Value already stores scalars by value and containers by
// pointer, a plain Go value copy already implements this policy — the
// function exists to name the policy at each call site.
func CopyForStore(v Value) Value { return v }

func debugTypeString(v Value) string {
	return v.Kind.TypeName()
}
