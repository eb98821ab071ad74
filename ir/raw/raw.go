package raw

import "fmt"

// ObjectRef uniquely identifies an indirect PDF object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// IsZero reports whether r has not been assigned an object number.
func (r ObjectRef) IsZero() bool { return r.Num == 0 }

// Object is the base interface for all raw PDF objects.
type Object interface {
	Type() string
	IsIndirect() bool
}

// Dictionary represents a PDF dictionary object.
type Dictionary interface {
	Object
	Get(key Name) (Object, bool)
	Set(key Name, value Object)
	Keys() []Name
	Len() int
}

// Array represents a PDF array object.
type Array interface {
	Object
	Get(index int) (Object, bool)
	Len() int
	Append(obj Object)
}

// Stream represents a PDF stream whose data is already encoded with the
// filters named in its dictionary.
type Stream interface {
	Object
	Dictionary() Dictionary
	RawData() []byte
	Length() int64
}

// Name represents a PDF name object.
type Name interface {
	Object
	Value() string
}

// String represents a PDF string (literal or hex).
type String interface {
	Object
	Value() []byte
	IsHex() bool
}

// Number represents a PDF numeric value.
type Number interface {
	Object
	Int() int64
	Float() float64
	IsInteger() bool
}

// Boolean represents a PDF boolean.
type Boolean interface {
	Object
	Value() bool
}

// Null represents the PDF null object.
type Null interface{ Object }

// Reference represents an indirect object reference.
type Reference interface {
	Object
	Ref() ObjectRef
}

// References returns every indirect reference reachable from obj without
// following the references themselves, in traversal order.
func References(obj Object) []ObjectRef {
	var out []ObjectRef
	var visit func(o Object)
	visit = func(o Object) {
		switch t := o.(type) {
		case Reference:
			out = append(out, t.Ref())
		case *ArrayObj:
			for _, it := range t.Items {
				visit(it)
			}
		case *DictObj:
			for _, k := range t.SortedKeys() {
				visit(t.KV[k])
			}
		case *StreamObj:
			visit(t.Dict)
		}
	}
	visit(obj)
	return out
}
