package jsonvalue

// Equal reports deep equality between a and b.
//
// Integers and floats compare numerically, so 1 equals 1.0. Booleans only
// equal booleans: true is never equal to 1. Object comparison ignores member
// order; array comparison does not.
func Equal(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		if a.kind == KindInteger && b.kind == KindInteger {
			return a.i == b.i
		}
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		return af == bf
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		equal := true
		a.obj.Each(func(k string, av Value) bool {
			bv, ok := b.obj.Get(k)
			if !ok || !Equal(av, bv) {
				equal = false
			}
			return equal
		})
		return equal
	}
	return false
}

// Contains reports whether any element of list equals v.
func Contains(list []Value, v Value) bool {
	for _, item := range list {
		if Equal(item, v) {
			return true
		}
	}
	return false
}
