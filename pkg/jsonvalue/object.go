package jsonvalue

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object that remembers key insertion order.
type Object struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{m: orderedmap.New[string, Value]()}
}

// ObjectOf builds an object from members, in order.
func ObjectOf(pairs ...Member) *Object {
	o := NewObject()
	for _, p := range pairs {
		o.Set(p.Key, p.Value)
	}
	return o
}

// Member is a single key/value entry of an object.
type Member struct {
	Key   string
	Value Value
}

// M is shorthand for building a Member.
func M(key string, value Value) Member { return Member{Key: key, Value: value} }

// Set stores value under key. Re-setting an existing key keeps its original position.
func (o *Object) Set(key string, value Value) {
	o.m.Set(key, value)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	return o.m.Get(key)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return o.m.Len()
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Each(func(k string, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Each calls fn for every member in insertion order until fn returns false.
func (o *Object) Each(fn func(key string, value Value) bool) {
	if o == nil {
		return
	}
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}
