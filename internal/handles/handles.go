// Package handles keeps Go values referenced by native code through an integer id: native callbacks receive the
// id as their user_data pointer, and look the value up.
//
// Go pointers can't be stored in native memory, ids can.
package handles

import (
	"sync"
)

var (
	mu     sync.Mutex
	values = make(map[uintptr]any)
	nextID uintptr = 1
)

// Register stores v and returns its id, never 0. v stays reachable until the id is released with Take or Delete.
func Register(v any) uintptr {
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	values[id] = v
	return id
}

// Lookup returns the value registered with id, or nil.
func Lookup(id uintptr) any {
	mu.Lock()
	defer mu.Unlock()
	return values[id]
}

// Take returns the value registered with id (or nil) and releases the id.
// It's used by callbacks fired only once.
func Take(id uintptr) any {
	mu.Lock()
	defer mu.Unlock()
	v := values[id]
	delete(values, id)
	return v
}

// Delete releases the id.
func Delete(id uintptr) {
	mu.Lock()
	defer mu.Unlock()
	delete(values, id)
}

// Count returns the number of registered values.
func Count() int {
	mu.Lock()
	defer mu.Unlock()
	return len(values)
}
