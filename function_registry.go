package taskcore

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrFunctionNotFound = errors.New("taskcore: function not registered")
	ErrFunctionExists   = errors.New("taskcore: function already registered")
)

// Function is a helper callable from rules.
type Function func(args ...any) (any, error)

// FunctionRegistry holds rule helpers by case-insensitive name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: map[string]Function{}}
}

// Register adds fn under name. Names are stored lower case.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if name == "" || fn == nil {
		return fmt.Errorf("taskcore: function %q needs a name and a body", name)
	}
	key := strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = map[string]Function{}
	}
	if _, ok := r.functions[key]; ok {
		return fmt.Errorf("%w: %q", ErrFunctionExists, name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a registry holding the same functions.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{functions: make(map[string]Function, len(r.functions))}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	var fn Function
	if r != nil {
		r.mu.RLock()
		fn = r.functions[strings.ToLower(name)]
		r.mu.RUnlock()
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
	}
	return fn(args...)
}

// Names returns the registered names, sorted.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ItemFunctions returns a registry that lets rules look at other members of
// collection. Each helper takes an item id and answers with ItemBindings:
//
//	item(id)      the member with id, or nil
//	parent(id)    its parent when the parent is a member, or nil
//	children(id)  its children that are members, in child order
func ItemFunctions(collection *Collection) *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("item", func(args ...any) (any, error) {
		item, err := memberArgument(collection, "item", args)
		if err != nil || item == nil {
			return nil, err
		}
		return ItemBindings(item), nil
	})
	_ = registry.Register("parent", func(args ...any) (any, error) {
		item, err := memberArgument(collection, "parent", args)
		if err != nil || item == nil {
			return nil, err
		}
		node, ok := item.(compositeNode)
		if !ok {
			return nil, nil
		}
		parent := node.composite().Parent()
		if parent == nil || !collection.Contains(parent.self) {
			return nil, nil
		}
		return ItemBindings(parent.self), nil
	})
	_ = registry.Register("children", func(args ...any) (any, error) {
		item, err := memberArgument(collection, "children", args)
		out := []any{}
		if err != nil || item == nil {
			return out, err
		}
		node, ok := item.(compositeNode)
		if !ok {
			return out, nil
		}
		for _, child := range node.composite().children {
			if collection.Contains(child.self) {
				out = append(out, ItemBindings(child.self))
			}
		}
		return out, nil
	})
	return registry
}

func memberArgument(collection *Collection, name string, args []any) (Item, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("taskcore: %s takes one item id, got %d arguments", name, len(args))
	}
	id, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("taskcore: %s item id must be a string, got %T", name, args[0])
	}
	item, err := collection.GetObjectByID(id)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, nil
	}
	return item, err
}

// callTarget splits the arguments of call(name, ...) into the function name
// and its arguments.
func callTarget(arguments []any) (string, []any, error) {
	if len(arguments) == 0 {
		return "", nil, errors.New("taskcore: call requires a function name")
	}
	name, ok := arguments[0].(string)
	if !ok {
		return "", nil, fmt.Errorf("taskcore: call name must be a string, got %T", arguments[0])
	}
	return name, arguments[1:], nil
}
