// Package typereg maps portable type identifiers to Go types and back.
//
// The registry is an explicit value rather than ambient reflection so it can
// be scoped per codec and replaced in tests. Identifiers are chosen in this
// order:
//
//  1. the type's own TypeName() string, when it implements Named
//  2. a builtin name for predeclared scalars ("string", "int32", "bytes", ...)
//  3. the Go qualified name "import/path.Name"
//  4. reflect.Type.String() for unnamed composite types ("[]string")
//
// Every registered type is also reachable through its short alias
// ("pkg.Name"). Aliases may collide across packages; resolving a colliding
// alias fails with ErrAmbiguousType rather than picking one.
package typereg

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/unicode/norm"
)

// Named is implemented by types that declare their own stable identifier.
// The method must be callable on the zero value.
type Named interface {
	TypeName() string
}

var (
	// ErrTypeNotFound indicates no registered type matches an identifier.
	ErrTypeNotFound = errors.New("type not found")

	// ErrAmbiguousType indicates an alias matches more than one registered type.
	ErrAmbiguousType = errors.New("ambiguous type identifier")
)

// DuplicateNameError is returned when a name is already bound to a
// different type.
type DuplicateNameError struct {
	Name     string
	Existing reflect.Type
	Incoming reflect.Type
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("type name %q already registered for %v, cannot register %v", e.Name, e.Existing, e.Incoming)
}

// Registry is a concurrency-safe, read-mostly name <-> type table.
// The zero value is not usable; call New or NewDefault.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]reflect.Type
	byType  map[reflect.Type]string
	aliases map[string][]reflect.Type
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName:  make(map[string]reflect.Type),
		byType:  make(map[reflect.Type]string),
		aliases: make(map[string][]reflect.Type),
	}
}

// NewDefault creates a registry pre-populated with the builtin scalars.
func NewDefault() *Registry {
	r := New()
	for name, t := range builtins {
		r.mustAdd(name, t)
	}
	return r
}

var (
	decimalType = reflect.TypeFor[apd.Decimal]()
	bytesType   = reflect.TypeFor[[]byte]()
)

var builtins = map[string]reflect.Type{
	"string":  reflect.TypeFor[string](),
	"bool":    reflect.TypeFor[bool](),
	"int":     reflect.TypeFor[int](),
	"int8":    reflect.TypeFor[int8](),
	"int16":   reflect.TypeFor[int16](),
	"int32":   reflect.TypeFor[int32](),
	"int64":   reflect.TypeFor[int64](),
	"uint":    reflect.TypeFor[uint](),
	"uint8":   reflect.TypeFor[uint8](),
	"uint16":  reflect.TypeFor[uint16](),
	"uint32":  reflect.TypeFor[uint32](),
	"uint64":  reflect.TypeFor[uint64](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
	"bytes":   bytesType,
	"decimal": decimalType,
}

var builtinNames = func() map[reflect.Type]string {
	m := make(map[reflect.Type]string, len(builtins))
	for name, t := range builtins {
		m[t] = name
	}
	return m
}()

// DeriveName computes the identifier a type would be registered under.
// It does not consult or modify any registry.
func DeriveName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if name := declaredName(t); name != "" {
		return norm.NFC.String(name)
	}
	if name, ok := builtinNames[t]; ok {
		return name
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return norm.NFC.String(t.PkgPath() + "." + t.Name())
	}
	if t.Kind() == reflect.Pointer && t.Elem().Name() != "" {
		return "*" + DeriveName(t.Elem())
	}
	return norm.NFC.String(t.String())
}

// declaredName calls TypeName on the zero value of t or *t.
func declaredName(t reflect.Type) string {
	namedType := reflect.TypeFor[Named]()
	if t.Kind() == reflect.Interface {
		return ""
	}
	switch {
	case t.Implements(namedType):
		if t.Kind() == reflect.Pointer {
			return reflect.New(t.Elem()).Interface().(Named).TypeName()
		}
		return reflect.Zero(t).Interface().(Named).TypeName()
	case reflect.PointerTo(t).Implements(namedType):
		return reflect.New(t).Interface().(Named).TypeName()
	}
	return ""
}

// shortAlias returns "pkg.Name" for a qualified name, or "" when the name
// has no import path.
func shortAlias(t reflect.Type, name string) string {
	if t.PkgPath() == "" || t.Name() == "" {
		return ""
	}
	alias := t.String()
	if alias == name {
		return ""
	}
	return alias
}

// Register adds t under its derived name and returns that name.
// Registering the same type twice is a no-op.
func (r *Registry) Register(t reflect.Type) (string, error) {
	return r.RegisterName(DeriveName(t), t)
}

// RegisterName adds t under an explicit name.
func (r *Registry) RegisterName(name string, t reflect.Type) (string, error) {
	if t == nil {
		return "", fmt.Errorf("register %q: nil type", name)
	}
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("register %v: empty type name", t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return name, r.addLocked(name, t)
}

// MustRegister registers the dynamic types of the given values and panics on
// conflicts. Intended for package init and tests.
func (r *Registry) MustRegister(values ...any) {
	for _, v := range values {
		t := reflect.TypeOf(v)
		if t == nil {
			panic("typereg: MustRegister(nil)")
		}
		if _, err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) mustAdd(name string, t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.addLocked(name, t); err != nil {
		panic(err)
	}
}

func (r *Registry) addLocked(name string, t reflect.Type) error {
	if existing, ok := r.byName[name]; ok {
		if existing == t {
			return nil
		}
		return &DuplicateNameError{Name: name, Existing: existing, Incoming: t}
	}
	if existingName, ok := r.byType[t]; ok && existingName != name {
		return fmt.Errorf("type %v already registered as %q", t, existingName)
	}

	r.byName[name] = t
	r.byType[t] = name
	if alias := shortAlias(t, name); alias != "" && !slices.Contains(r.aliases[alias], t) {
		r.aliases[alias] = append(r.aliases[alias], t)
	}
	return nil
}

// Resolve maps an identifier back to a type. Exact names win over aliases.
// Returns an error wrapping ErrTypeNotFound or ErrAmbiguousType.
func (r *Registry) Resolve(name string) (reflect.Type, error) {
	name = norm.NFC.String(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.byName[name]; ok {
		return t, nil
	}
	switch candidates := r.aliases[name]; len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrTypeNotFound, name)
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = r.byType[c]
		}
		slices.Sort(names)
		return nil, fmt.Errorf("%w: %q matches %s", ErrAmbiguousType, name, strings.Join(names, ", "))
	}
}

// NameOf returns the identifier t is registered under.
func (r *Registry) NameOf(t reflect.Type) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.byType[t]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %v is not registered", ErrTypeNotFound, t)
}

// Names returns all registered identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
