package union

import (
	"log/slog"
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultResolver is the process-wide resolver used by Wrap.
var DefaultResolver = NewResolver()

// Handle converts between one alternative type and one union type.
// Handles are immutable and shared by every caller of Resolve.
type Handle struct {
	Union       reflect.Type
	Alternative reflect.Type
	Index       int
}

// Into wraps v, which must be of the handle's alternative type (or implement
// it, for interface alternatives), into a new union value.
func (h *Handle) Into(v any) (Union, error) {
	if v == nil {
		if !nilable(h.Alternative) {
			return nil, newError(ErrCodeUnsupportedAlternative, h.Union, h.Alternative,
				"nil is not a valid %v", h.Alternative)
		}
	} else if t := reflect.TypeOf(v); t != h.Alternative &&
		!(h.Alternative.Kind() == reflect.Interface && t.Implements(h.Alternative)) {
		return nil, newError(ErrCodeUnsupportedAlternative, h.Union, t,
			"handle converts %v", h.Alternative)
	}

	ptr := reflect.New(h.Union)
	if err := ptr.Interface().(Assigner).Assign(h.Index, v); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface().(Union), nil
}

// From extracts the payload of u, which must currently hold the handle's
// alternative.
func (h *Handle) From(u Union) (any, error) {
	if u.Index() != h.Index {
		return nil, newError(ErrCodeDiscriminantMismatch, h.Union, h.Alternative,
			"union holds alternative %d, not %d", u.Index(), h.Index)
	}
	return u.Value(), nil
}

type handleKey struct {
	union       reflect.Type
	alternative reflect.Type
}

// Resolver finds and caches conversion handles keyed by
// (union type, alternative type). It is safe for concurrent use; a cache
// miss may be computed by several goroutines at once, but only the first
// stored handle is ever returned.
type Resolver struct {
	handles      *xsync.MapOf[handleKey, *Handle]
	alternatives *xsync.MapOf[reflect.Type, []reflect.Type]
	logger       *slog.Logger
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		handles:      xsync.NewMapOf[handleKey, *Handle](),
		alternatives: xsync.NewMapOf[reflect.Type, []reflect.Type](),
	}
}

// WithLogger sets the logger used for cache diagnostics. Nil means
// slog.Default().
func (r *Resolver) WithLogger(logger *slog.Logger) *Resolver {
	r.logger = logger
	return r
}

func (r *Resolver) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Alternatives returns the declared alternatives of unionType.
// Fails with ErrNoConversionAvailable if unionType is not a tagged union.
func (r *Resolver) Alternatives(unionType reflect.Type) ([]reflect.Type, error) {
	if alts, ok := r.alternatives.Load(unionType); ok {
		return alts, nil
	}
	if !IsUnionType(unionType) {
		return nil, newError(ErrCodeNoConversion, unionType, nil, "%v is not a tagged union", unionType)
	}
	alts := reflect.Zero(unionType).Interface().(Union).Alternatives()
	alts, _ = r.alternatives.LoadOrStore(unionType, alts)
	return alts, nil
}

// Resolve returns the handle converting values of type concrete into
// unionType. Fails with ErrNoConversionAvailable when concrete is not an
// alternative. Duplicate alternative types resolve to the lowest index.
func (r *Resolver) Resolve(unionType, concrete reflect.Type) (*Handle, error) {
	key := handleKey{union: unionType, alternative: concrete}
	if h, ok := r.handles.Load(key); ok {
		return h, nil
	}

	alts, err := r.Alternatives(unionType)
	if err != nil {
		return nil, err
	}
	index := -1
	for i, alt := range alts {
		if alt == concrete {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, newError(ErrCodeNoConversion, unionType, concrete,
			"%v is not an alternative", concrete)
	}

	h, loaded := r.handles.LoadOrStore(key, &Handle{
		Union:       unionType,
		Alternative: concrete,
		Index:       index,
	})
	if !loaded {
		r.log().Debug("conversion handle cached",
			"union", unionType.String(),
			"alternative", concrete.String(),
			"index", index)
	}
	return h, nil
}

// Len returns the number of cached handles.
func (r *Resolver) Len() int {
	return r.handles.Size()
}
