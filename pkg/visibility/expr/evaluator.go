package expr

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-tourforms/pkg/visibility"
)

// Program is a compiled rule. Programs are immutable and safe to share.
type Program struct {
	source string
	root   node
	deps   []string
}

// Compile parses a rule such as `tourType == "International"` or
// `businessType == "B2B" && source in ("Referral", "Partner")`. An empty rule
// compiles to a program that always holds.
//
// Supported forms:
//   - truthiness: `transport`, `!country`
//   - comparisons against string, number, bool and null literals: `==`, `!=`
//   - membership: `field in ("a", "b")`
//   - composition: `&&`, `||`, parentheses
func Compile(rule string) (*Program, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return &Program{}, nil
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	root, deps, err := parse(tokens)
	if err != nil {
		return nil, err
	}
	return &Program{source: trimmed, root: root, deps: deps}, nil
}

// MustCompile is Compile for static rule tables; it panics on error.
func MustCompile(rule string) *Program {
	program, err := Compile(rule)
	if err != nil {
		panic(err)
	}
	return program
}

// String returns the normalised source.
func (p *Program) String() string {
	if p == nil {
		return ""
	}
	return p.source
}

// Dependencies lists the field names the rule reads, in first-use order.
// `extras.` references are included verbatim.
func (p *Program) Dependencies() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.deps...)
}

// Eval runs the program against ctx.
func (p *Program) Eval(ctx visibility.Context) (bool, error) {
	if p == nil || p.root == nil {
		return true, nil
	}
	return p.root.eval(ctx)
}

// Evaluator implements visibility.Evaluator on top of Compile, caching compiled
// programs by source. It is safe for concurrent use.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]*Program
}

// New constructs an Evaluator with an empty cache.
func New() *Evaluator {
	return &Evaluator{cache: make(map[string]*Program)}
}

var _ visibility.Evaluator = (*Evaluator)(nil)

// Default is the process-wide evaluator used by the validation engine.
var Default = New()

// Eval compiles (or reuses) rule and evaluates it. fieldPath is only used to
// annotate errors.
func (e *Evaluator) Eval(fieldPath, rule string, ctx visibility.Context) (bool, error) {
	program, err := e.program(rule)
	if err != nil {
		if fieldPath != "" {
			return false, fmt.Errorf("%s: %w", fieldPath, err)
		}
		return false, err
	}
	return program.Eval(ctx)
}

func (e *Evaluator) program(rule string) (*Program, error) {
	key := strings.TrimSpace(rule)
	e.mu.RLock()
	program, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := Compile(key)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	if e.cache == nil {
		e.cache = make(map[string]*Program)
	}
	e.cache[key] = program
	e.mu.Unlock()
	return program, nil
}

type node interface {
	eval(ctx visibility.Context) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind literalKind
	raw  string
}

func (l literal) matches(value any) (bool, error) {
	switch l.kind {
	case litNull:
		return isNull(value), nil
	case litBool:
		got, _ := coerceBool(value)
		return got == (l.raw == "true"), nil
	case litNumber:
		want, err := strconv.ParseFloat(l.raw, 64)
		if err != nil {
			return false, fmt.Errorf("visibility/expr: invalid number literal %q", l.raw)
		}
		got, ok := coerceNumber(value)
		return ok && got == want, nil
	case litString:
		return coerceString(value) == l.raw, nil
	default:
		return false, fmt.Errorf("visibility/expr: unsupported literal")
	}
}

type compareNode struct {
	identifier string
	negate     bool
	literal    literal
}

func (n compareNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.identifier)
	ok, err := n.literal.matches(value)
	if err != nil {
		return false, err
	}
	return ok != n.negate, nil
}

type inNode struct {
	identifier string
	set        []literal
}

func (n inNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.identifier)
	for _, lit := range n.set {
		ok, err := lit.matches(value)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

type truthyNode struct {
	identifier string
}

func (n truthyNode) eval(ctx visibility.Context) (bool, error) {
	value, ok := lookup(ctx, n.identifier)
	if !ok {
		return false, nil
	}
	return truthy(value), nil
}

func lookup(ctx visibility.Context, key string) (any, bool) {
	if strings.HasPrefix(strings.ToLower(key), "extras.") {
		return lookupMap(ctx.Extras, key[len("extras."):])
	}
	return lookupMap(ctx.Values, key)
}

func lookupMap(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, part := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}

func isNull(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case *time.Time:
		return v == nil
	}
	return false
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case time.Time:
		return !v.IsZero()
	case *time.Time:
		return v != nil && !v.IsZero()
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed, true
		}
		// radio values such as "Yes"/"No"
		switch strings.ToLower(trimmed) {
		case "yes", "y", "on":
			return true, true
		case "no", "n", "off":
			return false, true
		}
		return trimmed != "", true
	default:
		return truthy(value), true
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(time.DateOnly)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format(time.DateOnly)
	default:
		return fmt.Sprint(value)
	}
}
