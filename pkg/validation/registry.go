package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-metaform/pkg/meta"
)

// CheckFunc reports whether a non-empty value is acceptable for node. doc is
// the whole metadata document so checks can consult sibling declarations.
type CheckFunc func(value Value, node meta.Node, doc *meta.Document) bool

// MessageFunc formats the error shown when a check rejects value.
type MessageFunc func(value Value, node meta.Node, doc *meta.Document) string

// CheckFactory builds a parameterised check from the text after the colon in
// references such as "minLength:3".
type CheckFactory func(arg string) (CheckFunc, error)

// Registry resolves the check and message references declared on fields.
// Checks built by a factory are kept per reference until the factory set
// changes.
type Registry struct {
	mu        sync.RWMutex
	checks    map[string]CheckFunc
	factories map[string]CheckFactory
	built     map[string]CheckFunc
	messages  map[string]MessageFunc
}

// NewRegistry returns a registry preloaded with the built-in checks and
// messages.
func NewRegistry() *Registry {
	reg := &Registry{
		checks:    make(map[string]CheckFunc),
		factories: make(map[string]CheckFactory),
		built:     make(map[string]CheckFunc),
		messages:  make(map[string]MessageFunc),
	}
	reg.registerBuiltins()
	return reg
}

// Register adds or replaces a named check.
func (r *Registry) Register(name string, check CheckFunc) {
	name = strings.TrimSpace(name)
	if r == nil || name == "" || check == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = check
}

// RegisterFactory adds a parameterised check family addressed as
// "<prefix>:<arg>".
func (r *Registry) RegisterFactory(prefix string, factory CheckFactory) {
	prefix = strings.TrimSpace(prefix)
	if r == nil || prefix == "" || factory == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[prefix] = factory
	clear(r.built)
}

// RegisterMessage adds or replaces a named message formatter.
func (r *Registry) RegisterMessage(name string, message MessageFunc) {
	name = strings.TrimSpace(name)
	if r == nil || name == "" || message == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[name] = message
}

// Check resolves a check reference. Exact names win over factory prefixes.
func (r *Registry) Check(ref string) (CheckFunc, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("validation: empty check reference")
	}
	r.mu.RLock()
	check, ok := r.checks[ref]
	if !ok {
		check, ok = r.built[ref]
	}
	var factory CheckFactory
	prefix, arg, hasArg := strings.Cut(ref, ":")
	if !ok && hasArg {
		factory = r.factories[prefix]
	}
	r.mu.RUnlock()

	if ok {
		return check, nil
	}
	if factory == nil {
		return nil, fmt.Errorf("validation: unknown check %q", ref)
	}
	check, err := factory(arg)
	if err != nil {
		return nil, fmt.Errorf("validation: check %q: %w", ref, err)
	}

	r.mu.Lock()
	r.built[ref] = check
	r.mu.Unlock()
	return check, nil
}

// Message resolves a message reference. "message:<text>" yields text as-is.
func (r *Registry) Message(ref string) (MessageFunc, error) {
	ref = strings.TrimSpace(ref)
	if literal, ok := strings.CutPrefix(ref, "message:"); ok {
		return func(Value, meta.Node, *meta.Document) string { return literal }, nil
	}
	r.mu.RLock()
	message, ok := r.messages[ref]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("validation: unknown message %q", ref)
	}
	return message, nil
}

// Verify reports every check or message reference in doc the registry cannot
// resolve.
func (r *Registry) Verify(doc *meta.Document) error {
	var errs []error
	doc.Walk(func(node meta.Node, path meta.Path) bool {
		field, ok := node.(meta.Interactive)
		if !ok {
			return true
		}
		spec := field.FieldSpec()
		if spec.Check != "" {
			if _, err := r.Check(spec.Check); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path.ID(), err))
			}
		}
		if spec.ErrMsg != "" {
			if _, err := r.Message(spec.ErrMsg); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path.ID(), err))
			}
		}
		return true
	})
	return errors.Join(errs...)
}

func (r *Registry) registerBuiltins() {
	r.Register("integer", eachValue(func(s string) bool {
		_, err := strconv.ParseInt(s, 10, 64)
		return err == nil
	}))
	r.Register("number", eachValue(func(s string) bool {
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	}))
	r.Register("email", eachValue(func(s string) bool {
		addr, err := mail.ParseAddress(s)
		return err == nil && addr.Address == s
	}))
	r.Register("isbn", eachValue(ValidISBN))

	r.RegisterFactory("pattern", func(arg string) (CheckFunc, error) {
		re, err := regexp.Compile("^(?:" + arg + ")$")
		if err != nil {
			return nil, err
		}
		return eachValue(re.MatchString), nil
	})
	r.RegisterFactory("minLength", lengthCheck(func(n, limit int) bool { return n >= limit }))
	r.RegisterFactory("maxLength", lengthCheck(func(n, limit int) bool { return n <= limit }))
	r.RegisterFactory("oneOf", func(arg string) (CheckFunc, error) {
		allowed := make(map[string]struct{})
		for _, entry := range strings.Split(arg, "|") {
			allowed[strings.TrimSpace(entry)] = struct{}{}
		}
		return eachValue(func(s string) bool {
			_, ok := allowed[s]
			return ok
		}), nil
	})

	r.RegisterMessage("integer", fieldMessage("The field %s must be a whole number."))
	r.RegisterMessage("number", fieldMessage("The field %s must be a number."))
	r.RegisterMessage("email", fieldMessage("The field %s must be an email address."))
	r.RegisterMessage("isbn", func(value Value, _ meta.Node, _ *meta.Document) string {
		return fmt.Sprintf("%s is not a valid ISBN.", value)
	})
}

func eachValue(accept func(string) bool) CheckFunc {
	return func(value Value, _ meta.Node, _ *meta.Document) bool {
		for _, v := range value.Values {
			if !accept(v) {
				return false
			}
		}
		return true
	}
}

// lengthCheck compares rune length for single values and the selection count
// for multi-valued fields.
func lengthCheck(cmp func(n, limit int) bool) CheckFactory {
	return func(arg string) (CheckFunc, error) {
		limit, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return nil, err
		}
		return func(value Value, _ meta.Node, _ *meta.Document) bool {
			if value.Multiple {
				return cmp(len(value.Values), limit)
			}
			return cmp(utf8.RuneCountInString(value.String()), limit)
		}, nil
	}
}

func fieldMessage(format string) MessageFunc {
	return func(_ Value, node meta.Node, _ *meta.Document) string {
		return fmt.Sprintf(format, DisplayName(node))
	}
}

// ValidISBN accepts ISBN-10 and ISBN-13 codes, ignoring hyphens and spaces.
func ValidISBN(s string) bool {
	digits := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, s)
	switch len(digits) {
	case 10:
		sum := 0
		for i, r := range digits {
			var d int
			switch {
			case r >= '0' && r <= '9':
				d = int(r - '0')
			case (r == 'X' || r == 'x') && i == 9:
				d = 10
			default:
				return false
			}
			sum += (10 - i) * d
		}
		return sum%11 == 0
	case 13:
		sum := 0
		for i, r := range digits {
			if r < '0' || r > '9' {
				return false
			}
			d := int(r - '0')
			if i%2 == 1 {
				d *= 3
			}
			sum += d
		}
		return sum%10 == 0
	}
	return false
}
