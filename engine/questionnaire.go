package engine

import (
	"fmt"
	"sync"

	"github.com/gofhir/fhirpath"
	"github.com/gofhir/fhirpath/types"
)

// responseMatcher evaluates path expressions against raw questionnaire
// response payloads. Compiled expressions are cached; the matcher is safe
// for concurrent use.
type responseMatcher struct {
	mu    sync.RWMutex
	cache map[string]*fhirpath.Expression
}

func newResponseMatcher() *responseMatcher {
	return &responseMatcher{cache: make(map[string]*fhirpath.Expression)}
}

// Match reports whether the payload satisfies the expression. An empty
// expression or a missing payload means the code match alone was decisive,
// so both report true. Compile and evaluation failures are returned, never
// swallowed into a false.
func (m *responseMatcher) Match(payload []byte, expression string) (bool, error) {
	if expression == "" || len(payload) == 0 {
		return true, nil
	}

	compiled, err := m.getOrCompile(expression)
	if err != nil {
		return false, fmt.Errorf("engine: compile expression %q: %w", expression, err)
	}

	result, err := compiled.Evaluate(payload)
	if err != nil {
		return false, fmt.Errorf("engine: evaluate expression %q: %w", expression, err)
	}
	return toBool(result), nil
}

func (m *responseMatcher) getOrCompile(expression string) (*fhirpath.Expression, error) {
	m.mu.RLock()
	compiled, ok := m.cache[expression]
	m.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := fhirpath.Compile(expression)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cache[expression] = compiled
	m.mu.Unlock()
	return compiled, nil
}

// toBool applies path truthiness: an empty collection is false, a single
// boolean is its value, any other non-empty collection is true.
func toBool(result types.Collection) bool {
	if len(result) == 0 {
		return false
	}
	if len(result) == 1 {
		if b, ok := result[0].(types.Boolean); ok {
			return b.Bool()
		}
	}
	return true
}
