package bus

import (
	"fmt"
	"strings"
)

// ValidateSubject checks a concrete subject: non-empty dot-separated tokens,
// no wildcards.
func ValidateSubject(subject string) error {
	if subject == "" {
		return fmt.Errorf("bus: empty subject")
	}
	for _, tok := range strings.Split(subject, ".") {
		if tok == "" {
			return fmt.Errorf("bus: subject %q has empty token", subject)
		}
		if tok == "*" || tok == ">" {
			return fmt.Errorf("bus: subject %q contains wildcard token %q", subject, tok)
		}
	}
	return nil
}

// ValidatePattern checks a subscription pattern. ">" is only legal as the
// final token.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("bus: empty pattern")
	}
	tokens := strings.Split(pattern, ".")
	for i, tok := range tokens {
		if tok == "" {
			return fmt.Errorf("bus: pattern %q has empty token", pattern)
		}
		if tok == ">" && i != len(tokens)-1 {
			return fmt.Errorf("bus: pattern %q has %q before the final token", pattern, ">")
		}
	}
	return nil
}

// Match reports whether subject matches pattern. "*" matches exactly one
// token; ">" matches one or more trailing tokens. The grammar is shared
// across backends so subscriptions behave identically in-memory and on NATS.
func Match(pattern, subject string) bool {
	ptoks := strings.Split(pattern, ".")
	stoks := strings.Split(subject, ".")

	for i, ptok := range ptoks {
		if ptok == ">" {
			// ">" must consume at least one token.
			return len(stoks) > i
		}
		if i >= len(stoks) {
			return false
		}
		if ptok != "*" && ptok != stoks[i] {
			return false
		}
	}
	return len(stoks) == len(ptoks)
}
