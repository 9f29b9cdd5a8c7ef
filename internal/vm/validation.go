package vm

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Rule is a pure check over current property values. It returns ok=false
// and a user-facing message when the check fails.
type Rule func() (message string, ok bool)

// ValidationResult is the outcome of one pass over the registered rules.
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validator evaluates rules in declaration order. The first failing rule
// supplies the message.
type Validator struct {
	rules []Rule
	last  ValidationResult
}

func NewValidator() *Validator {
	return &Validator{last: ValidationResult{Valid: true}}
}

func (v *Validator) Register(rules ...Rule) {
	for _, r := range rules {
		if r == nil {
			panic("vm: nil validation rule")
		}
		v.rules = append(v.rules, r)
	}
}

func (v *Validator) Revalidate() ValidationResult {
	res := ValidationResult{Valid: true}
	for _, r := range v.rules {
		if msg, ok := r(); !ok {
			res = ValidationResult{Valid: false, Message: msg}
			break
		}
	}
	v.last = res
	return res
}

// Last returns the result of the most recent Revalidate.
func (v *Validator) Last() ValidationResult { return v.last }

func (v *Validator) Len() int { return len(v.rules) }

// Check builds a rule from a predicate and a fixed message.
func Check(message string, pass func() bool) Rule {
	return func() (string, bool) {
		if pass() {
			return "", true
		}
		return message, false
	}
}

// Required fails when the trimmed value is empty.
func Required(field string, p *Property[string]) Rule {
	return Check(field+" is required", func() bool {
		return strings.TrimSpace(p.Get()) != ""
	})
}

// MaxLength fails when the value has more than n runes.
func MaxLength(field string, p *Property[string], n int) Rule {
	return Check(fmt.Sprintf("%s must be at most %d characters", field, n), func() bool {
		return utf8.RuneCountInString(p.Get()) <= n
	})
}

// Matches fails when a non-empty value does not match re. Empty values pass
// so the rule composes with Required.
func Matches(field string, p *Property[string], re *regexp.Regexp, message string) Rule {
	if message == "" {
		message = field + " is not valid"
	}
	return Check(message, func() bool {
		v := strings.TrimSpace(p.Get())
		return v == "" || re.MatchString(v)
	})
}

// OneOf fails when the value is not in allowed.
func OneOf(field string, p *Property[string], allowed ...string) Rule {
	return Check(fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", ")), func() bool {
		v := p.Get()
		for _, a := range allowed {
			if v == a {
				return true
			}
		}
		return false
	})
}

// IntRange fails when the value is outside [lo, hi].
func IntRange(field string, p *Property[int], lo, hi int) Rule {
	return Check(fmt.Sprintf("%s must be between %d and %d", field, lo, hi), func() bool {
		v := p.Get()
		return v >= lo && v <= hi
	})
}

// Selected fails when no option key has been chosen.
func Selected(field string, p *Property[string]) Rule {
	return Check(field+" must be selected", func() bool { return p.Get() != "" })
}

// RequiredTime fails when the time is zero.
func RequiredTime(field string, p *Property[time.Time]) Rule {
	return Check(field+" is required", func() bool { return !p.Get().IsZero() })
}

// NotBefore fails when both times are set and later is before earlier.
func NotBefore(laterField string, later, earlier *Property[time.Time], earlierField string) Rule {
	return Check(fmt.Sprintf("%s cannot be before %s", laterField, earlierField), func() bool {
		l, e := later.Get(), earlier.Get()
		return l.IsZero() || e.IsZero() || !l.Before(e)
	})
}
