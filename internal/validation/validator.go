package validation

import (
	"sort"
	"strings"
)

// Errors maps a field name to the reason it was rejected.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the invalid field names in stable order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Validator collects per-field failures. The first failure for a field wins.
type Validator struct {
	errs Errors
}

func New() *Validator {
	return &Validator{errs: Errors{}}
}

func (v *Validator) Valid() bool {
	return len(v.errs) == 0
}

func (v *Validator) AddError(field, message string) {
	if _, exists := v.errs[field]; exists {
		return
	}
	v.errs[field] = message
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

func (v *Validator) Required(field, value string) bool {
	ok := strings.TrimSpace(value) != ""
	v.Check(ok, field, "must not be empty")
	return ok
}

func (v *Validator) OneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field, "must be one of "+strings.Join(allowed, ", "))
}

// Err returns nil when every check passed.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	out := make(Errors, len(v.errs))
	for k, m := range v.errs {
		out[k] = m
	}
	return out
}
