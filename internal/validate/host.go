package validate

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

type playground struct {
	validate *validator.Validate
	rule     string
}

// Playground adapts a go-playground/validator rule such as "email" or "min=3,max=10".
// nil is valid and never reaches the host validator. Each failed tag is
// reported under its tag name with the host message.
func Playground(v *validator.Validate, rule string) Validator {
	return &playground{validate: v, rule: rule}
}

func (p *playground) Validate(value any) Report {
	if IsNil(value) {
		return nil
	}

	err := p.validate.Var(value, p.rule)
	if err == nil {
		return nil
	}

	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return Violation(HostInvalid, err.Error())
	}

	var report Report
	for _, fe := range failures {
		report = report.Merge(Violation(fe.Tag(), fe.Error()))
	}

	return report
}

type host struct {
	check func(value any) map[string]string
}

// Host adapts a host validation function returning messages keyed by violation.
// nil is valid and never reaches check.
func Host(check func(value any) map[string]string) Validator {
	return &host{check: check}
}

func (h *host) Validate(value any) Report {
	if IsNil(value) {
		return nil
	}

	var report Report
	for k, m := range h.check(value) {
		report = report.Merge(Violation(k, m))
	}

	return report
}
