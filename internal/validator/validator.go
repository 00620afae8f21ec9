package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const DateLayout = "2006-01-02"

var (
	RgxEmail = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	RgxDate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

type Validator struct {
	Errors      []string          `json:"errors,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func (v *Validator) HasErrors() bool {
	return len(v.Errors) != 0 || len(v.FieldErrors) != 0
}

func (v *Validator) AddError(message string) {
	v.Errors = append(v.Errors, message)
}

// AddFieldError keeps the first message reported for a field.
func (v *Validator) AddFieldError(key, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = map[string]string{}
	}
	if _, exists := v.FieldErrors[key]; !exists {
		v.FieldErrors[key] = message
	}
}

func (v *Validator) Check(ok bool, message string) {
	if !ok {
		v.AddError(message)
	}
}

func (v *Validator) CheckField(ok bool, key, message string) {
	if !ok {
		v.AddFieldError(key, message)
	}
}

// Err returns v as an error when it holds failures, nil otherwise.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

func (v *Validator) Error() string {
	parts := make([]string, 0, len(v.Errors)+len(v.FieldErrors))
	parts = append(parts, v.Errors...)

	keys := maps.Keys(v.FieldErrors)
	slices.Sort(keys)
	for _, k := range keys {
		parts = append(parts, k+": "+v.FieldErrors[k])
	}

	return strings.Join(parts, "; ")
}

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

func MaxRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

func IsEmail(value string) bool {
	return Matches(value, RgxEmail)
}

// IsDate reports whether value has the YYYY-MM-DD shape and names a real day.
func IsDate(value string) bool {
	if !Matches(value, RgxDate) {
		return false
	}
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

// ParseIDList parses a comma separated list of integer ids. Blank tokens are
// skipped and an empty input yields nil.
func ParseIDList(s string) ([]int, error) {
	var ids []int
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid user id: %s", tok)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
