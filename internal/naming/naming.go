package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	getterPrefix = "Get"
	setterPrefix = "Set"
)

// Getter returns the synthesized getter method name for a property.
func Getter(property string) string {
	return getterPrefix + Pascal(property)
}

// Setter returns the synthesized setter method name for a property.
func Setter(property string) string {
	return setterPrefix + Pascal(property)
}

// Pascal converts an identifier to PascalCase.
// Acronyms keep their case: "httpURL" -> "HttpURL", "XMLParser" -> "XMLParser".
func Pascal(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, token := range Tokenize(s) {
		r, size := utf8.DecodeRuneInString(token)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(token[size:])
	}

	return b.String()
}

// Tokenize splits a camelCase, PascalCase, snake_case or kebab-case identifier into tokens.
// Examples:
//   - "OrderID" -> ["Order", "ID"]
//   - "customer_name" -> ["customer", "name"]
//   - "XMLParser" -> ["XML", "Parser"]
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}

	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()

			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// startsToken reports whether a new token begins at position i.
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	// "orderID": lower -> upper
	if !unicode.IsUpper(prev) {
		return true
	}

	// "XMLParser": end of an acronym, next rune is lower
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
