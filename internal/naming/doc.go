// Package naming derives accessor method names from property names.
//
// Property names may be camelCase, PascalCase, snake_case or kebab-case.
// They are tokenized on case transitions and separators and joined back
// in PascalCase, so "first_name", "firstName" and "FirstName" all yield
// the getter "GetFirstName" and the setter "SetFirstName".
package naming
