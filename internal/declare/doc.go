// Package declare provides the declaration readers the metadata source consumes.
//
// A Reader yields, per class, the ordered property declarations (each with
// subset-scoped data, strategy and validator declarations), class-level
// declarations, and the method set accessors may bind to.
//
// Two readers live here:
//   - TypeReader inspects registered Go types with reflect and parses struct tags
//   - FileReader loads the same declarations from a YAML file
//
// # Tag Syntax
//
// Dotted tag keys scope a declaration to a subset; the bare key is the default subset:
//
//	type User struct {
//	    _     struct{} `validate:"unique_email"`
//	    ID    int      `data:"id" data.create:"-"`
//	    Email string   `data:"email,nullable" validate:"playground,rule=email,blocker"`
//	    Tags  []Tag    `data:"tags" strategy:"no_arg_object_list,type=example.com/app/model.Tag"`
//	    name  string   `data:"name,getter=Name,setter=Rename"`
//	}
//
// data accepts the field name (empty means the property name) followed by
// getter=, setter= and nullable. An explicit empty getter= or setter= means
// there is no accessor for that direction. data:"-" skips the subset.
//
// validate lists validators separated by "|". Every validator is a name
// followed by comma separated options; priority=N and blocker are reserved.
//
// Option values are typed: true/false are booleans, numbers are int64 or
// float64, [a;b] is a list and everything else is a string. Single quotes
// protect commas and brackets: sep=','.
//
// Blank fields (_) carry class-level validate and strategy declarations.
package declare
