package common

// AppendUnique appends the values of add that s does not already contain, keeping order.
func AppendUnique[S ~[]E, E comparable](s S, add ...E) S {
	for _, v := range add {
		found := false

		for _, have := range s {
			if have == v {
				found = true
				break
			}
		}

		if !found {
			s = append(s, v)
		}
	}

	return s
}
