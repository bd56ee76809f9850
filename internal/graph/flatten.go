package graph

// FlattenKeys yields the leaves of an arbitrarily nested key structure,
// treating only []Key and []any as recursive containers — the Go analogue
// of flatten(seq, container=list), which treats exactly one container type
// as recursive and yields everything else (including tuples/keys) as a
// leaf.
//
// Callers that already hold a flat []Key need not use this; it exists for
// call sites that accept heterogeneous "one key, or a list of keys, or a
// nested list of keys" arguments, matching cull/fuse_linear/fuse's
// `keys` parameter in the source spec.
func FlattenKeys(nested ...any) []Key {
	var out []Key
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case Key:
			out = append(out, t)
		case []Key:
			for _, k := range t {
				out = append(out, k)
			}
		case []any:
			for _, item := range t {
				walk(item)
			}
		}
	}
	for _, n := range nested {
		walk(n)
	}
	return out
}
