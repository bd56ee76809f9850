package graph

// Subs returns a new value identical to v except that every occurrence of
// the exact key is replaced by val. Matching requires type identity and
// equality (Key.Equal already encodes both: a string key and a tuple key
// can never compare equal, and tuple equality is element-wise and
// type-aware). Substitution recurses into task arguments and list items;
// a task's function slot is never substituted.
func Subs(v Value, key Key, val Value) Value {
	switch t := v.(type) {
	case KeyRef:
		if t.K.Equal(key) {
			return val
		}
		return v
	case List:
		items := make([]Value, len(t.Items))
		for i, it := range t.Items {
			items[i] = Subs(it, key, val)
		}
		return List{Items: items}
	case Task:
		if t.Fn == nil {
			return v
		}
		args := make([]Value, len(t.Args))
		for i, a := range t.Args {
			args[i] = Subs(a, key, val)
		}
		return Task{Fn: t.Fn, Args: args}
	default:
		// Literal, or any other opaque payload: never matches a key.
		return v
	}
}
