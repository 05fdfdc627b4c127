package class

import "sort"

// Table is a flat set of named members: a mixin source, or the ordinary
// methods and fields of a class definition.
type Table map[string]Value

const (
	hookConstruct  = "construct"
	hookDestruct   = "destruct"
	hookInit       = "init"
	memberToString = "toString"
)

// mix copies source into target. A delegating function that overrides a
// callable reachable from ref is wrapped by bind. Members target already
// owns are captured as they stand (static binding); new members resolve
// their ancestor on every call (dynamic binding). When ref is target itself
// the dynamic lookup starts at target's parent table, the one the new
// member shadows.
func mix(target *Object, source Table, ref *Object) {
	names := make([]string, 0, len(source))
	for name := range source {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == hookConstruct || name == hookDestruct {
			continue
		}
		value := source[name]
		fn := value.Function()
		if fn == nil {
			target.fields[name] = value
			continue
		}
		fn = fn.named(name)
		if ref != nil && fn.Delegates() && overridesCallable(ref, name) {
			mode := BindDynamic
			lookup := ref
			if target.Owns(name) {
				mode = BindStatic
			} else if ref == target {
				lookup = target.proto
			}
			if lookup != nil {
				fn = bind(name, fn, lookup, mode)
			}
		}
		target.fields[name] = newFunctionValue(fn)
	}
}

func overridesCallable(ref *Object, name string) bool {
	v, ok := ref.Lookup(name)
	return ok && v.IsCallable()
}
