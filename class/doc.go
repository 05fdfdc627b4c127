// Package class layers class semantics over an explicit prototype
// delegation model:
//   - Single inheritance via Class.Extend; Define starts from Base or from
//     Members.Extend.
//   - Construct hooks chain ancestor first, destruct hooks chain descendant
//     first, and init runs once after construction without chaining.
//   - Overriding members reach the implementation they shadow. NewSuperFunc
//     passes it as an explicit Super parameter; NewDelegatingFunc exposes it
//     through Object.Super while the member runs. Plain NewFunc members are
//     never wrapped.
//   - New overrides bind dynamically: the ancestor is looked up on every
//     call, so patching a parent prototype is observed by subclasses.
//     Overrides of a member the target already owns (stacked mixins) bind
//     statically to the member as it stood when the mixin was applied.
//   - Mixins merge flat member tables into a class at definition time or
//     into a single instance with Object.Mixin.
//   - Property schemas merge field by field down the class chain, so a
//     subclass can replace only a setter. Accessors may name a member that
//     is resolved at access time.
//
// The transient super slot is restored when a delegating member returns,
// including on error, so nested delegation at different chain depths on
// one object stays consistent. Objects are not safe for concurrent use.
package class
