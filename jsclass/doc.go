// Package jsclass exposes the class package to JavaScript through goja.
//
// Scripts get a global Class that defines classes with Class(props),
// new Class(props) or Class.extend(props). Constructors work with or
// without new, carry prototype, superConstructor and properties, and have
// their own extend. Instances and prototypes are live views of class
// objects: member functions see this._super while they run, instances have
// mixin and destruct, and writes go through the property schema. Script
// objects and arrays stored on instances are kept by reference.
package jsclass
