// Package xsd provides the XML Schema vocabulary used by the fhirgen compiler.
//
// Schema fragments are plain [xmltree.Element] trees: a namespace-resolved
// name, a set of attributes and an ordered list of children. This package does
// not model XML Schema as Go structs. Instead it exposes the small set of
// lookups the class-model compiler needs while it walks a fragment:
//
//   - [KindOf] and [Children] drive node-kind dispatch.
//   - [Name], [BaseObjectName], [ExtensionBase] and [RestrictionBase] resolve
//     names and base-type references.
//   - [DocumentationOf] extracts annotation text.
//
// Only children in the XML Schema namespace take part in dispatch; elements
// from foreign namespaces (for example xhtml content inside documentation)
// are never returned by [Children].
//
// [xmltree.Element]: https://pkg.go.dev/aqwari.net/xml/xmltree#Element
package xsd
