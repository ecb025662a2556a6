// Package gen turns XML Schema types into Go classes.
//
// # Architecture
//
// The code generation pipeline follows this flow:
//
//	XSD files (fhir-base.xsd, patient.xsd, ...)
//	        ↓
//	   load.Map (schema type map)
//	        ↓
//	   Builder (one Class per entry)
//	        ↓
//	   Graph (validated classes)
//	        ↓
//	   JenniferGenerator + TemplateWriter
//	        ↓
//	   Generated code (fhir/)
//
// # Key Types
//
//   - Class: name, kind, properties, parent, interfaces and methods of one type
//   - Property: one field of a class with its Go type and occurrence
//   - Builder: walks a type fragment and assembles its Class
//   - Graph: all classes of a schema, validated together
//   - Config: generation settings, passed explicitly to every component
//
// # Walking
//
// The Builder visits a fragment at three levels sharing one dispatch table.
// At class level it collects properties, documentation and content wrappers.
// Content wrappers recurse until an extension or restriction is found, which
// links the class to its base type (the first link wins) and harvests the
// properties declared under it.
//
// # Error Handling
//
// The package uses structured error types:
//
//   - SchemaError: a type that cannot become a class
//   - ConfigError: invalid options
//   - GenerationError: rendering or writing failures
//   - InputError: classifier input without a usable name
//   - PropertyConflictError: a property name declared twice on a class
//
// Example error handling:
//
//	if err := graph.Gen(ctx); err != nil {
//		if gen.IsGenerationError(err) {
//			// handle generation error
//		}
//	}
package gen
