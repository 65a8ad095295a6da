// Package configurators provides the built-in project configurators:
//
//   - gomod reports the module path of a Go module and enables the "go" facet.
//   - Rule configurators, declared in the configuration, enable facets and
//     report a module when a CEL rule matches the folder.
//   - default-overrides seeds file type overrides from glob patterns.
//
// Use [Register] to add them to a [configurator.Registry].
package configurators
