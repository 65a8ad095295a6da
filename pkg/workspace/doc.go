// Package workspace opens folders as folio workspaces.
//
// Opening a folder for the first time dispatches the registered
// configurators against it and records the result in .folio/project.yaml.
// Later opens load that document instead. A [Workspace] owns the folder's
// file type override store and the resolver that combines overrides with
// detected types.
package workspace
