package mcp

const (
	name         = "folio"
	instructions = `MCP Server 'folio' reads and changes the content type assigned to files of a workspace.

Every file has a detected type, derived from its name. A file type override replaces the detected type until it is reverted.

When to use these tools:
- Finding out which type a file is treated as, and whether that comes from an override
- Forcing a file to be treated as another type (e.g. a Jenkinsfile as Groovy)
- Undoing overrides so files fall back to their detected types

Workflow:
1. Use 'get_file_type' or 'list_file_type_overrides' to see the current state.
2. Use 'override_file_type' to assign a type to one or more files.
3. Use 'revert_file_type_overrides' to remove overrides. Files without an override are ignored.

Paths are relative to the workspace root.
`
)
