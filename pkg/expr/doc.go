// Package expr provides CEL (Common Expression Language) environments for
// evaluating folder heuristics.
//
// Environments carry custom functions for:
//   - File path operations (pathBase, pathDir, pathExt, pathMatch)
//   - File content checks (fileContains)
//   - YAML content extraction (yamlPath)
//
// Folder expressions, see [NewFolderEnvironment], have access to variables:
//   - `files` (list<string>): All file paths found in the folder
//   - `dir` (string): The folder being configured
//   - `wizard` (bool): Whether the folder was created by a project wizard
package expr
