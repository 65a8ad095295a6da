package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/folio/pkg/override"
)

var ErrNoPaths = errors.New("no paths given")

// GetFileTypeParams defines parameters for the get_file_type tool.
type GetFileTypeParams struct {
	Path string `json:"path" jsonschema:"the file path, relative to the workspace root"`
}

// FileType describes the type of a single file.
type FileType struct {
	Path     string `json:"path"`
	Token    string `json:"token"`
	Type     string `json:"type"`
	Source   string `json:"source"`
	Detected string `json:"detected"`
}

// ListOverridesParams defines parameters for the list_file_type_overrides tool.
type ListOverridesParams struct{}

// Override is a single file type override.
type Override struct {
	Path  string `json:"path"`
	Token string `json:"token"`
	Type  string `json:"type"`
}

// ListOverridesResult contains the result of listing overrides.
type ListOverridesResult struct {
	Overrides []Override `json:"overrides"`
	Count     int        `json:"count"`
}

// OverrideParams defines parameters for the override_file_type tool.
type OverrideParams struct {
	Type  string   `json:"type"  jsonschema:"the content type to assign, e.g. Groovy or YAML"`
	Paths []string `json:"paths" jsonschema:"the file paths, relative to the workspace root"`
}

// OverrideResult contains the result of setting overrides.
type OverrideResult struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Paths   []string `json:"paths"`
	Known   bool     `json:"known"`
}

// RevertParams defines parameters for the revert_file_type_overrides tool.
type RevertParams struct {
	Paths []string `json:"paths" jsonschema:"the file paths, relative to the workspace root"`
}

// RevertFailure describes a file whose override could not be removed.
type RevertFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// RevertResult contains the result of reverting overrides.
type RevertResult struct {
	Message string          `json:"message"`
	Removed []string        `json:"removed"`
	Skipped []string        `json:"skipped"`
	Failed  []RevertFailure `json:"failed"`
}

func textResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}

func (s *Server) fileIDs(paths []string) ([]override.FileID, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}

	ids := make([]override.FileID, 0, len(paths))

	for _, p := range paths {
		id, err := s.ws.FileID(p)
		if err != nil {
			return nil, err //nolint:wrapcheck // Already descriptive.
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func (s *Server) handleGetFileType(
	_ context.Context,
	_ *mcp.CallToolRequest,
	in GetFileTypeParams,
) (*mcp.CallToolResult, FileType, error) {
	id, err := s.ws.FileID(in.Path)
	if err != nil {
		return nil, FileType{}, err //nolint:wrapcheck // Already descriptive.
	}

	res := s.ws.Types().Effective(id)
	out := FileType{
		Path:     id.Path,
		Token:    id.Token,
		Type:     res.Type,
		Source:   res.Source.String(),
		Detected: s.ws.Types().Detected(id),
	}

	return textResult(fmt.Sprintf("%s is %s (%s).", out.Path, out.Type, out.Source)), out, nil
}

func (s *Server) handleListOverrides(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListOverridesParams,
) (*mcp.CallToolResult, ListOverridesResult, error) {
	entries := s.ws.Overrides().List()

	out := ListOverridesResult{
		Overrides: make([]Override, 0, len(entries)),
		Count:     len(entries),
	}

	for _, e := range entries {
		out.Overrides = append(out.Overrides, Override{Path: e.File.Path, Token: e.File.Token, Type: e.Type})
	}

	return textResult(fmt.Sprintf("Found %d file type overrides.", out.Count)), out, nil
}

func (s *Server) handleOverride(
	_ context.Context,
	_ *mcp.CallToolRequest,
	in OverrideParams,
) (*mcp.CallToolResult, OverrideResult, error) {
	ids, err := s.fileIDs(in.Paths)
	if err != nil {
		return nil, OverrideResult{}, err
	}

	typ, known := s.detector.Canonical(strings.TrimSpace(in.Type))
	if typ == "" {
		return nil, OverrideResult{}, override.ErrEmptyType
	}

	out := OverrideResult{Type: typ, Known: known, Paths: make([]string, 0, len(ids))}

	for _, id := range ids {
		err := s.ws.Overrides().Set(id, typ)
		if err != nil {
			return nil, OverrideResult{}, fmt.Errorf("override %s: %w", id.Path, err)
		}

		out.Paths = append(out.Paths, id.Path)
	}

	out.Message = fmt.Sprintf("Set %d files to %s.", len(out.Paths), typ)
	if !known {
		out.Message += fmt.Sprintf(" %q is not a known type.", typ)
	}

	return textResult(out.Message), out, nil
}

func (s *Server) handleRevert(
	_ context.Context,
	_ *mcp.CallToolRequest,
	in RevertParams,
) (*mcp.CallToolResult, RevertResult, error) {
	ids, err := s.fileIDs(in.Paths)
	if err != nil {
		return nil, RevertResult{}, err
	}

	op := override.NewRevertOperation(s.ws.Overrides())

	out := RevertResult{
		Removed: []string{},
		Skipped: []string{},
		Failed:  []RevertFailure{},
	}

	if !op.Applicable(ids) {
		for _, id := range ids {
			out.Skipped = append(out.Skipped, id.Path)
		}

		out.Message = "None of the files has an override."

		return textResult(out.Message), out, nil
	}

	candidates := op.Candidates(ids)
	result := op.Execute(ids)

	err = result.Err()
	if err != nil {
		return nil, RevertResult{}, err //nolint:wrapcheck // Already descriptive.
	}

	for _, id := range result.Removed {
		out.Removed = append(out.Removed, id.Path)
	}

	skipped := map[string]struct{}{}
	for _, id := range candidates {
		skipped[id.Key()] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := skipped[id.Key()]; !ok {
			out.Skipped = append(out.Skipped, id.Path)
		}
	}

	for _, id := range result.Missing {
		out.Skipped = append(out.Skipped, id.Path)
	}

	for _, f := range result.Failed {
		out.Failed = append(out.Failed, RevertFailure{Path: f.File.Path, Error: f.Err.Error()})
	}

	out.Message = fmt.Sprintf("Reverted %d of %d overrides.", len(out.Removed), len(candidates))

	return textResult(out.Message), out, nil
}
