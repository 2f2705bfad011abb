package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/tscanon/pkg/converter"
	"github.com/gnana997/tscanon/pkg/schema"
)

// fileErrors groups conversion errors under their file.
type fileErrors struct {
	File   string                       `json:"file"`
	Errors []*converter.ConversionError `json:"errors"`
}

// convertOutput is the convert_source response.
type convertOutput struct {
	Types    *schema.Schema               `json:"types"`
	Rendered []string                     `json:"rendered"`
	Errors   []*converter.ConversionError `json:"errors"`
}

func (s *Server) handleListTypes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keyword := req.GetString("keyword", "")
	return jsonResult(s.queryService().ListTypes(keyword))
}

func (s *Server) handleGetType(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := req.GetStringSlice("names", nil)
	if len(names) == 0 {
		return mcp.NewToolResultError("names is required and must list at least one type"), nil
	}
	format := req.GetString("format", "json")

	locs := s.queryService().GetTypes(names)
	if len(locs) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no types found for %s", strings.Join(names, ", "))), nil
	}

	switch format {
	case "json":
		return jsonResult(locs)
	case "ts":
		var b strings.Builder
		for i, loc := range locs {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "// %s\n%s\n", loc.File, schema.RenderDeclaration(loc.Declaration))
		}
		return mcp.NewToolResultText(b.String()), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("unknown format %q (want json or ts)", format)), nil
}

func (s *Server) handleListErrors(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	qs := s.queryService()
	path := req.GetString("path", "")

	if path != "" {
		if _, ok := qs.Index.FileByPath[path]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("file %q is not in the catalog", path)), nil
		}
		return jsonResult([]fileErrors{{File: path, Errors: nonNilErrors(qs.Errors(path))}})
	}

	result := make([]fileErrors, 0)
	for _, f := range qs.ListFiles() {
		if f.Errors == 0 {
			continue
		}
		result = append(result, fileErrors{File: f.Path, Errors: qs.Errors(f.Path)})
	}
	return jsonResult(result)
}

func (s *Server) handleConvertSource(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path := req.GetString("path", "input.ts")
	mode, err := converter.ParseReferenceMode(req.GetString("references", "inline"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := converter.Options{References: mode}

	var result *converter.Result
	if s.checker != nil {
		model, err := s.checker.Check(path, []byte(source))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result = converter.New(model, nil, opts).Convert()
	} else {
		result, err = converter.ConvertSource(path, []byte(source), opts, nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	out := convertOutput{
		Types:    result.Types,
		Rendered: make([]string, 0, result.Types.Len()),
		Errors:   nonNilErrors(result.Errors),
	}
	for _, d := range result.Types.Declarations() {
		out.Rendered = append(out.Rendered, schema.RenderDeclaration(d))
	}
	return jsonResult(out)
}

func nonNilErrors(errs []*converter.ConversionError) []*converter.ConversionError {
	if errs == nil {
		return []*converter.ConversionError{}
	}
	return errs
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
