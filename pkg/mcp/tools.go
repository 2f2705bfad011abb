package mcp

import "github.com/mark3labs/mcp-go/mcp"

func listTypesTool() mcp.Tool {
	return mcp.NewTool("list_types",
		mcp.WithDescription("List converted type declarations with their rendered form. "+
			"Filter by a keyword matched against type names and file paths."),
		mcp.WithString("keyword",
			mcp.Description("Case-insensitive substring of a type name or file path"),
		),
	)
}

func getTypeTool() mcp.Tool {
	return mcp.NewTool("get_type",
		mcp.WithDescription("Get the canonical type graph of one or more declarations by name. "+
			"A name declared in several files returns one entry per file."),
		mcp.WithArray("names",
			mcp.Required(),
			mcp.Description("Declaration names, e.g. [\"User\", \"Status\"]"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("format",
			mcp.Description("json (default) for the node graph, ts for TypeScript-like text"),
			mcp.Enum("json", "ts"),
		),
	)
}

func listErrorsTool() mcp.Tool {
	return mcp.NewTool("list_errors",
		mcp.WithDescription("List declarations that could not be converted, grouped by file."),
		mcp.WithString("path",
			mcp.Description("Only report errors for this catalog-relative file path"),
		),
	)
}

func convertSourceTool() mcp.Tool {
	return mcp.NewTool("convert_source",
		mcp.WithDescription("Convert TypeScript source text into canonical types without touching the catalog."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("TypeScript source containing exported type declarations"),
		),
		mcp.WithString("path",
			mcp.Description("File name used to pick the grammar (default input.ts; use .tsx for JSX)"),
		),
		mcp.WithString("references",
			mcp.Description("inline (default) expands local references, named keeps them as refs"),
			mcp.Enum("inline", "named"),
		),
	)
}
