package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

type toolDef struct {
	openai.FunctionDefinition
}

type ReadFileArgs struct {
	File  string
	Lines [][]int
}
type ListDirArgs struct {
	Dir string
}

func (s *Server) readFileTool() (toolDef, server.ToolHandlerFunc) {
	def := openai.FunctionDefinition{
		Name:        "read_file",
		Description: "Reads specific line ranges from a reference file inside the accessible roots. Multiple non-contiguous ranges can be requested at once. Access is read-only.",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"File": {
					Type:        jsonschema.String,
					Description: "The full path to the file to be read. Must be inside an accessible root.",
				},
				"Lines": {
					Type:        jsonschema.Array,
					Description: "A list of line ranges to retrieve. Each range is a pair of integers [start_line, end_line], 1-indexed. Pass [[1, -1]] for the whole file.",
					Items: &jsonschema.Definition{
						Type: jsonschema.Array,
						Items: &jsonschema.Definition{
							Type: jsonschema.Integer,
						},
					},
				},
			},
			Required: []string{"File", "Lines"},
		},
	}
	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ReadFileArgs
		err := request.BindArguments(&args)
		if err != nil {
			return nil, err
		}
		path, err := s.resolveAllowed(args.File)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := readLines(path, args.Lines)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(res), nil
	}
	return toolDef{def}, handler
}

func (s *Server) listDirTool() (toolDef, server.ToolHandlerFunc) {
	def := openai.FunctionDefinition{
		Name:        "list_dir",
		Description: "Lists the entries of a directory inside the accessible roots.",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"Dir": {
					Type:        jsonschema.String,
					Description: "The full path of the directory to list. Must be inside an accessible root.",
				},
			},
			Required: []string{"Dir"},
		},
	}
	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListDirArgs
		err := request.BindArguments(&args)
		if err != nil {
			return nil, err
		}
		path, err := s.resolveAllowed(args.Dir)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := listEntries(path)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(res), nil
	}
	return toolDef{def}, handler
}
