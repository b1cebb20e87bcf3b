// tools_util.go reads typed tool arguments. A missing argument, or one of
// the wrong JSON type, yields the default: clients routinely omit optional
// parameters.

package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// arg looks up name in the request and asserts it to T.
func arg[T any](req mcp.CallToolRequest, name string) (T, bool) {
	var zero T
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return zero, false
	}
	v, ok := args[name].(T)
	return v, ok
}

func getString(req mcp.CallToolRequest, name, def string) string {
	if v, ok := arg[string](req, name); ok {
		return v
	}
	return def
}

func getBool(req mcp.CallToolRequest, name string, def bool) bool { //nolint:unparam
	if v, ok := arg[bool](req, name); ok {
		return v
	}
	return def
}

// getInt reads a JSON number, which decodes as float64.
func getInt(req mcp.CallToolRequest, name string, def int) int {
	if v, ok := arg[float64](req, name); ok {
		return int(v)
	}
	return def
}

// getStrings drops non-string elements; nil means absent.
func getStrings(req mcp.CallToolRequest, name string) []string {
	raw, ok := arg[[]any](req, name)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// jsonResult returns v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
