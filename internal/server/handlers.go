package server

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ironsheep/shelfgroup/internal/detection"
	"github.com/ironsheep/shelfgroup/internal/imaging"
	"github.com/ironsheep/shelfgroup/internal/pipeline"
)

// errInvalidArguments marks tool errors caused by the caller's arguments.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "group_products").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument errors return code -32602, other tool failures -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warnw("tool failed", "tool", params.Name, "error", err)
		if errors.Is(err, errInvalidArguments) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "group_products":
		return s.handleGroupProducts(ctx, args)
	case "extract_features":
		return s.handleExtractFeatures(args)
	default:
		return nil, errors.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type imageDimensionsArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageDimensionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, errors.Wrap(errInvalidArguments, err.Error())
	}
	if a.Path == "" {
		return nil, errors.Wrap(errInvalidArguments, "path is required")
	}
	return imaging.LoadImageInfo(a.Path)
}

// groupArgs is shared by the grouping tools. Detections is a pointer so a
// missing key can be told apart from an empty list.
type groupArgs struct {
	ImagePath  string                 `json:"image_path"`
	Detections *[]detection.Detection `json:"detections"`
	OutputPath string                 `json:"output_path,omitempty"`
}

func parseGroupArgs(args json.RawMessage) (groupArgs, error) {
	var a groupArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return a, errors.Wrap(errInvalidArguments, err.Error())
	}
	if a.ImagePath == "" || a.Detections == nil {
		return a, errors.Wrap(errInvalidArguments, "image_path and detections are required")
	}
	return a, nil
}

func (s *Server) handleGroupProducts(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a, err := parseGroupArgs(args)
	if err != nil {
		return nil, err
	}
	return s.runner.Run(ctx, pipeline.Job{
		ImagePath:  a.ImagePath,
		Detections: *a.Detections,
		OutputPath: a.OutputPath,
	})
}

// FeatureRow is the feature vector of one extractable detection.
type FeatureRow struct {
	Index      int       `json:"index"`
	Raw        []float64 `json:"raw"`
	Normalized []float64 `json:"normalized"`
}

// FeaturesResult lists feature rows and the detections that had none.
type FeaturesResult struct {
	Rows    []FeatureRow `json:"rows"`
	Skipped []int        `json:"skipped"`
}

func (s *Server) handleExtractFeatures(args json.RawMessage) (interface{}, error) {
	a, err := parseGroupArgs(args)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Load(a.ImagePath)
	if err != nil {
		return nil, err
	}

	// Same pre-filter as group_products, so indices line up with its output.
	dets := s.runner.Filter(*a.Detections)
	grouper := s.runner.Grouper()
	indices, raw := grouper.Features(img, dets)
	normalized, err := grouper.Normalize(raw)
	if err != nil {
		return nil, err
	}

	result := &FeaturesResult{Rows: make([]FeatureRow, len(indices)), Skipped: []int{}}
	next := 0
	for i := range dets {
		if next < len(indices) && indices[next] == i {
			result.Rows[next] = FeatureRow{Index: i, Raw: raw[next], Normalized: normalized[next]}
			next++
			continue
		}
		result.Skipped = append(result.Skipped, i)
	}
	return result, nil
}
