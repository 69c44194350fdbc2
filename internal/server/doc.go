// Package server implements the MCP (Model Context Protocol) server for
// product grouping.
//
// This package provides a JSON-RPC 2.0 server that exposes the grouping
// pipeline through the MCP protocol, so an orchestrator or an AI client can
// pass detector output and receive grouped detections plus a rendered image.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_dimensions: Get width, height and format of an image
//   - group_products: Group detections and write the visualization
//   - extract_features: Inspect raw and normalized feature vectors
//
// # Statelessness
//
// Every call loads its image from disk and works on its own buffers. Nothing
// is cached between calls.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for missing or malformed arguments, -32000 for other
//     failures such as a missing image file
//   - message: Human-readable error description
//   - data: The Go error string
//
// Grouping and rendering failures are not tool errors. They are reported in
// the result's status, grouping_error and visualization_error fields while
// the detections are still returned.
//
// # Usage
//
//	srv := server.New(pipeline.NewRunner(cfg, logger), server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal(err)
//	}
package server
