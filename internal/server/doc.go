// Package server implements the MCP (Model Context Protocol) server for
// document comparison.
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods are initialize, tools/list, tools/call and ping.
//
// # Available Tools
//
// Reconciliation:
//   - documents_compare: Differences between two detection sets
//   - documents_compare_images: OCR two images, then compare
//   - documents_first_pass: Residual fragments, no reasoning call
//
// Review helpers:
//   - differences_render: Highlight differences on a page image
//   - difference_crop: Zoom into one difference
//   - differences_pair: Pair differences at the same place (edits)
//   - text_normalize: Show the normalized form of a fragment
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors. Malformed arguments and
// invalid detection sets use code -32602; everything else, including an
// unreachable reasoning service, uses -32000 with the error text in data.
//
// # Usage
//
//	srv, err := server.New(server.Config{Engine: engine, Cache: cache})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
