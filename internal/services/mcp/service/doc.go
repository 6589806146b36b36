// Package service hosts the MCP server: it adapts registered directory
// commands into MCP tools, serves tools/list from the registry snapshot and
// routes tools/call through the dispatcher over stdio or streamable HTTP.
package service
