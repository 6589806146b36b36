// Package domain declares the directory commands exposed over MCP: their
// names, input shapes and handlers. Handlers receive validated, defaulted
// arguments from the dispatcher and delegate to the injected directory
// client, the search selector or the onboarding orchestrator.
package domain
