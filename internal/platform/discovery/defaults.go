// Package discovery centralizes internal service-discovery conventions.
package discovery

import (
	"strconv"
	"strings"
)

const (
	// ServiceEngine is the drift analysis engine gRPC identity.
	ServiceEngine = "engine"
	// ServiceAnalyze is the one-shot batch analysis CLI identity.
	ServiceAnalyze = "analyze"
	// ServiceMCP is the MCP stdio server identity.
	ServiceMCP = "mcp"
)

var grpcPorts = map[string]int{
	ServiceEngine: 8090,
}

// DefaultGRPCAddr returns the canonical in-network gRPC address for a service.
// Services without a listening port, such as the stdio MCP server, have no
// conventional address and resolve to the empty string.
func DefaultGRPCAddr(service string) string {
	service = strings.TrimSpace(service)
	port, ok := grpcPorts[service]
	if !ok || port <= 0 {
		return ""
	}
	return service + ":" + strconv.Itoa(port)
}

// OrDefaultGRPCAddr returns value when set, otherwise the service convention.
func OrDefaultGRPCAddr(value, service string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return DefaultGRPCAddr(service)
}
