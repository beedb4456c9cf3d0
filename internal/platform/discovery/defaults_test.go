package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultGRPCAddr(t *testing.T) {
	if got := DefaultGRPCAddr(ServiceEngine); got != "engine:8090" {
		t.Fatalf("DefaultGRPCAddr(%q) = %q, want %q", ServiceEngine, got, "engine:8090")
	}
	if got := DefaultGRPCAddr(ServiceMCP); got != "" {
		t.Fatalf("DefaultGRPCAddr(%q) = %q, want empty for a stdio service", ServiceMCP, got)
	}
	if got := DefaultGRPCAddr("unknown"); got != "" {
		t.Fatalf("DefaultGRPCAddr(unknown) = %q, want empty", got)
	}
}

func TestOrDefaultGRPCAddr(t *testing.T) {
	if got := OrDefaultGRPCAddr(" custom:9000 ", ServiceEngine); got != "custom:9000" {
		t.Fatalf("expected explicit grpc addr to win, got %q", got)
	}
	if got := OrDefaultGRPCAddr("", ServiceEngine); got != "engine:8090" {
		t.Fatalf("expected default grpc addr, got %q", got)
	}
}

func TestDiscoveryDefaultsMatchTopologyCatalog(t *testing.T) {
	grpcFromCatalog := readTopologyPorts(t)

	for service, port := range grpcFromCatalog {
		want := fmt.Sprintf("%s:%d", service, port)
		if got := DefaultGRPCAddr(service); got != want {
			t.Fatalf("catalog grpc default mismatch for %q: got %q, want %q", service, got, want)
		}
	}

	for service := range grpcPorts {
		if _, ok := grpcFromCatalog[service]; !ok {
			t.Fatalf("grpc defaults include service %q not present in topology catalog", service)
		}
	}
}

func readTopologyPorts(t *testing.T) map[string]int {
	t.Helper()

	type topologyService struct {
		Name     string `json:"name"`
		GRPCPort int    `json:"grpc_port"`
	}
	type topologyCatalog struct {
		Services []topologyService `json:"services"`
	}

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("resolve caller path")
	}

	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", "..", ".."))
	data, err := os.ReadFile(filepath.Join(root, "topology", "services.json"))
	if err != nil {
		t.Fatalf("read topology/services.json: %v", err)
	}

	var parsed topologyCatalog
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("parse topology/services.json: %v", err)
	}

	grpcPortsFromCatalog := make(map[string]int, len(parsed.Services))
	for _, svc := range parsed.Services {
		if svc.GRPCPort > 0 {
			grpcPortsFromCatalog[svc.Name] = svc.GRPCPort
		}
	}
	return grpcPortsFromCatalog
}
