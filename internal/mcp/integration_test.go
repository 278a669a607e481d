package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// TestServerIntegration drives the server over stdio with JSON-RPC messages
func TestServerIntegration(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.InputDirectory, "anexo1.pdf"), []byte("%PDF"), 0o600); err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	server := newTestServer(t, cfg)

	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()
	server.stdin = stdinR
	server.stdout = stdoutW

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx)
	}()

	responses := make(chan rpcResponse, 8)
	go func() {
		scanner := bufio.NewScanner(stdoutR)
		scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
		for scanner.Scan() {
			var resp rpcResponse
			if err := json.Unmarshal(scanner.Bytes(), &resp); err == nil && resp.ID != 0 {
				responses <- resp
			}
		}
	}()

	send := func(msg string) {
		t.Helper()
		if _, err := io.WriteString(stdinW, msg+"\n"); err != nil {
			t.Fatalf("failed to write request: %v", err)
		}
	}
	receive := func(id int) rpcResponse {
		t.Helper()
		for {
			select {
			case resp := <-responses:
				if resp.ID == id {
					return resp
				}
			case <-time.After(5 * time.Second):
				t.Fatalf("no response for request %d", id)
			}
		}
	}

	send(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`)
	if resp := receive(1); resp.Error != nil {
		t.Fatalf("initialize failed: %s", resp.Error.Message)
	}
	send(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)

	send(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	resp := receive(2)
	if resp.Error != nil {
		t.Fatalf("tools/list failed: %s", resp.Error.Message)
	}
	var list struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(resp.Result, &list); err != nil {
		t.Fatalf("invalid tools/list result: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range list.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"anexo1_prefill", "anexo_preview", "anexo_generate",
		"assistant_draft", "assistant_review", "anexo_list_sources", "diarias_server_info",
	} {
		if !names[want] {
			t.Errorf("tool %s not registered", want)
		}
	}

	send(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"anexo_list_sources","arguments":{}}}`)
	resp = receive(3)
	if resp.Error != nil {
		t.Fatalf("tools/call failed: %s", resp.Error.Message)
	}
	if !strings.Contains(string(resp.Result), "anexo1.pdf") {
		t.Errorf("listing should mention anexo1.pdf, got: %s", resp.Result)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("server did not stop after cancel")
	}
}
