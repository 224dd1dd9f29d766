package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
)

// Gateway executes planned tool calls against one session's tool set.
// Faults reported by a tool come back as data on the ToolResult; only
// misuse of the gateway itself is an error.
type Gateway struct {
	session *Session
}

func NewGateway(session *Session) (*Gateway, error) {
	if session == nil {
		return nil, errors.New("nil mcp session")
	}
	return &Gateway{session: session}, nil
}

func (g *Gateway) Execute(ctx context.Context, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	if g == nil || g.session == nil {
		return nil, errors.New("nil tool gateway")
	}
	if g.session.byName == nil {
		return nil, ErrSessionClosed
	}

	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		results = append(results, g.execute(ctx, req))
	}
	return results, nil
}

func (g *Gateway) execute(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	name := strings.TrimSpace(req.Tool)
	if name == "" {
		return contractx.ToolResult{Error: "tool name is empty"}
	}

	inv, err := g.session.lookup(name)
	if err != nil {
		return contractx.ToolResult{Tool: name, Error: err.Error()}
	}

	args := req.Args
	if args == nil {
		args = map[string]any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return contractx.ToolResult{Tool: name, Error: fmt.Sprintf("marshal args: %v", err)}
	}

	out, err := inv.InvokableRun(ctx, string(payload))
	if err != nil {
		return contractx.ToolResult{Tool: name, Error: err.Error()}
	}
	return contractx.ToolResult{Tool: name, Result: out}
}
