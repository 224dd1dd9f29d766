package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomcp "github.com/cloudwego/eino-ext/components/tool/mcp"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
)

const (
	clientName    = "sentinel-protocol"
	clientVersion = "0.1.0"
)

var (
	ErrSessionOpen   = errors.New("mcp session already open")
	ErrSessionClosed = errors.New("mcp session is not open")
)

// Session owns one stdio tool server: the subprocess, the initialized
// client and the tools it advertised. Not safe for concurrent Open/Close.
type Session struct {
	cfg    ServerConfig
	cli    *client.Client
	infos  []*schema.ToolInfo
	byName map[string]tool.InvokableTool
}

func NewSession(cfg ServerConfig) *Session {
	return &Session{cfg: cfg}
}

func (s *Session) Name() string {
	return s.cfg.Name
}

// Open spawns the server subprocess, runs the initialize handshake and
// loads the advertised tools through the eino adapter.
func (s *Session) Open(ctx context.Context) error {
	if s.byName != nil {
		return ErrSessionOpen
	}
	if strings.TrimSpace(s.cfg.Command) == "" {
		return fmt.Errorf("mcp server %s: command is required", s.cfg.Name)
	}

	cli, err := client.NewStdioMCPClient(s.cfg.Command, s.cfg.Env, s.cfg.Args...)
	if err != nil {
		return fmt.Errorf("start mcp server %s: %w", s.cfg.Name, err)
	}

	initReq := mcpgo.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcpgo.Implementation{
		Name:    clientName,
		Version: clientVersion,
	}
	if _, err := cli.Initialize(ctx, initReq); err != nil {
		_ = cli.Close()
		return fmt.Errorf("initialize mcp server %s: %w", s.cfg.Name, err)
	}

	tools, err := einomcp.GetTools(ctx, &einomcp.Config{Cli: cli})
	if err != nil {
		_ = cli.Close()
		return fmt.Errorf("load tools from mcp server %s: %w", s.cfg.Name, err)
	}

	infos := make([]*schema.ToolInfo, 0, len(tools))
	byName := make(map[string]tool.InvokableTool, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			_ = cli.Close()
			return fmt.Errorf("resolve tool info from mcp server %s: %w", s.cfg.Name, err)
		}
		if info == nil || strings.TrimSpace(info.Name) == "" {
			continue
		}
		inv, ok := t.(tool.InvokableTool)
		if !ok {
			continue
		}
		infos = append(infos, info)
		byName[info.Name] = inv
	}

	s.cli = cli
	s.infos = infos
	s.byName = byName
	return nil
}

// Infos lists the advertised tools for binding to a chat model.
func (s *Session) Infos() []*schema.ToolInfo {
	if s == nil {
		return nil
	}
	return s.infos
}

func (s *Session) lookup(name string) (tool.InvokableTool, error) {
	if s == nil || s.byName == nil {
		return nil, ErrSessionClosed
	}
	inv, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrToolUnavailable, name)
	}
	return inv, nil
}

// Close terminates the server subprocess. Safe to call twice.
func (s *Session) Close() error {
	if s == nil || s.cli == nil {
		s.reset()
		return nil
	}
	err := s.cli.Close()
	s.reset()
	if err != nil {
		return fmt.Errorf("close mcp server %s: %w", s.cfg.Name, err)
	}
	return nil
}

func (s *Session) reset() {
	if s == nil {
		return
	}
	s.cli = nil
	s.infos = nil
	s.byName = nil
}
