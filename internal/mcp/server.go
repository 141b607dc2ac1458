// Package mcp exposes proof registration, verification and browsing as
// Model Context Protocol tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/proofchain/internal/chat"
	"github.com/ziadkadry99/proofchain/internal/dashboard"
	"github.com/ziadkadry99/proofchain/internal/hashes"
	"github.com/ziadkadry99/proofchain/internal/proofs"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Registrar registers and verifies proofs. *dashboard.Dashboard satisfies it.
type Registrar interface {
	Register(ctx context.Context, in dashboard.RegisterInput) (*dashboard.Receipt, error)
	Verify(ctx context.Context, prompt, output, creator string) (bool, error)
	VerifyTx(ctx context.Context, txHash string) (bool, error)
}

// Browser serves the proof collection. *hashes.View satisfies it.
type Browser interface {
	Refresh(ctx context.Context) error
	Query(q proofs.Query) hashes.Result
	Get(ctx context.Context, id string) (*proofs.Record, error)
}

// Chatter answers questions about the system. *chat.Controller satisfies it.
type Chatter interface {
	Send(ctx context.Context, sessionID, input string) (*chat.Turn, error)
}

// Server wraps an MCP server that exposes the proof tools.
type Server struct {
	registrar Registrar
	browser   Browser
	chat      Chatter
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server. chat may be nil, in which case the
// chat tool is not offered.
func NewServer(registrar Registrar, browser Browser, chat Chatter) *Server {
	s := &Server{
		registrar: registrar,
		browser:   browser,
		chat:      chat,
	}

	s.mcp = server.NewMCPServer(
		"proofchain",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(registerProofTool, s.handleRegisterProof)
	s.mcp.AddTool(verifyProofTool, s.handleVerifyProof)
	s.mcp.AddTool(listProofsTool, s.handleListProofs)
	s.mcp.AddTool(getProofTool, s.handleGetProof)
	s.mcp.AddTool(proofStatsTool, s.handleProofStats)
	if s.chat != nil {
		s.mcp.AddTool(chatTool, s.handleChat)
	}
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
