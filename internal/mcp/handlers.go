package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/proofchain/internal/dashboard"
	"github.com/ziadkadry99/proofchain/internal/proofapi"
	"github.com/ziadkadry99/proofchain/internal/proofs"
)

const defaultListLimit = 50

func (s *Server) handleRegisterProof(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: prompt"), nil
	}
	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: output"), nil
	}
	outType, err := proofs.ParseOutputType(request.GetString("output_type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := dashboard.RegisterInput{
		Prompt:     prompt,
		OutputType: outType,
		Output:     output,
		FileName:   request.GetString("file_name", ""),
	}
	if outType == proofs.OutputFile {
		// Files arrive already encoded; pass them through untouched.
		in.File = []byte(output)
	}

	rc, err := s.registrar.Register(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(dashboard.UserMessage(err, "register proof")), nil
	}
	rc.QRCode = ""
	return jsonResult(rc)
}

func (s *Server) handleVerifyProof(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if tx := request.GetString("tx_hash", ""); tx != "" {
		ok, err := s.registrar.VerifyTx(ctx, tx)
		if err != nil {
			return mcp.NewToolResultError(dashboard.UserMessage(err, "verify transaction")), nil
		}
		return mcp.NewToolResultText(verdict(ok)), nil
	}

	ok, err := s.registrar.Verify(ctx,
		request.GetString("prompt", ""),
		request.GetString("output", ""),
		request.GetString("creator", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(dashboard.UserMessage(err, "verify proof")), nil
	}
	return mcp.NewToolResultText(verdict(ok)), nil
}

func verdict(ok bool) string {
	if ok {
		return "Verified: the proof exists on-chain."
	}
	return "Not verified: no matching proof was found."
}

func (s *Server) handleListProofs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := proofs.ParseMode(request.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	order, err := proofs.ParseSort(request.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := request.GetInt("limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}

	if err := s.browser.Refresh(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load proofs: %v", err)), nil
	}

	res := s.browser.Query(proofs.Query{
		Mode:   mode,
		Search: request.GetString("search", ""),
		Sort:   order,
	})
	if len(res.Proofs) == 0 {
		return mcp.NewToolResultText("No proofs found."), nil
	}
	if len(res.Proofs) > limit {
		res.Proofs = res.Proofs[:limit]
	}
	return jsonResult(res.Proofs)
}

func (s *Server) handleGetProof(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	p, err := s.browser.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		var apiErr *proofapi.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return mcp.NewToolResultError(fmt.Sprintf("Proof %s not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to get proof: %v", err)), nil
	}
	return jsonResult(p)
}

func (s *Server) handleProofStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.browser.Refresh(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load statistics: %v", err)), nil
	}
	return jsonResult(s.browser.Query(proofs.Query{}).Stats)
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}
	turn, err := s.chat.Send(ctx, request.GetString("session_id", ""), msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n(session %s)", turn.Assistant.Content, turn.SessionID)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
