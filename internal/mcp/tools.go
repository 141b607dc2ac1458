package mcp

import "github.com/mark3labs/mcp-go/mcp"

var registerProofTool = mcp.NewTool("register_proof",
	mcp.WithDescription("Register a prompt/output pair on-chain as a proof created by the connected wallet. Returns the hashes and transaction."),
	mcp.WithString("prompt",
		mcp.Required(),
		mcp.Description("The prompt that produced the output"),
	),
	mcp.WithString("output",
		mcp.Required(),
		mcp.Description("The generated output, or base64 file content when output_type is file"),
	),
	mcp.WithString("output_type",
		mcp.Description("Kind of output (default text)"),
		mcp.Enum("text", "file"),
	),
	mcp.WithString("file_name",
		mcp.Description("Original file name for file outputs"),
	),
)

var verifyProofTool = mcp.NewTool("verify_proof",
	mcp.WithDescription("Check whether a prompt/output pair was registered by a creator, or whether a transaction holds a proof."),
	mcp.WithString("prompt",
		mcp.Description("The prompt to verify"),
	),
	mcp.WithString("output",
		mcp.Description("The output to verify"),
	),
	mcp.WithString("creator",
		mcp.Description("Creator address (defaults to the connected wallet)"),
	),
	mcp.WithString("tx_hash",
		mcp.Description("Verify by transaction hash instead of prompt/output"),
	),
)

var listProofsTool = mcp.NewTool("list_proofs",
	mcp.WithDescription("List registered proofs, optionally filtered to the connected wallet and by a search term."),
	mcp.WithString("filter",
		mcp.Description("Which proofs to list (default all)"),
		mcp.Enum("all", "my"),
	),
	mcp.WithString("search",
		mcp.Description("Case-insensitive substring matched against the prompt, output and transaction hashes and the creator"),
	),
	mcp.WithString("sort",
		mcp.Description("Sort order (default recent)"),
		mcp.Enum("recent", "oldest"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of proofs to return (default 50)"),
	),
)

var getProofTool = mcp.NewTool("get_proof",
	mcp.WithDescription("Get a single proof by its numeric id."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Proof id"),
	),
)

var proofStatsTool = mcp.NewTool("proof_stats",
	mcp.WithDescription("Get total proofs, unique creators and the connected wallet's proof count."),
)

var chatTool = mcp.NewTool("chat",
	mcp.WithDescription("Ask the ProofChain assistant a question."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The question"),
	),
	mcp.WithString("session_id",
		mcp.Description("Continue an existing chat session"),
	),
)
