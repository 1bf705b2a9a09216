package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server instance.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server with registered tools.
func NewServer(version string) *Server {
	s := server.NewMCPServer("clientctx", version, server.WithLogging())
	registerTools(s)
	return &Server{mcpServer: s}
}

// Start runs the server in stdio mode (blocking).
func (s *Server) Start(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.mcpServer)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools adds all supported tools to the server.
func registerTools(s *server.MCPServer) {
	inferTool := mcp.NewTool("infer_client_context",
		mcp.WithDescription("Infer the full diagnostic record for a described page: environment, device, display, connection, session and identity. Returns the record JSON exactly as it would be attached to a feedback report."),
		mcp.WithString("url",
			mcp.Description("Page URL; the host selects the environment, path and query are copied."),
		),
		mcp.WithString("user_agent",
			mcp.Description("User-Agent string of the browser."),
		),
		mcp.WithString("platform",
			mcp.Description("Client hint platform (e.g. 'Android', 'macOS'), used when the user agent has no OS signature."),
		),
		mcp.WithBoolean("offline",
			mcp.Description("Treat the page as offline."),
			mcp.DefaultBool(false),
		),
		mcp.WithString("connection_type",
			mcp.Description("Effective connection type, e.g. '4g'."),
		),
		mcp.WithNumber("width",
			mcp.Description("Viewport width in CSS pixels."),
		),
		mcp.WithNumber("height",
			mcp.Description("Viewport height in CSS pixels."),
		),
		mcp.WithString("color_scheme",
			mcp.Description("Preferred color scheme."),
			mcp.Enum("light", "dark"),
		),
		mcp.WithString("token",
			mcp.Description("Session token stored under the 'token' key."),
		),
		mcp.WithString("hints",
			mcp.Description("Host application hints as a JSON object (userType, userId, mainAddressCountry, buildVersion, authTokenKey)."),
		),
	)
	s.AddTool(inferTool, handleInferContext)

	envTool := mcp.NewTool("detect_environment",
		mcp.WithDescription("Classify a host name as testing, staging or production."),
		mcp.WithString("host",
			mcp.Required(),
			mcp.Description("Host name without scheme, e.g. 'qa.example.com'."),
		),
	)
	s.AddTool(envTool, handleDetectEnvironment)

	tokenTool := mcp.NewTool("decode_session_token",
		mcp.WithDescription("Classify the freshness of a three-segment session token from its exp claim. The signature is not verified."),
		mcp.WithString("token",
			mcp.Required(),
			mcp.Description("The raw token."),
		),
		mcp.WithString("now",
			mcp.Description("Reference time in RFC 3339; defaults to the current time."),
		),
	)
	s.AddTool(tokenTool, handleDecodeSessionToken)

	explainTool := mcp.NewTool("explain_field",
		mcp.WithDescription("Explain how a record field is derived and what its values mean. Use list_fields to discover field names."),
		mcp.WithString("field",
			mcp.Required(),
			mcp.Description("Record field name, e.g. 'sessionState'."),
		),
	)
	s.AddTool(explainTool, handleExplainField)

	listTool := mcp.NewTool("list_fields",
		mcp.WithDescription("List every record field with a one-line description."),
	)
	s.AddTool(listTool, handleListFields)
}
