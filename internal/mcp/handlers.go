package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/assembler"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/detector"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

// now is the clock used by the tool handlers.
var now = time.Now

// handleInferContext builds a record for the page described by the arguments.
func handleInferContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)

	hints, err := model.ParseHints([]byte(stringArg(args, "hints", "")))
	if err != nil {
		return errResult(fmt.Sprintf("invalid hints: %v", err)), nil
	}

	params := browser.Params{
		URL:           stringArg(args, "url", ""),
		UserAgent:     stringArg(args, "user_agent", ""),
		Platform:      stringArg(args, "platform", ""),
		Offline:       boolArg(args, "offline", false),
		EffectiveType: stringArg(args, "connection_type", ""),
		Width:         intArg(args, "width", 0),
		Height:        intArg(args, "height", 0),
		ColorScheme:   stringArg(args, "color_scheme", ""),
	}
	if token := stringArg(args, "token", ""); token != "" {
		params.Storage = map[string]string{"token": token}
	}

	snap, err := params.Snapshot()
	if err != nil {
		return errResult(err.Error()), nil
	}

	rec := assembler.New(snap, hints, assembler.WithClock(now)).Build()
	jsonData, err := json.Marshal(rec)
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// handleDetectEnvironment classifies a host name.
func handleDetectEnvironment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	host := stringArg(getArgs(request), "host", "")
	if host == "" {
		return errResult("host is required"), nil
	}
	return newTextResult(string(detector.DetectEnvironment(host))), nil
}

// handleDecodeSessionToken classifies a token's expiry.
func handleDecodeSessionToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	token := stringArg(args, "token", "")
	if token == "" {
		return errResult("token is required"), nil
	}

	ref := now()
	if raw := stringArg(args, "now", ""); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return errResult(fmt.Sprintf("invalid now: %v", err)), nil
		}
		ref = parsed
	}

	jsonData, err := json.Marshal(detector.ClassifyToken(token, ref))
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// handleExplainField describes one record field.
func handleExplainField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field := stringArg(getArgs(request), "field", "")
	if field == "" {
		return errResult("field is required"), nil
	}

	desc, ok := fieldExplanations[field]
	if !ok {
		return newTextResult(fmt.Sprintf(
			"Unknown field '%s'. Use 'list_fields' to see every record field.", field,
		)), nil
	}
	return newTextResult(desc), nil
}

// handleListFields returns every record field with its group and a brief line.
func handleListFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type entry struct {
		Field string `json:"field"`
		Group string `json:"group"`
		Brief string `json:"brief"`
	}

	entries := make([]entry, 0, len(fieldExplanations))
	for field, desc := range fieldExplanations {
		brief := field
		for _, line := range strings.Split(desc, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				brief = strings.ReplaceAll(line, "**", "")
				break
			}
		}
		entries = append(entries, entry{Field: field, Group: fieldGroups[field], Brief: brief})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Group != entries[j].Group {
			return entries[i].Group < entries[j].Group
		}
		return entries[i].Field < entries[j].Field
	})

	jsonData, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// getArgs safely extracts the arguments map from a CallToolRequest.
// Returns an empty map if Arguments is nil or not a map.
func getArgs(request mcp.CallToolRequest) map[string]interface{} {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// stringArg extracts a string argument with a default value.
func stringArg(args map[string]interface{}, key, defaultVal string) string {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return defaultVal
	}
	return s
}

func boolArg(args map[string]interface{}, key string, defaultVal bool) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return defaultVal
}

// intArg accepts JSON numbers, which arrive as float64.
func intArg(args map[string]interface{}, key string, defaultVal int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return defaultVal
	}
}

// newTextResult creates a successful MCP tool result with text content.
func newTextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

// errResult creates an MCP tool error result (IsError=true).
// This is returned as a tool-level error, not a transport-level JSON-RPC error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: msg,
			},
		},
	}
}

var fieldGroups = map[string]string{
	"userType":             "business",
	"userKind":             "business",
	"mainAddressCountry":   "business",
	"mainAddressInAustria": "business",
	"sessionState":         "session",
	"tokenExpiresInSec":    "session",
	"tokenExpIso":          "session",
	"platform":             "device",
	"deviceOS":             "device",
	"deviceOSVersion":      "device",
	"deviceBrandModel":     "device",
	"orientation":          "display",
	"theme":                "display",
	"viewportPx":           "display",
	"screenPx":             "display",
	"devicePixelRatio":     "display",
	"connectionState":      "connection",
	"connectionType":       "connection",
	"downlinkMbps":         "connection",
	"rttMs":                "connection",
	"runtimeEnvironment":   "app",
	"pagePath":             "app",
	"pageQuery":            "app",
	"buildVersion":         "app",
}

var fieldExplanations = map[string]string{
	"userType": `**User type**
Taken from the userType hint, then the 'user-type' meta tag, else "Unknown".`,

	"userKind": `**User kind**
"Identified" when the host supplied a truthy userId hint, otherwise "Unidentified".`,

	"mainAddressCountry": `**Main address country**
Taken from the mainAddressCountry hint, then the 'user-country' meta tag, else "Unknown".`,

	"mainAddressInAustria": `**Main address in Austria**
true when the country is AT (case-insensitive), false for any other known country, "Unknown" when the country is unknown.`,

	"sessionState": `**Session state**
Derived from the exp claim of the first session token found in storage or cookies.
Expired when exp has passed, ExpiringSoon within 300 seconds, Active otherwise, Unknown when no token decodes.`,

	"tokenExpiresInSec": `**Token expires in (seconds)**
exp minus the current time, negative when expired. null when the session state is Unknown.`,

	"tokenExpIso": `**Token expiry (ISO 8601)**
exp as a UTC timestamp with milliseconds. null when the session state is Unknown.`,

	"platform": `**Platform**
"Mobile Web" for mobile user agents or a mobile client hint, otherwise "Desktop Web".`,

	"deviceOS": `**Device OS**
First match of Android, iOS, macOS, Windows and Linux in the user agent; the platform client hint fills in when the user agent has no OS signature.`,

	"deviceOSVersion": `**Device OS version**
Version from the user agent with underscores turned into dots. Windows NT versions map to marketing names (10.0 reads as 10/11).`,

	"deviceBrandModel": `**Device brand and model**
Best-effort brand and model from the user agent (iPhone, iPad, Pixel, Samsung, Huawei, Xiaomi/Redmi, OnePlus, Motorola, Nokia). "Unknown" when nothing matches.`,

	"orientation": `**Orientation**
From the screen orientation API when available, otherwise Portrait when the window is at least as tall as it is wide.`,

	"theme": `**Theme**
An explicit data-theme attribute on the root or body wins; otherwise Dark when the page prefers a dark color scheme, else Light.`,

	"viewportPx": `**Viewport**
Client width x client height of the document element, e.g. "390x844".`,

	"screenPx": `**Screen**
Screen width x screen height, e.g. "1170x2532".`,

	"devicePixelRatio": `**Device pixel ratio**
window.devicePixelRatio, 1 when not reported.`,

	"connectionState": `**Connection state**
"Online" or "Offline" from the browser's online flag.`,

	"connectionType": `**Connection type**
Effective connection type, else the connection type, from the Network Information API; "Unknown" when unsupported.`,

	"downlinkMbps": `**Downlink (Mbps)**
Estimated bandwidth from the Network Information API, null when unavailable.`,

	"rttMs": `**Round-trip time (ms)**
Estimated round-trip time from the Network Information API, null when unavailable.`,

	"runtimeEnvironment": `**Runtime environment**
From the page host: localhost and 127.x or dev/qa/test markers read as testing, stage/staging/preprod/uat as staging, anything else as production.`,

	"pagePath": `**Page path**
location.pathname of the page.`,

	"pageQuery": `**Page query**
location.search of the page including the leading '?', or an empty string.`,

	"buildVersion": `**Build version**
Taken from the buildVersion hint, then the 'app-build' meta tag, else "Unknown".`,
}
