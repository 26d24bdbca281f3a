package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("RESULTS_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}

	c := newClient(apiURL, 90*time.Second)

	s := server.NewMCPServer(
		"resultscraper",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	lookupTool := mcp.NewTool("lookup_result",
		mcp.WithDescription("Look up a BTEB diploma student's semester results by roll number. Returns institute, regulation, per-semester status and GPA, and referred subjects."),
		mcp.WithString("roll",
			mcp.Required(),
			mcp.Description("Six-digit roll number"),
		),
		mcp.WithString("regulation",
			mcp.Description("Regulation year; defaults to the server's configured regulation"),
			mcp.Enum("2022", "2016", "2010"),
		),
	)
	s.AddTool(lookupTool, handleLookupResult(c))

	registerTool := mcp.NewTool("register_student",
		mcp.WithDescription("Register the display name and photo URL shown alongside a roll number's results."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Student name")),
		mcp.WithString("img", mcp.Required(), mcp.Description("Photo URL")),
		mcp.WithString("roll", mcp.Required(), mcp.Description("Six-digit roll number")),
	)
	s.AddTool(registerTool, handleRegisterStudent(c))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}
