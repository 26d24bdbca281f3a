package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nubngpi/resultscraper/models"
)

func handleLookupResult(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		roll, err := request.RequireString("roll")
		if err != nil {
			return mcp.NewToolResultError("roll is required"), nil
		}
		regulation := request.GetString("regulation", "")

		resp, err := c.lookup(ctx, roll, regulation)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success || resp.Data == nil {
			return mcp.NewToolResultError(errorText(resp.Error, "lookup failed")), nil
		}

		return mcp.NewToolResultText(summarize(resp.Data)), nil
	}
}

func handleRegisterStudent(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in models.StudentPostRequest
		var err error
		if in.Name, err = request.RequireString("name"); err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}
		if in.Img, err = request.RequireString("img"); err != nil {
			return mcp.NewToolResultError("img is required"), nil
		}
		if in.Roll, err = request.RequireString("roll"); err != nil {
			return mcp.NewToolResultError("roll is required"), nil
		}

		resp, err := c.register(ctx, in)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success || resp.Student == nil {
			return mcp.NewToolResultError(errorText(resp.Error, "registration failed")), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Registered %s for roll %s", resp.Student.Name, resp.Student.Roll)), nil
	}
}

func errorText(e *models.ErrorDetail, fallback string) string {
	if e == nil {
		return fallback
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// summarize renders a result as a short plain-text report.
func summarize(d *models.StudentData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", d.Name)
	fmt.Fprintf(&sb, "Roll: %s\n", d.Roll)
	fmt.Fprintf(&sb, "Institute: %s\n", d.Institute)
	fmt.Fprintf(&sb, "Regulation: %s\n", d.Regulation)
	fmt.Fprintf(&sb, "Technology: %s\n", d.Technology)
	fmt.Fprintf(&sb, "Latest: %s (GPA %s)\n", d.LatestStatus, d.LatestGPA)

	sb.WriteString("\nSemesters:\n")
	for _, s := range d.Semesters {
		fmt.Fprintf(&sb, "- %s: %s, GPA %s", s.Semester, s.Status, s.GPA)
		if len(s.FailedSubjects) > 0 {
			fmt.Fprintf(&sb, ", referred in %s", strings.Join(s.FailedSubjects, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
