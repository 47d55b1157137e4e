package mcpserver

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"agentload/internal/stats"
)

// reportTools scans on every call; there is no cache between calls.
type reportTools struct {
	scanner Scanner
}

// registerReportTools registers the report MCP tools.
func registerReportTools(server *mcpsdk.Server, t *reportTools) {
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "agent_load_report",
		Description: "Scan local Claude session logs and report main-session vs sub-agent hours, autonomy ratio, top projects and ghost days",
	}, t.reportHandler)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "ghost_days",
		Description: "List days where sub-agents ran but no main session did, longest first",
	}, t.ghostDaysHandler)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "project_load",
		Description: "Get main-session and sub-agent hours for one project",
	}, t.projectLoadHandler)
}

// agent_load_report types

type reportInput struct{}

type reportOutput struct {
	Report stats.Report `json:"report"`
}

func (t *reportTools) reportHandler(ctx context.Context, req *mcpsdk.CallToolRequest, input reportInput) (*mcpsdk.CallToolResult, reportOutput, error) {
	res, err := t.scanner.Run(ctx)
	if err != nil {
		return nil, reportOutput{}, fmt.Errorf("scan failed: %w", err)
	}
	return nil, reportOutput{Report: res.Report}, nil
}

// ghost_days types

type ghostDaysInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of days to return (default: all)"`
}

type ghostDaysOutput struct {
	Count int              `json:"count"`
	Hours float64          `json:"hours"`
	Days  []stats.GhostDay `json:"days"`
}

func (t *reportTools) ghostDaysHandler(ctx context.Context, req *mcpsdk.CallToolRequest, input ghostDaysInput) (*mcpsdk.CallToolResult, ghostDaysOutput, error) {
	if input.Limit < 0 {
		return nil, ghostDaysOutput{}, fmt.Errorf("limit must not be negative")
	}

	res, err := t.scanner.Run(ctx)
	if err != nil {
		return nil, ghostDaysOutput{}, fmt.Errorf("scan failed: %w", err)
	}

	all := res.Report.GhostDayList
	if input.Limit > 0 && input.Limit < len(all) {
		all = all[:input.Limit]
	}
	days := make([]stats.GhostDay, 0, len(all))
	days = append(days, all...)

	return nil, ghostDaysOutput{
		Count: res.Report.GhostDays,
		Hours: res.Report.GhostHours,
		Days:  days,
	}, nil
}

// project_load types

type projectLoadInput struct {
	Project string `json:"project" jsonschema:"Project name as shown in the report, e.g. my-app or ~"`
}

type projectLoadOutput struct {
	Project stats.ProjectLoad `json:"project"`
}

func (t *reportTools) projectLoadHandler(ctx context.Context, req *mcpsdk.CallToolRequest, input projectLoadInput) (*mcpsdk.CallToolResult, projectLoadOutput, error) {
	if input.Project == "" {
		return nil, projectLoadOutput{}, fmt.Errorf("project is required")
	}

	res, err := t.scanner.Run(ctx)
	if err != nil {
		return nil, projectLoadOutput{}, fmt.Errorf("scan failed: %w", err)
	}

	name := stats.ProjectName(input.Project)
	mainH, inMain := res.Main.HoursByProject[name]
	subH, inSub := res.Sub.HoursByProject[name]
	if !inMain && !inSub {
		return nil, projectLoadOutput{}, fmt.Errorf("project not found: %s", input.Project)
	}

	return nil, projectLoadOutput{Project: stats.ProjectLoad{
		Name:  name,
		Total: mainH + subH,
		Main:  mainH,
		Sub:   subH,
	}}, nil
}
