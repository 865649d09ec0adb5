// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Gourmet tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/gourmet/internal/gourmet"
	"github.com/starford/gourmet/internal/models"
)

// Server wraps the MCP server with Gourmet tools.
type Server struct {
	mcp *server.MCPServer
	svc *gourmet.Service
}

// New creates a new MCP server with all Gourmet tools registered.
func New(svc *gourmet.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Gourmet",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_dishes",
		mcp.WithDescription("List all dishes in the catalog with ingredients, tags, and cooking statistics."),
	), s.listDishes)

	s.mcp.AddTool(mcp.NewTool("get_dish",
		mcp.WithDescription("Read one dish by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Dish id")),
	), s.getDish)

	s.mcp.AddTool(mcp.NewTool("create_dish",
		mcp.WithDescription("Create a new dish. The dish JSON MUST follow the canonical dish format. "+
			"Read the contract first via the get_dish_contract tool or the gourmet://dish-format resource."),
		mcp.WithString("dish", mcp.Required(), mcp.Description("Dish as JSON following the Gourmet dish format contract")),
	), s.createDish)

	s.mcp.AddTool(mcp.NewTool("get_dish_contract",
		mcp.WithDescription("Returns the canonical Gourmet dish format contract. "+
			"Call this before creating dishes to ensure correct structure."),
	), s.getDishContract)

	s.mcp.AddTool(mcp.NewTool("plan_dish",
		mcp.WithDescription("Assign a dish to an ISO calendar week. Bumps the dish's cooking statistics. "+
			"Omit year and week to target the current planning week (next week from Friday on)."),
		mcp.WithString("dishId", mcp.Required(), mcp.Description("Dish id")),
		mcp.WithNumber("year", mcp.Description("ISO year; defaults to the current planning week")),
		mcp.WithNumber("week", mcp.Description("ISO week number; defaults to the current planning week")),
	), s.planDish)

	s.mcp.AddTool(mcp.NewTool("get_shopping_list",
		mcp.WithDescription("Consolidated shopping list and pantry list for one planned week."),
		mcp.WithNumber("year", mcp.Required(), mcp.Description("ISO year")),
		mcp.WithNumber("week", mcp.Required(), mcp.Description("ISO week number")),
	), s.getShoppingList)

	s.mcp.AddTool(mcp.NewTool("import_recipe",
		mcp.WithDescription("Extract a recipe from a web page URL and save it as a new dish."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Recipe page URL")),
	), s.importRecipe)

	// Resource: dish format contract.
	s.mcp.AddResource(
		mcp.NewResource("gourmet://dish-format", "Dish Format Contract",
			mcp.WithResourceDescription("Canonical dish JSON format that all created dishes must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDishFormatResource,
	)

	// Resource: pantry staples vocabulary.
	s.mcp.AddResource(
		mcp.NewResource("gourmet://staples", "Pantry Staples",
			mcp.WithResourceDescription("Normalized ingredient names routed to the pantry list instead of the shopping list."),
			mcp.WithMIMEType("application/json"),
		),
		s.readStaplesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listDishes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dishes, err := s.svc.Dishes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(dishes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getDish(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dish, err := s.svc.GetDish(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(dish, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createDish(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("dish")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var dish models.Dish
	if err := json.Unmarshal([]byte(raw), &dish); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid dish JSON: %v", err)), nil
	}
	dish.ID = ""

	saved, err := s.svc.SaveDish(ctx, dish)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", saved.Name, saved.ID)), nil
}

func (s *Server) planDish(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dishID, err := req.RequireString("dishId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	year := req.GetInt("year", 0)
	week := req.GetInt("week", 0)

	if year == 0 || week == 0 {
		year, week, err = s.svc.QuickAddDish(ctx, dishID)
	} else {
		err = s.svc.AddDishToPlan(ctx, year, week, dishID)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("planned: %s in %s", dishID, models.PlanID(year, week))), nil
}

func (s *Server) getShoppingList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year, err := req.RequireInt("year")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	week, err := req.RequireInt("week")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	list, err := s.svc.ShoppingListForWeek(ctx, year, week)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(list, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) importRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := s.svc.ImportRecipes(ctx, []string{url})
	res := results[0]
	if res.Error != "" {
		return mcp.NewToolResultError(res.Error), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("imported: %s (%s)", res.Name, res.DishID)), nil
}

func (s *Server) getDishContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DishFormatContract), nil
}

func (s *Server) readDishFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "gourmet://dish-format",
			MIMEType: "text/markdown",
			Text:     DishFormatContract,
		},
	}, nil
}

func (s *Server) readStaplesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names := s.svc.StapleNames()
	sort.Strings(names)
	out, err := json.Marshal(names)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "gourmet://staples",
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
