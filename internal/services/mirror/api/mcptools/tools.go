// Package mcptools exposes storefront reads as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"net/http"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/query"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "Wario Storefront Mirror"
	serverVersion = "0.1.0"
)

// NewServer builds an MCP server with every storefront tool registered.
func NewServer(svc *query.Service) (*mcp.Server, error) {
	if svc == nil {
		return nil, errors.New("query service is required")
	}
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	Register(server, svc)
	return server, nil
}

// Register adds the storefront tools to server.
func Register(server *mcp.Server, svc *query.Service) {
	mcp.AddTool(server, StatusTool(), StatusHandler(svc))
	mcp.AddTool(server, CategoryProductsTool(), CategoryProductsHandler(svc))
	mcp.AddTool(server, SubcategoriesTool(), SubcategoriesHandler(svc))
	mcp.AddTool(server, ProductMetadataTool(), ProductMetadataHandler(svc))
}

// HTTPHandler serves server over the streamable HTTP transport.
func HTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}

// StatusInput takes no arguments.
type StatusInput struct{}

// StatusTool defines the storefront status tool.
func StatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "storefront_status",
		Description: "Reports the mirror connection status, server clock, and catalog revision.",
	}
}

// StatusHandler reports the current mirror status.
func StatusHandler(svc *query.Service) mcp.ToolHandlerFor[StatusInput, query.Status] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ StatusInput) (*mcp.CallToolResult, query.Status, error) {
		return nil, svc.Status(), nil
	}
}

// CategoryInput selects a category listing.
type CategoryInput struct {
	CategoryID    string `json:"category_id" jsonschema:"category identifier"`
	Filter        string `json:"filter,omitempty" jsonschema:"visibility filter: menu, order, or none (default none)"`
	Time          int64  `json:"time,omitempty" jsonschema:"order time in epoch milliseconds (defaults to the server clock)"`
	FulfillmentID string `json:"fulfillment_id,omitempty" jsonschema:"fulfillment identifier (defaults to the configured default)"`
}

func (in CategoryInput) query() query.CategoryQuery {
	return query.CategoryQuery{
		CategoryID:    in.CategoryID,
		Filter:        in.Filter,
		OrderTime:     in.Time,
		FulfillmentID: in.FulfillmentID,
	}
}

// CategoryProductsTool defines the category product listing tool.
func CategoryProductsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "storefront_category_products",
		Description: "Lists the product instance ids visible in a category, in display order.",
	}
}

// CategoryProductsHandler lists a category's visible product instances.
func CategoryProductsHandler(svc *query.Service) mcp.ToolHandlerFor[CategoryInput, query.CategoryListing] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CategoryInput) (*mcp.CallToolResult, query.CategoryListing, error) {
		listing, err := svc.CategoryProducts(input.query())
		if err != nil {
			return nil, query.CategoryListing{}, err
		}
		return nil, listing, nil
	}
}

// SubcategoriesTool defines the populated subcategory tool.
func SubcategoriesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "storefront_subcategories",
		Description: "Lists the child categories of a category that have something visible to show.",
	}
}

// SubcategoriesHandler lists a category's populated children.
func SubcategoriesHandler(svc *query.Service) mcp.ToolHandlerFor[CategoryInput, query.CategoryListing] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CategoryInput) (*mcp.CallToolResult, query.CategoryListing, error) {
		listing, err := svc.Subcategories(input.query())
		if err != nil {
			return nil, query.CategoryListing{}, err
		}
		return nil, listing, nil
	}
}

// ProductMetadataInput selects a product with modifiers.
type ProductMetadataInput struct {
	ProductID     string                      `json:"product_id" jsonschema:"product identifier"`
	Modifiers     []catalog.ModifierSelection `json:"modifiers,omitempty" jsonschema:"selected options per modifier type"`
	Time          int64                       `json:"time,omitempty" jsonschema:"service time in epoch milliseconds (defaults to the server clock)"`
	FulfillmentID string                      `json:"fulfillment_id,omitempty" jsonschema:"fulfillment identifier (defaults to the configured default)"`
	Context       string                      `json:"context,omitempty" jsonschema:"display context: menu or order (default menu)"`
}

// ProductMetadataTool defines the product metadata tool.
func ProductMetadataTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "storefront_product_metadata",
		Description: "Computes the name, price, and option state of a product with the given modifiers.",
	}
}

// ProductMetadataHandler computes product metadata and its display.
func ProductMetadataHandler(svc *query.Service) mcp.ToolHandlerFor[ProductMetadataInput, query.ProductView] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProductMetadataInput) (*mcp.CallToolResult, query.ProductView, error) {
		view, err := svc.ProductMetadata(query.MetadataQuery{
			ProductID:     input.ProductID,
			Modifiers:     input.Modifiers,
			ServiceTime:   input.Time,
			FulfillmentID: input.FulfillmentID,
			Context:       input.Context,
		})
		if err != nil {
			return nil, query.ProductView{}, err
		}
		return nil, view, nil
	}
}
