// This file contains the logic for parsing HCL type expressions (e.g.,
// `string`, `list(string)`) into their corresponding cty.Type objects.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/zclconf/go-cty/cty"
)

// typeExprToCtyType converts an HCL type expression into a column type.
// Only the types a table column can hold are accepted.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	ty, err := parseTypeExpr(ctx, expr)
	if err != nil {
		return cty.NilType, err
	}
	if !table.IsSupportedType(ty) {
		return cty.NilType, fmt.Errorf("type %s cannot be used for a column: must be string, number, bool or list(string)", ty.FriendlyName())
	}
	return ty, nil
}

func parseTypeExpr(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	logger := ctxlog.FromContext(ctx)

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		logger.Debug("Parsing type expression as a function call.", "call", v.Name)
		if v.Name != "list" {
			return cty.NilType, fmt.Errorf("unknown type constructor function %q", v.Name)
		}
		if len(v.Args) != 1 {
			return cty.NilType, fmt.Errorf("the list() type constructor requires exactly one argument, got %d", len(v.Args))
		}
		elementType, err := parseTypeExpr(ctx, v.Args[0])
		if err != nil {
			return cty.NilType, err
		}
		return cty.List(elementType), nil

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.NilType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		rootName := v.Traversal.RootName()
		logger.Debug("Parsing type expression as a primitive.", "keyword", rootName)
		switch rootName {
		case "string":
			return cty.String, nil
		case "number":
			return cty.Number, nil
		case "bool":
			return cty.Bool, nil
		default:
			return cty.NilType, fmt.Errorf("unknown primitive type %q", rootName)
		}

	default:
		return cty.NilType, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}
