package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// Field names understood by Parse
const (
	totalField  = "total"
	keyField    = "key"
	destField   = "dest"
	pickupField = "pickup"
)

// ErrUnsupportedExpression - Returned by Parse when the text uses anything outside the filter grammar
var ErrUnsupportedExpression = errors.New("unsupported filter expression")

// Parse - Converts a textual filter into an expression tree.
// The grammar is a small subset of expr-lang:
//   - total >= N, total <= N, total > N, total < N, total == N
//   - key == "k", dest == "d", pickup == "YYYY-MM-DD"
//   - &&, and, ||, or, parentheses, true, false
//
// Empty text returns All().
func Parse(text string) (expr Expr, err error) {
	if strings.TrimSpace(text) == "" {
		expr = All()
		return
	}

	tree, err := parser.Parse(text)
	if err != nil {
		err = fmt.Errorf("error while parsing filter: %w", err)
		return
	}

	expr, err = convert(tree.Node)

	return
}

// MustParse - Like Parse but panics on error, meant for constant filters in code and tests
func MustParse(text string) Expr {
	expr, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return expr
}

// convert - Walks the expr-lang AST and builds the matching filter nodes
func convert(node ast.Node) (Expr, error) {
	switch n := node.(type) {
	case *ast.BoolNode:
		if n.Value {
			return All(), nil
		}
		return Or{}, nil

	case *ast.BinaryNode:
		switch n.Operator {
		case "&&", "and":
			return convertComposite(n, func(l, r Expr) Expr { return flatten(And{l, r}) })
		case "||", "or":
			return convertComposite(n, func(l, r Expr) Expr { return flattenOr(Or{l, r}) })
		case "==", ">=", "<=", ">", "<":
			return convertComparison(n)
		}
		return nil, fmt.Errorf("%w: operator %q", ErrUnsupportedExpression, n.Operator)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedExpression, node.String())
}

func convertComposite(n *ast.BinaryNode, combine func(l, r Expr) Expr) (Expr, error) {
	left, err := convert(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := convert(n.Right)
	if err != nil {
		return nil, err
	}
	return combine(left, right), nil
}

// convertComparison - Handles "field op literal" and "literal op field"
func convertComparison(n *ast.BinaryNode) (Expr, error) {
	op := n.Operator
	ident, ok := n.Left.(*ast.IdentifierNode)
	literal := n.Right
	if !ok {
		ident, ok = n.Right.(*ast.IdentifierNode)
		if !ok {
			return nil, fmt.Errorf("%w: comparison needs a field name", ErrUnsupportedExpression)
		}
		literal = n.Left
		op = mirror(op)
	}

	switch ident.Value {
	case totalField:
		value, err := numberValue(literal)
		if err != nil {
			return nil, err
		}
		switch op {
		case "==":
			return Between(value, value), nil
		case ">=":
			return AtLeast(value), nil
		case ">":
			return Above(value), nil
		case "<=":
			return AtMost(value), nil
		default:
			return Below(value), nil
		}

	case keyField, destField, pickupField:
		if op != "==" {
			return nil, fmt.Errorf("%w: field %s only supports ==", ErrUnsupportedExpression, ident.Value)
		}
		str, ok := literal.(*ast.StringNode)
		if !ok {
			return nil, fmt.Errorf("%w: field %s needs a string literal", ErrUnsupportedExpression, ident.Value)
		}
		switch ident.Value {
		case keyField:
			return KeyEquals{Key: str.Value}, nil
		case destField:
			return DestinationEquals{ID: str.Value}, nil
		default:
			return PickupDate{Day: str.Value}, nil
		}
	}

	return nil, fmt.Errorf("%w: unknown field %q", ErrUnsupportedExpression, ident.Value)
}

func numberValue(node ast.Node) (float64, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return float64(n.Value), nil
	case *ast.FloatNode:
		return n.Value, nil
	case *ast.UnaryNode:
		if n.Operator == "-" {
			v, err := numberValue(n.Node)
			return -v, err
		}
	}
	return 0, fmt.Errorf("%w: total needs a numeric literal", ErrUnsupportedExpression)
}

func mirror(op string) string {
	switch op {
	case ">=":
		return "<="
	case "<=":
		return ">="
	case ">":
		return "<"
	case "<":
		return ">"
	}
	return op
}

// flatten - Merges nested And nodes so that "a && b && c" becomes one And with three children
func flatten(a And) Expr {
	out := make(And, 0, len(a))
	for _, e := range a {
		if inner, ok := e.(And); ok {
			out = append(out, inner...)
			continue
		}
		out = append(out, e)
	}
	return out
}

// flattenOr - Same as flatten for Or nodes
func flattenOr(o Or) Expr {
	out := make(Or, 0, len(o))
	for _, e := range o {
		if inner, ok := e.(Or); ok {
			out = append(out, inner...)
			continue
		}
		out = append(out, e)
	}
	return out
}
