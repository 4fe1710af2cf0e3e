package schema

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"
)

// Derived columns (full name, composed address) are CEL expressions
// evaluated against the fetched row. The environment exposes:
//
//	row       — the record as map(string, dyn)
//	str(x)    — null-tolerant string conversion (NULL → "")
//
// Expressions are compiled once at registry build time; evaluation
// failures render as an empty cell rather than failing the whole page.
func newExprEnv() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Strings(),
		cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)),
		cel.Function("str",
			cel.Overload("str_dyn", []*cel.Type{cel.DynType}, cel.StringType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					if val == nil || val == types.NullValue {
						return types.String("")
					}
					if _, isNull := val.(types.Null); isNull {
						return types.String("")
					}
					converted := val.ConvertToType(types.StringType)
					if types.IsError(converted) {
						return types.String(fmt.Sprintf("%v", val.Value()))
					}
					return converted
				}),
			),
		),
	)
}

type compiledExpr struct {
	prg cel.Program
}

func compileExpr(env *cel.Env, src string) (*compiledExpr, error) {
	ast, iss := env.Compile(src)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile column expression %q: %w", src, iss.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program column expression %q: %w", src, err)
	}
	return &compiledExpr{prg: prg}, nil
}

// eval renders the expression for one row. Collapses repeated spaces
// left by empty optional parts, matching the original concatenation.
func (c *compiledExpr) eval(row map[string]any) (string, error) {
	out, _, err := c.prg.Eval(map[string]any{"row": row})
	if err != nil {
		return "", err
	}
	s, ok := out.Value().(string)
	if !ok {
		return fmt.Sprintf("%v", out.Value()), nil
	}
	return strings.Join(strings.Fields(s), " "), nil
}
