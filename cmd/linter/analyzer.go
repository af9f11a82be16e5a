package main

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const doc = `analyzer checks for forbidden function calls

This analyzer reports:
1. Usage of panic() function
2. Calls to time.Sleep(): agent loops must suspend via cancellable timers
   (select on a timer channel and the context), otherwise shutdown latency
   becomes unbounded`

var Analyzer = &analysis.Analyzer{
	Name:     "sleepcheck",
	Doc:      doc,
	Run:      run,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	inspector.Preorder(nodeFilter, func(node ast.Node) {
		callExpr := node.(*ast.CallExpr)

		// Проверка panic()
		if ident, ok := callExpr.Fun.(*ast.Ident); ok && ident.Name == "panic" {
			pass.Reportf(callExpr.Pos(), "panic() should not be used in production code")
			return
		}

		// Проверка time.Sleep()
		if selExpr, ok := callExpr.Fun.(*ast.SelectorExpr); ok {
			if xIdent, ok := selExpr.X.(*ast.Ident); ok {
				if xIdent.Name == "time" && selExpr.Sel.Name == "Sleep" {
					pass.Reportf(
						callExpr.Pos(),
						"time.Sleep() is not interruptible, use a timer with select on the context instead",
					)
				}
			}
		}
	})

	return nil, nil
}
