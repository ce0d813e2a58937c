// Package lang compiles the restricted Lua expressions used to drive
// instrument displays into constants or typed expression trees.
//
// # Pipeline
//
// Compilation runs in four stages:
//
//   - Scan: a [Scanner] splits source into raw tokens (numbers, identifiers,
//     symbols, whitespace). Symbols are resolved through a [SymbolTable],
//     which maps literal punctuation to token kinds and may carry aliases
//     such as "!=" for "~=".
//   - Normalize: [Normalize] drops whitespace, turns the words and, or, and
//     not into operators, and merges quoted runs into string tokens.
//   - Parse: a [Parser] applies the parselets of a [Grammar] by binding
//     power (Pratt parsing) to build an [Expr] tree.
//   - Classify: [Classify] folds a bare literal, or a negated numeric
//     literal, into a constant [Result]. Anything else is kept as a tree.
//
// [Compile] runs every stage and never fails outright: errors are returned
// inside the [Result] and classified as [ErrLexical], [ErrSyntax], or
// [ErrInternal].
//
// # Grammar
//
// Informal EBNF, with binding powers from loosest to tightest:
//
//	Expr    → Prefix { Infix }
//	Prefix  → Number | String | Name | '(' Expr ')'
//	        | ( '-' | '+' ) Expr        (11)
//	        | 'not' Expr                (9)
//	Infix   → 'or' Expr                 (3)
//	        | 'and' Expr                (4)
//	        | ( '==' | '~=' | '<' | '<=' | '>' | '>=' ) Expr (5)
//	        | '..' Expr                 (6)
//	        | ( '+' | '-' ) Expr        (7)
//	        | ( '*' | '/' | '%' ) Expr  (8)
//	        | '^' Expr                  (10, right-associative)
//	        | '.' Name                  (13)
//	        | '(' [ Expr { ',' Expr } ] ')' (13)
//
// # Canonical Names
//
// Every node caches a canonical name that is deterministic for a given tree
// shape. Operators are fully parenthesized, call arguments are joined with
// ", ", member access is written without parentheses, and groups are
// transparent:
//
//	1 + 2 * 3        → (1 + (2 * 3))
//	2 ^ 3 ^ 2        → (2 ^ (3 ^ 2))
//	a and b or c     → ((a and b) or c)
//	t.method(1)      → t.method(1)
//	(a + b) * -c     → ((a + b) * (-c))
//
// # Evaluation
//
// A [Generator] translates expression trees into expr-lang programs, caching
// them by canonical name, and evaluates them against an [Env].
package lang
