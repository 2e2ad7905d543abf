package jack

import "os"

// isStrictMode mirrors the PARSEC_DEBUG/EXPORT_AST/PRINT_AST convention used
// throughout the parsing packages: any non-empty value turns the flag on.
// Under STRICT_MODE the compiler additionally rejects use-before-assign and
// naming-style violations instead of silently accepting them.
func isStrictMode() bool {
	return os.Getenv("STRICT_MODE") != ""
}
