package schema

import (
	"strings"

	"github.com/wickwirew/sqlsig/internal/types"
)

// affinityOf lowers a declared SQL type name to its lattice type following
// SQLite's five-rule affinity algorithm, with a BOOL check added before the
// last rule (checked in order; the first matching substring wins):
//  1. contains "INT"                      -> integer
//  2. contains "CHAR", "CLOB", or "TEXT"   -> text
//  3. contains "BLOB", or is empty         -> blob
//  4. contains "REAL", "FLOA", or "DOUB"   -> real
//  5. contains "BOOL"                      -> bool
//  6. otherwise (NUMERIC affinity family)  -> real, since this module has no
//     runtime value to apply NUMERIC's value-dependent storage class to.
// AffinityOf is the exported form of affinityOf, used by the type checker
// to lower a CAST(... AS type) target the same way a column declaration is
// lowered.
func AffinityOf(declared string) *types.Type {
	return affinityOf(declared)
}

func affinityOf(declared string) *types.Type {
	up := strings.ToUpper(declared)
	switch {
	case strings.Contains(up, "INT"):
		return types.NewInteger()
	case strings.Contains(up, "CHAR"), strings.Contains(up, "CLOB"), strings.Contains(up, "TEXT"):
		return types.NewText()
	case strings.Contains(up, "BLOB"), up == "":
		return types.NewBlob()
	case strings.Contains(up, "REAL"), strings.Contains(up, "FLOA"), strings.Contains(up, "DOUB"):
		return types.NewReal()
	case strings.Contains(up, "BOOL"):
		return types.NewBool()
	default:
		return types.NewReal()
	}
}
