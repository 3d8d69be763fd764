package assets

import (
	"fmt"
	"strings"

	"github.com/alnah/go-invoicedocx/internal/docx"
)

// Template contract minimums.
const (
	minItemsRows     = 2
	minItemsColumns  = 4
	minFinancialRows = 4
	minTables        = 2
)

// ValidateAssetName checks that a template name is safe for use as a filename.
// Returns ErrInvalidAssetName if the name is empty or contains path separators,
// dots (which could allow extension manipulation), or traversal characters.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

// ValidateTemplate opens data as a DOCX package and checks the table
// layout the renderer depends on.
func ValidateTemplate(data []byte) error {
	pkg, err := docx.Open(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	tables := pkg.Tables()
	if len(tables) < minTables {
		return fmt.Errorf("%w: found %d tables, need %d", ErrInvalidTemplate, len(tables), minTables)
	}
	items, financial := tables[0], tables[1]
	if n := len(items.Rows()); n < minItemsRows {
		return fmt.Errorf("%w: items table has %d rows, need %d", ErrInvalidTemplate, n, minItemsRows)
	}
	if n := len(items.GridWidths()); n < minItemsColumns {
		return fmt.Errorf("%w: items table has %d columns, need %d", ErrInvalidTemplate, n, minItemsColumns)
	}
	if n := len(financial.Rows()); n < minFinancialRows {
		return fmt.Errorf("%w: financial table has %d rows, need %d", ErrInvalidTemplate, n, minFinancialRows)
	}
	return nil
}
