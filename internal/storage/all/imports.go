// Package all enables every built-in sink kind through blank imports:
//
//   - "csv"    (ecomclean/internal/storage/csvfile)
//   - "sqlite" (ecomclean/internal/storage/sqlite)
package all

import (
	_ "ecomclean/internal/storage/csvfile"
	_ "ecomclean/internal/storage/sqlite"
)
