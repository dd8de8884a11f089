// errors_helper.go: shared error construction for store operations.
package datastore

import (
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/hazyhour/blazebot/internal/errors"
)

// newDatabaseError wraps a gorm error with the datastore component and
// database category, attaching optional key/value context pairs.
func newDatabaseError(err error, operation string, kv ...string) error {
	eb := errors.Newf("%s: %w", operation, err).
		Component("datastore").
		Category(errors.CategoryDatabase)
	for i := 0; i+1 < len(kv); i += 2 {
		eb = eb.Context(kv[i], kv[i+1])
	}
	return eb.Build()
}

func isNotFound(err error) bool {
	return stderrors.Is(err, gorm.ErrRecordNotFound)
}
