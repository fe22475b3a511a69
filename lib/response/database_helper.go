package response

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/log"
	"gorm.io/gorm"
)

// HandleDBError maps a gorm lookup error onto the standard response shapes.
// Returns nil when there is nothing to report so callers can write
// `if resp := HandleDBError(...); resp != nil { return resp }`.
func HandleDBError(err error, req *evo.Request, notFoundMsg string, context string) interface{} {
	if err == nil {
		return nil
	}
	if err == gorm.ErrRecordNotFound {
		return NotFound(req, notFoundMsg)
	}
	log.Error("%s: %v", context, err)
	return Error(ErrInternalError)
}

// HandlePaginationError logs and maps pagination failures. A not-found from
// the paginator means an empty page, which the caller renders itself.
func HandlePaginationError(err error, req *evo.Request, context string) interface{} {
	if err == nil {
		return nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	log.Error("%s pagination error: %v", context, err)
	return Error(ErrInternalError)
}
