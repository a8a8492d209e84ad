package admin

import (
	"strings"

	"github.com/hatlonely/hms/catalog"
	"github.com/hatlonely/hms/database"
	"github.com/hatlonely/hms/query"
	"github.com/pkg/errors"
)

// Message 把错误转换成给最终用户看的一行文本
func Message(err error) string {
	if err == nil {
		return ""
	}

	var ve *catalog.ValidationError
	var nf *NotFoundError
	var pe *PolicyError
	var de *database.DatabaseError

	switch {
	case errors.Is(err, catalog.ErrUnknownEntity):
		return "Invalid table selected or table does not have a defined primary key."
	case errors.As(err, &ve):
		msgs := make([]string, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			msgs = append(msgs, f.Field+" "+f.Message)
		}
		return "Please correct the following fields: " + strings.Join(msgs, "; ") + "."
	case errors.Is(err, database.ErrDuplicateKey):
		return "Error: Duplicate entry. A record with the same unique field value already exists."
	case errors.Is(err, database.ErrForeignKeyViolation):
		return "Error: Foreign key constraint fails. Make sure related records exist in the referenced table."
	case errors.As(err, &nf):
		return nf.Error()
	case errors.Is(err, database.ErrRecordNotFound):
		return "No record found."
	case errors.As(err, &pe):
		return pe.Error()
	case errors.Is(err, query.ErrUnknownCategory), errors.Is(err, query.ErrUnknownQuery):
		return "Invalid query selected: " + err.Error()
	case errors.As(err, &de):
		return "Error: " + de.Message
	default:
		return "Error: " + err.Error()
	}
}
