// Package option applies list options to gorm statements.
package option

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/robobooks/pkg/db/pagination"
	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type paginationOption struct {
	page pagination.Pagination
}

// ApplyPagination pages by descending snowflake id. It fetches one row more
// than the page size so callers can tell whether another page exists.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return paginationOption{page: page}
}

func (o paginationOption) Apply(stmt *gorm.DB) *gorm.DB {
	if o.page.PageToken != "" {
		if cursor, err := pagination.DecodeCursor(o.page.PageToken); err == nil {
			if id, err := snowflake.ParseString(cursor.ID); err == nil && id > 0 {
				stmt = stmt.Where("id < ?", id)
			}
		}
	}
	return stmt.Order("id desc").Limit(o.page.Size() + 1)
}
