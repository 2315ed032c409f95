package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
)

// paginate applies page/page-size from the filter
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// applyOrdering applies the filter's ordering when the column is allowed,
// falling back to a default. The allowlist blocks SQL injection through
// user-supplied order_by values.
func applyOrdering(query *gorm.DB, filter shared.Filter, allowed map[string]bool, fallback string) *gorm.DB {
	if filter.OrderBy != "" && allowed[filter.OrderBy] {
		dir := "ASC"
		if strings.EqualFold(filter.OrderDir, "desc") {
			dir = "DESC"
		}
		return query.Order(filter.OrderBy + " " + dir)
	}
	return query.Order(fallback)
}
