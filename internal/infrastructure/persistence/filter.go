package persistence

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kbridge/backend/internal/domain/shared"
)

// CommonSortFields contains fields common to all tables here
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"status":     true,
}

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// applyFilter applies column filters, ordering and pagination to a query.
// Sort input is whitelisted, never interpolated raw.
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for column, value := range filter.Filters {
		if CommonSortFields[column] || column == "status" {
			query = query.Where(fmt.Sprintf("%s = ?", column), value)
		}
	}

	orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	return query
}
