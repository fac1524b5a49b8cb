package persistence

import "gorm.io/gorm"

// ScopeKeyScope restricts a query to rows of one scope partition
func ScopeKeyScope(scopeKey string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("scope_key = ?", scopeKey)
	}
}
