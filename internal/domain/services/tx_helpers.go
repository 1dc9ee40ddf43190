package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// rowLock returns a FOR UPDATE clause on dialects that support it. SQLite
// serializes writers on its own, so the clause is skipped there.
func rowLock(tx *gorm.DB) []clause.Expression {
	if tx.Dialector.Name() == "sqlite" {
		return nil
	}
	return []clause.Expression{clause.Locking{Strength: "UPDATE"}}
}
