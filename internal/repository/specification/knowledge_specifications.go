package specification

import "gorm.io/gorm"

type ByScope struct {
	Scope string
}

func (s ByScope) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("scope = ?", s.Scope)
}

type ByIdentityAndDate struct {
	Identity string
	Date     string
}

func (s ByIdentityAndDate) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("identity = ? AND date = ?", s.Identity, s.Date)
}
