package specification

import "gorm.io/gorm"

type ByDeliveryStatus struct {
	Status string
}

func (s ByDeliveryStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
