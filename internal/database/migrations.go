package database

import (
	"github.com/chachabrian/tourhub-backend/internal/models"
	"gorm.io/gorm"
)

// checkConstraints pins the enumerations gorm cannot express in tags.
var checkConstraints = []struct {
	table, name, expr string
}{
	{"users", "users_role_check", "role IN ('User', 'Admin')"},
	{"tours", "tours_status_check", "status IN ('Active', 'Inactive')"},
	{"tours", "tours_price_check", "price_per_person >= 0"},
	{"bookings", "bookings_status_check", "status IN ('Pending', 'Confirmed', 'Canceled')"},
	{"bookings", "bookings_payment_status_check", "payment_status IN ('Pending', 'Paid', 'Failed', 'Refunded')"},
	{"bookings", "bookings_people_check", "number_of_people > 0"},
	{"reviews", "reviews_rating_check", "rating BETWEEN 1 AND 5"},
	{"reviews", "reviews_status_check", "status IN ('pending', 'approved', 'rejected')"},
	{"coupons", "coupons_discount_type_check", "discount_type IN ('percentage', 'fixed')"},
	{"coupons", "coupons_usage_check", "usage_limit IS NULL OR used_count <= usage_limit"},
	{"notifications", "notifications_priority_check", "priority IN ('low', 'normal', 'high', 'urgent')"},
	{"settings", "settings_type_check", "type IN ('string', 'number', 'boolean', 'json')"},
}

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.Tour{},
		&models.Booking{},
		&models.Review{},
		&models.Wishlist{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.Notification{},
		&models.AdminLog{},
		&models.SystemLog{},
		&models.Setting{},
	)
	if err != nil {
		return err
	}

	for _, c := range checkConstraints {
		if err := db.Exec(`ALTER TABLE ` + c.table + ` DROP CONSTRAINT IF EXISTS ` + c.name).Error; err != nil {
			return err
		}
		if err := db.Exec(`ALTER TABLE ` + c.table + ` ADD CONSTRAINT ` + c.name + ` CHECK (` + c.expr + `)`).Error; err != nil {
			return err
		}
	}

	return nil
}
