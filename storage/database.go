package storage

import (
	"log"
	"os"

	"casa-tiana-server/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

func performMigrations(db *gorm.DB) {
	db.AutoMigrate(
		&models.User{},
		&models.Reservation{},
		&models.ExternalCalendar{},
		&models.ExternalBlockedDate{},
		&models.Promotion{},
		&models.RoomManualStatus{},
		&models.PaymentLog{},
		&models.AuditLog{},
	)

	// GORM cannot express an exclusion constraint; it is what actually
	// prevents two live reservations from holding the same room on
	// overlapping nights. daterange is half-open, matching the exclusive
	// check-out semantics, so back-to-back stays sharing a turnover day are
	// allowed.
	db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist;")
	db.Exec(`
		DO $$ BEGIN
			ALTER TABLE reservations
			ADD CONSTRAINT reservations_no_date_overlap
			EXCLUDE USING gist (
				room_type WITH =,
				daterange(check_in::date, check_out::date) WITH &&
			)
			WHERE (status IN ('pending', 'confirmed'));
		EXCEPTION WHEN duplicate_table OR duplicate_object THEN NULL;
		END $$;
	`)
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	performMigrations(db)
	return db
}
