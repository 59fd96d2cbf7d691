package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// buildDSN 組出postgres連線字串
// sslmode沒給時預設disable (本地開發)
func buildDSN(dbname, host, port, user, pas, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pas, dbname, sslmode)
}

func GetDbConn(dbname, host, port, user, pas, sslmode string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(buildDSN(dbname, host, port, user, pas, sslmode)), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}
