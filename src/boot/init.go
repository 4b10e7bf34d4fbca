package boot

import (
	"log"
	"time"

	"tbs/src/db"
	"tbs/src/lib"
	"tbs/src/models"
	"tbs/src/utils"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.TravelOption{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the background scheduler and registers the periodic
// seat-inventory audit.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	id, err := lib.CreateCronJob(utils.ReconcileSeatInventory, 10*time.Minute)
	if err != nil {
		log.Printf("Error scheduling seat reconciliation: %s\n", err.Error())
	} else {
		log.Printf("Scheduled seat reconciliation job: %s\n", *id)
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
