package seeds

import (
	"log"

	"maturity_backend/internals/seeds/referential"

	"gorm.io/gorm"
)

const DefaultReferentialFile = "internals/seeds/referential/data_referential.json"

// RunAllSeeds loads the reference questionnaire. Safe to run on every boot.
func RunAllSeeds(db *gorm.DB, referentialFile string) {
	if referentialFile == "" {
		referentialFile = DefaultReferentialFile
	}
	n, err := referential.SeedReferentialFromJSON(db, referentialFile)
	if err != nil {
		log.Printf("❌ [SEED] referential: %v", err)
		return
	}
	log.Printf("✅ [SEED] referential: %d new function(s)", n)
}
