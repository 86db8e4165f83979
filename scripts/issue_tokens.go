// Bulk attempt token issuance for a whole batch.
//
// Assigning a batch is also available through the admin API; this script
// exists for operators preparing an exam session from the command line.
//
// Usage: go run scripts/issue_tokens.go -assessment 3 -batch "2026-spring"

package main

import (
	"flag"
	"institute_admin_backend/internal/config"
	"institute_admin_backend/internal/repository"
	"institute_admin_backend/internal/service"
	"institute_admin_backend/pkg/database"
	"institute_admin_backend/pkg/logger"
	"log"
)

func main() {
	assessmentID := flag.Uint("assessment", 0, "assessment id to assign")
	batch := flag.String("batch", "", "batch name whose students receive tokens")
	flag.Parse()

	if *assessmentID == 0 || *batch == "" {
		log.Fatal("both -assessment and -batch are required")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	studentRepo := repository.NewStudentRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db, nil)
	enrollment := service.NewEnrollmentService(studentRepo, attemptRepo, assessmentRepo)

	issued, err := enrollment.AssignBatch(*assessmentID, *batch)
	if err != nil {
		log.Fatalf("Assignment failed: %v", err)
	}

	log.Printf("Issued %d tokens for assessment %d, batch %q", issued, *assessmentID, *batch)
}
