package main

import (
	"fmt"
	"os"

	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/internal/app/repository"
	"github.com/sudays/sudays-backend/internal/db"
	"github.com/sudays/sudays-backend/pkg/logger"
)

// Seed provisions member accounts (typically admins and staff) from an XLSX
// sheet. Seeded accounts skip email verification.
func main() {
	log := logger.New(logger.Config{Level: "info", Format: "console", EnableColor: true})

	// 명령줄 인자 확인
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>", nil)
	}
	filePath := os.Args[1]

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", err)
	}

	// DB 연결
	database, err := db.Initialize(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}
	defer db.Close(database)

	if err := db.Migrate(database, log); err != nil {
		log.Fatal("Failed to run migrations", err)
	}

	memberRepo := repository.NewMemberRepository(database, log)

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	result, err := readMembersFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX", err)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", result.TotalRows)
	fmt.Printf("  Valid members: %d\n", len(result.Members))
	for _, skipped := range result.Skipped {
		fmt.Printf("  Skipped row %d: %s\n", skipped.Row, skipped.Reason)
	}

	if len(result.Members) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	// 사용자 확인
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	created, existing, err := importMembers(memberRepo, result.Members)
	if err != nil {
		log.Fatal("Failed to import members", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("  Created: %d\n", created)
	fmt.Printf("  Already present: %d\n", existing)
}
