package main

import (
	"fmt"
	"strings"

	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/internal/app/repository"
	"github.com/sudays/sudays-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// 컬럼 순서: 이메일, 닉네임, 비밀번호, 권한, 등급
const (
	colEmail = iota
	colNickname
	colPassword
	colRole
	colGrade
	requiredColumns = colPassword + 1
)

type skippedRow struct {
	Row    int
	Reason string
}

type readResult struct {
	TotalRows int
	Members   []model.Member
	Skipped   []skippedRow
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// readMembersFromXLSX parses the first sheet. The first row is a header.
// Passwords are hashed here so plaintext never leaves this function.
func readMembersFromXLSX(filePath string) (*readResult, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	result := &readResult{TotalRows: len(rows) - 1}
	seenEmails := make(map[string]bool)    // 파일 내 중복 제거용
	seenNicknames := make(map[string]bool) // 파일 내 중복 제거용

	for i, row := range rows[1:] {
		rowNum := i + 2 // 시트 기준 행 번호
		skip := func(reason string) {
			result.Skipped = append(result.Skipped, skippedRow{Row: rowNum, Reason: reason})
		}

		if len(row) < requiredColumns {
			skip("missing columns")
			continue
		}

		email := util.NormalizeEmail(cell(row, colEmail))
		nickname := cell(row, colNickname)
		password := cell(row, colPassword)

		if !util.IsValidEmail(email) {
			skip("invalid email")
			continue
		}
		if nickname == "" {
			skip("empty nickname")
			continue
		}
		if !util.ValidatePasswordPolicy(password) {
			skip("password does not meet policy")
			continue
		}

		role := model.RoleUser
		if v := strings.ToUpper(cell(row, colRole)); v != "" {
			role = model.MemberRole(v)
		}
		if !role.Valid() {
			skip("unknown role")
			continue
		}

		grade := model.GradeNonMember
		if v := strings.ToUpper(cell(row, colGrade)); v != "" {
			grade = model.MemberGrade(v)
		}
		if !grade.Valid() {
			skip("unknown grade")
			continue
		}

		if seenEmails[email] || seenNicknames[nickname] {
			skip("duplicate in file")
			continue
		}
		seenEmails[email] = true
		seenNicknames[nickname] = true

		hash, err := util.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password on row %d: %w", rowNum, err)
		}

		result.Members = append(result.Members, model.Member{
			Email:        email,
			Nickname:     nickname,
			PasswordHash: hash,
			Role:         role,
			Grade:        grade,
		})
	}

	return result, nil
}

// importMembers creates every member whose email and nickname are both free.
// Members already present are counted, never overwritten.
func importMembers(repo repository.MemberRepository, members []model.Member) (created, existing int, err error) {
	for i := range members {
		m := &members[i]

		emailTaken, err := repo.ExistsByEmail(m.Email)
		if err != nil {
			return created, existing, err
		}
		nicknameTaken, err := repo.ExistsByNickname(m.Nickname)
		if err != nil {
			return created, existing, err
		}
		if emailTaken || nicknameTaken {
			existing++
			continue
		}

		if err := repo.Create(m); err != nil {
			return created, existing, fmt.Errorf("failed to create %s: %w", m.Email, err)
		}
		created++
	}
	return created, existing, nil
}
