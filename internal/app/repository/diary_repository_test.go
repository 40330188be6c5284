package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/internal/db"
	"github.com/sudays/sudays-backend/pkg/logger"
	"gorm.io/gorm"
)

func setupDiaryTest(t *testing.T) (*gorm.DB, DiaryRepository, DiaryImageRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, NewDiaryRepository(testDB, logger.Nop()), NewDiaryImageRepository(testDB, logger.Nop())
}

func TestDiaryRepository_UniqueMemberDate(t *testing.T) {
	_, diaries, _ := setupDiaryTest(t)

	first := &model.Diary{ID: uuid.NewString(), MemberID: 1, Date: "20240101", Content: "a", ImageIDs: []string{"x", "y"}}
	require.NoError(t, diaries.Create(first))

	dup := &model.Diary{ID: uuid.NewString(), MemberID: 1, Date: "20240101", Content: "b"}
	err := diaries.Create(dup)
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	// same date for another member is fine
	other := &model.Diary{ID: uuid.NewString(), MemberID: 2, Date: "20240101", Content: "c"}
	require.NoError(t, diaries.Create(other))

	found, err := diaries.FindByMemberAndDate(1, "20240101")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, []string{"x", "y"}, found.ImageIDs)

	_, err = diaries.FindByMemberAndDate(1, "20240102")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDiaryRepository_Save(t *testing.T) {
	_, diaries, _ := setupDiaryTest(t)

	diary := &model.Diary{ID: uuid.NewString(), MemberID: 1, Date: "20240101", Content: "hello"}
	require.NoError(t, diaries.Create(diary))

	diary.Content = "world"
	diary.ImageIDs = []string{"z"}
	require.NoError(t, diaries.Save(diary))

	found, err := diaries.FindByID(diary.ID)
	require.NoError(t, err)
	assert.Equal(t, "world", found.Content)
	assert.Equal(t, []string{"z"}, found.ImageIDs)
}

func TestDiaryImageRepository_StageAndLink(t *testing.T) {
	testDB, diaries, images := setupDiaryTest(t)

	staged := []*model.DiaryImage{
		{ID: uuid.NewString(), FileName: "a.png", Extension: ".png", BasePath: "/tmp", StorageKey: "a.png"},
		{ID: uuid.NewString(), FileName: "b.jpg", Extension: ".jpg", BasePath: "/tmp", StorageKey: "b.jpg"},
	}
	require.NoError(t, images.CreateBatch(staged))

	found, err := images.FindByID(staged[0].ID)
	require.NoError(t, err)
	assert.Nil(t, found.DiaryID)

	diary := &model.Diary{ID: uuid.NewString(), MemberID: 1, Date: "20240101", Content: "x"}
	require.NoError(t, testDB.Transaction(func(tx *gorm.DB) error {
		if err := diaries.WithTx(tx).Create(diary); err != nil {
			return err
		}
		linked, err := images.WithTx(tx).LinkToDiary([]string{staged[0].ID, staged[1].ID}, diary.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(2), linked)
		return nil
	}))

	all, err := images.FindByIDs([]string{staged[0].ID, staged[1].ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, img := range all {
		require.NotNil(t, img.DiaryID)
		assert.Equal(t, diary.ID, *img.DiaryID)
	}

	// already linked rows are left alone
	linked, err := images.LinkToDiary([]string{staged[0].ID}, "other")
	require.NoError(t, err)
	assert.Zero(t, linked)
}
