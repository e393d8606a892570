package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"campuslink_echo/internal/models"
)

func createSwapProfile(t *testing.T, db *gorm.DB, email string, section int, wants []int) (models.User, *models.SwapProfile) {
	t.Helper()

	user := createTestUser(t, db, email)
	profile, err := NewSwapService(db, nil).CreateProfile(CreateProfileInput{
		UserID:         user.ID,
		Branch:         "CSE",
		Semester:       4,
		Contact:        email,
		AllotedSection: section,
		LookingFor:     wants,
	})
	if err != nil {
		t.Fatalf("failed to create profile for %s: %v", email, err)
	}
	return user, profile
}

func TestCreateProfileDuplicateConflict(t *testing.T) {
	db := newTestDB(t)
	user, _ := createSwapProfile(t, db, "asha@example.com", 1, []int{2})

	_, err := NewSwapService(db, nil).CreateProfile(CreateProfileInput{
		UserID: user.ID, Branch: "CSE", Semester: 4, AllotedSection: 3,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("second registration error = %v; want ErrConflict", err)
	}

	var count int64
	if err := db.Model(&models.SwapProfile{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count profiles: %v", err)
	}
	if count != 1 {
		t.Errorf("profiles for user = %d; want 1", count)
	}
}

func TestAcceptSwapLinksBothSides(t *testing.T) {
	db := newTestDB(t)
	userA, profA := createSwapProfile(t, db, "asha@example.com", 12, []int{5})
	userB, profB := createSwapProfile(t, db, "ravi@example.com", 5, []int{12})

	_, _, err := NewSwapService(db, nil).AcceptSwap(userA.ID, userB.ID)
	if err != nil {
		t.Fatalf("AcceptSwap returned error: %v", err)
	}

	var a, b models.SwapProfile
	if err := db.First(&a, profA.ID).Error; err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}
	if err := db.First(&b, profB.ID).Error; err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}

	// The link must be symmetric.
	if a.RemoteID == nil || *a.RemoteID != b.ID {
		t.Errorf("profile A remote = %v; want %d", a.RemoteID, b.ID)
	}
	if b.RemoteID == nil || *b.RemoteID != a.ID {
		t.Errorf("profile B remote = %v; want %d", b.RemoteID, a.ID)
	}
}

func TestAcceptSwapAlreadyMatchedConflict(t *testing.T) {
	db := newTestDB(t)
	userA, _ := createSwapProfile(t, db, "asha@example.com", 12, []int{5})
	userB, _ := createSwapProfile(t, db, "ravi@example.com", 5, []int{12})
	userC, profC := createSwapProfile(t, db, "meera@example.com", 7, []int{5})

	svc := NewSwapService(db, nil)
	if _, _, err := svc.AcceptSwap(userA.ID, userB.ID); err != nil {
		t.Fatalf("initial AcceptSwap returned error: %v", err)
	}

	_, _, err := svc.AcceptSwap(userC.ID, userB.ID)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("accepting a matched profile = %v; want ErrConflict", err)
	}

	var c models.SwapProfile
	if err := db.First(&c, profC.ID).Error; err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}
	if c.RemoteID != nil {
		t.Errorf("rejected caller got linked to %d", *c.RemoteID)
	}
}

func TestUpdateProfileBurnsExactlyOneEdit(t *testing.T) {
	db := newTestDB(t)
	user, prof := createSwapProfile(t, db, "asha@example.com", 1, []int{2})

	updated, err := NewSwapService(db, nil).UpdateProfile(user.ID, 9, []int{3, 4})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.EditsRemaining != models.DefaultSwapEdits-1 {
		t.Errorf("edits remaining = %d; want %d", updated.EditsRemaining, models.DefaultSwapEdits-1)
	}

	var reloaded models.SwapProfile
	if err := db.First(&reloaded, prof.ID).Error; err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}
	if reloaded.EditsRemaining != models.DefaultSwapEdits-1 {
		t.Errorf("stored edits remaining = %d; want %d", reloaded.EditsRemaining, models.DefaultSwapEdits-1)
	}
	if reloaded.AllotedSection != 9 {
		t.Errorf("alloted section = %d; want 9", reloaded.AllotedSection)
	}
}

func TestUpdateProfileExhaustedQuota(t *testing.T) {
	db := newTestDB(t)
	user, prof := createSwapProfile(t, db, "asha@example.com", 1, []int{2})

	if err := db.Model(&models.SwapProfile{}).Where("id = ?", prof.ID).
		Update("edits_remaining", 0).Error; err != nil {
		t.Fatalf("failed to drain quota: %v", err)
	}

	_, err := NewSwapService(db, nil).UpdateProfile(user.ID, 9, []int{3})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("exhausted quota error = %v; want ErrRateLimited", err)
	}

	var reloaded models.SwapProfile
	if err := db.First(&reloaded, prof.ID).Error; err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}
	// A rejected edit neither decrements nor writes.
	if reloaded.EditsRemaining != 0 {
		t.Errorf("edits remaining = %d; want 0", reloaded.EditsRemaining)
	}
	if reloaded.AllotedSection != 1 {
		t.Errorf("alloted section = %d; want unchanged 1", reloaded.AllotedSection)
	}
}

func TestDeleteBySelfRejectedWhileMatched(t *testing.T) {
	db := newTestDB(t)
	userA, _ := createSwapProfile(t, db, "asha@example.com", 12, []int{5})
	userB, _ := createSwapProfile(t, db, "ravi@example.com", 5, []int{12})

	svc := NewSwapService(db, nil)
	if _, _, err := svc.AcceptSwap(userA.ID, userB.ID); err != nil {
		t.Fatalf("AcceptSwap returned error: %v", err)
	}

	if err := svc.DeleteBySelf(userA.ID); !errors.Is(err, ErrBadRequest) {
		t.Errorf("self-delete while matched = %v; want ErrBadRequest", err)
	}
}

func TestDeleteByAdminRemovesBothSidesOfMatch(t *testing.T) {
	db := newTestDB(t)
	userA, _ := createSwapProfile(t, db, "asha@example.com", 12, []int{5})
	userB, _ := createSwapProfile(t, db, "ravi@example.com", 5, []int{12})

	svc := NewSwapService(db, nil)
	if _, _, err := svc.AcceptSwap(userA.ID, userB.ID); err != nil {
		t.Fatalf("AcceptSwap returned error: %v", err)
	}

	if err := svc.DeleteByAdmin(userA.ID); err != nil {
		t.Fatalf("DeleteByAdmin returned error: %v", err)
	}

	var count int64
	if err := db.Model(&models.SwapProfile{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count profiles: %v", err)
	}
	if count != 0 {
		t.Errorf("profiles left = %d; want 0", count)
	}

	if err := db.Model(&models.SwapProfile{}).Where("remote_id IS NOT NULL").Count(&count).Error; err != nil {
		t.Fatalf("failed to count linked profiles: %v", err)
	}
	if count != 0 {
		t.Errorf("dangling remote links = %d; want 0", count)
	}
}
