package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"campuslink_echo/internal/models"
)

// SwapNotifier delivers swap lifecycle notifications. Delivery is
// fire-and-forget from the service's point of view: failures are logged and
// never roll back the data change that triggered them.
type SwapNotifier interface {
	MatchFound(recipient, counterpart models.SwapProfile) error
	Unmatched(recipient models.SwapProfile) error
	ProfileRemoved(recipient models.SwapProfile) error
}

// SwapService pairs mutually interested swap profiles and keeps the
// symmetric link between them intact.
type SwapService struct {
	db       *gorm.DB
	notifier SwapNotifier
}

func NewSwapService(db *gorm.DB, notifier SwapNotifier) *SwapService {
	return &SwapService{db: db, notifier: notifier}
}

// CreateProfileInput carries the fields a user registers with.
type CreateProfileInput struct {
	UserID         uint   `json:"user_id"`
	Name           string `json:"name"`
	Branch         string `json:"branch"`
	Semester       int    `json:"semester"`
	Contact        string `json:"contact"`
	AllotedSection int    `json:"alloted_section"`
	LookingFor     []int  `json:"looking_for"`
}

// CreateProfile registers a swap profile. One profile per user; a second
// registration is a conflict. Section numbers are accepted as-is, no
// compatibility check happens at creation time.
func (s *SwapService) CreateProfile(in CreateProfileInput) (*models.SwapProfile, error) {
	if in.UserID == 0 || in.Branch == "" || in.Semester == 0 {
		return nil, fmt.Errorf("userId, branch and semester are required: %w", ErrBadRequest)
	}

	var user models.User
	if err := s.db.First(&user, in.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %d: %w", in.UserID, ErrNotFound)
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.SwapProfile{}).Where("user_id = ?", in.UserID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("swap profile already exists for user %d: %w", in.UserID, ErrConflict)
	}

	name := in.Name
	if name == "" {
		name = user.Name
	}

	profile := models.SwapProfile{
		UserID:         in.UserID,
		Name:           name,
		Branch:         in.Branch,
		Semester:       in.Semester,
		Contact:        in.Contact,
		AllotedSection: in.AllotedSection,
		LookingFor:     in.LookingFor,
		EditsRemaining: models.DefaultSwapEdits,
	}
	if err := s.db.Create(&profile).Error; err != nil {
		return nil, err
	}

	return &profile, nil
}

// AcceptSwap links two unmatched profiles. Both RemoteIDs are written in a
// single transaction so a concurrent reader never observes a half-made
// match. Each party is notified afterwards; notification failures do not
// undo the match.
func (s *SwapService) AcceptSwap(currentUserID, remoteUserID uint) (*models.SwapProfile, *models.SwapProfile, error) {
	current, err := s.profileByUser(currentUserID)
	if err != nil {
		return nil, nil, err
	}
	remote, err := s.profileByUser(remoteUserID)
	if err != nil {
		return nil, nil, err
	}

	if current.IsMatched() {
		return nil, nil, fmt.Errorf("user %d is already matched: %w", currentUserID, ErrConflict)
	}
	if remote.IsMatched() {
		return nil, nil, fmt.Errorf("user %d is no longer available: %w", remoteUserID, ErrConflict)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SwapProfile{}).Where("id = ?", current.ID).
			Update("remote_id", remote.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.SwapProfile{}).Where("id = ?", remote.ID).
			Update("remote_id", current.ID).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to link profiles: %w", err)
	}

	current.RemoteID = &remote.ID
	remote.RemoteID = &current.ID

	if s.notifier != nil {
		if err := s.notifier.MatchFound(*current, *remote); err != nil {
			log.Printf("swap: match notification for user %d failed: %v", current.UserID, err)
		}
		if err := s.notifier.MatchFound(*remote, *current); err != nil {
			log.Printf("swap: match notification for user %d failed: %v", remote.UserID, err)
		}
	}

	return current, remote, nil
}

// UpdateProfile overwrites the allotment and wish-list and burns one edit.
// The quota is checked before the write, so a rejected call does not
// decrement.
func (s *SwapService) UpdateProfile(userID uint, allotedSection int, lookingFor []int) (*models.SwapProfile, error) {
	profile, err := s.profileByUser(userID)
	if err != nil {
		return nil, err
	}

	if profile.EditsRemaining <= 0 {
		return nil, fmt.Errorf("edit quota exhausted for user %d: %w", userID, ErrRateLimited)
	}

	updates := map[string]interface{}{
		"alloted_section": allotedSection,
		"looking_for":     lookingFor,
		"edits_remaining": gorm.Expr("edits_remaining - 1"),
	}
	if err := s.db.Model(profile).Updates(updates).Error; err != nil {
		return nil, err
	}

	profile.AllotedSection = allotedSection
	profile.LookingFor = lookingFor
	profile.EditsRemaining--
	return profile, nil
}

// DeleteBySelf removes the caller's own profile. A matched profile cannot
// self-delete; an admin has to unmatch it first.
func (s *SwapService) DeleteBySelf(userID uint) error {
	profile, err := s.profileByUser(userID)
	if err != nil {
		return err
	}

	if profile.IsMatched() {
		return fmt.Errorf("profile is matched, ask an admin to unmatch first: %w", ErrBadRequest)
	}

	if err := s.db.Delete(profile).Error; err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.ProfileRemoved(*profile); err != nil {
			log.Printf("swap: removal notification for user %d failed: %v", userID, err)
		}
	}
	return nil
}

// DeleteByAdmin removes a profile regardless of match state. For a matched
// profile both sides are unlinked and deleted in one transaction so no
// dangling RemoteID survives, and each party gets its own notification.
func (s *SwapService) DeleteByAdmin(userID uint) error {
	profile, err := s.profileByUser(userID)
	if err != nil {
		return err
	}

	if !profile.IsMatched() {
		if err := s.db.Delete(profile).Error; err != nil {
			return err
		}
		if s.notifier != nil {
			if err := s.notifier.ProfileRemoved(*profile); err != nil {
				log.Printf("swap: removal notification for user %d failed: %v", userID, err)
			}
		}
		return nil
	}

	var counterpart models.SwapProfile
	if err := s.db.First(&counterpart, *profile.RemoteID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Broken pairing; delete the orphaned side anyway.
			log.Printf("swap: profile %d references missing counterpart %d", profile.ID, *profile.RemoteID)
			return s.db.Delete(profile).Error
		}
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SwapProfile{}).
			Where("id IN ?", []uint{profile.ID, counterpart.ID}).
			Update("remote_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.SwapProfile{}, profile.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.SwapProfile{}, counterpart.ID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to unlink and delete pair: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.Unmatched(*profile); err != nil {
			log.Printf("swap: unmatch notification for user %d failed: %v", profile.UserID, err)
		}
		if err := s.notifier.Unmatched(counterpart); err != nil {
			log.Printf("swap: unmatch notification for user %d failed: %v", counterpart.UserID, err)
		}
	}
	return nil
}

// SwapListing is one row of the browse view.
type SwapListing struct {
	models.SwapProfile
	Compatible bool `json:"compatible"`
}

// SwapData is the browse response: the caller's own profile, everyone else
// in the same branch+semester, and per-section counts.
type SwapData struct {
	GetMyInfo       *models.SwapProfile `json:"getMyInfo"`
	SwappingInfo    []SwapListing       `json:"swappingInfo"`
	SemesterDetails map[int]int         `json:"semesterDetails"`
}

// BrowseData lists swap candidates for a branch and semester. Compatibility
// is a hint for client-side filtering, never an enforced rule.
func (s *SwapService) BrowseData(branch string, semester int, userID uint) (*SwapData, error) {
	var profiles []models.SwapProfile
	if err := s.db.Where("branch = ? AND semester = ?", branch, semester).
		Order("created_at asc").Find(&profiles).Error; err != nil {
		return nil, err
	}

	data := &SwapData{SemesterDetails: make(map[int]int)}
	var mine *models.SwapProfile
	for i := range profiles {
		if profiles[i].UserID == userID {
			mine = &profiles[i]
			break
		}
	}
	data.GetMyInfo = mine

	for _, p := range profiles {
		data.SemesterDetails[p.AllotedSection]++
		if p.UserID == userID {
			continue
		}
		listing := SwapListing{SwapProfile: p}
		if mine != nil {
			listing.Compatible = models.MutuallyCompatible(*mine, p)
		}
		data.SwappingInfo = append(data.SwappingInfo, listing)
	}

	return data, nil
}

func (s *SwapService) profileByUser(userID uint) (*models.SwapProfile, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	var profile models.SwapProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("swap profile for user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}
