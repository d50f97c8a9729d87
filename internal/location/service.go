// Package location keeps the directory of divisions and their branches.
package location

import (
	"context"
	"errors"
	"strings"

	"github.com/Kyz7/hub/internal/apperror"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/workflow"
	"gorm.io/gorm"
)

type DivisionInput struct {
	TitleEN string               `json:"title_en"`
	TitleUK string               `json:"title_uk"`
	Status  models.DisplayStatus `json:"status"`
}

type BranchInput struct {
	TitleEN  string               `json:"title_en"`
	TitleUK  string               `json:"title_uk"`
	Address  string               `json:"address"`
	Postcode string               `json:"postcode"`
	Status   models.DisplayStatus `json:"status"`
	Persons  []PersonInput        `json:"persons"`
	Phones   []string             `json:"phones"`
	Emails   []string             `json:"emails"`
}

type PersonInput struct {
	Name     string `json:"name"`
	Position string `json:"position"`
}

type Service struct {
	db   *gorm.DB
	gate workflow.Gate
}

func NewService(db *gorm.DB, gate workflow.Gate) *Service {
	return &Service{db: db, gate: gate}
}

func (s *Service) authorize(principal *models.User) error {
	if principal == nil || !s.gate.HasCapability(principal, models.CapManageLocations) {
		return apperror.Forbidden(models.CapManageLocations)
	}
	return nil
}

func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(resource)
	}
	return err
}

// Directory lists divisions with their branches. With onlyDisplayed, hidden
// divisions and branches are left out.
func (s *Service) Directory(ctx context.Context, onlyDisplayed bool) ([]models.Division, error) {
	db := s.db.WithContext(ctx)
	branches := func(tx *gorm.DB) *gorm.DB {
		if onlyDisplayed {
			tx = tx.Where("status = ?", models.StatusDisplay)
		}
		return tx.Order("title_uk, id")
	}

	q := db.
		Preload("Branches", branches).
		Preload("Branches.Persons").
		Preload("Branches.Phones").
		Preload("Branches.Emails").
		Order("title_uk, id")
	if onlyDisplayed {
		q = q.Where("status = ?", models.StatusDisplay)
	}

	var divisions []models.Division
	err := q.Find(&divisions).Error
	return divisions, err
}

func (in DivisionInput) validate() error {
	details := map[string]string{}
	if strings.TrimSpace(in.TitleEN) == "" && strings.TrimSpace(in.TitleUK) == "" {
		details["title"] = "a title in at least one language is required"
	}
	if in.Status != "" && !validStatus(in.Status) {
		details["status"] = "status must be hide or display"
	}
	if len(details) > 0 {
		return apperror.Validation("Invalid division", details)
	}
	return nil
}

func (s *Service) CreateDivision(ctx context.Context, principal *models.User, in DivisionInput) (*models.Division, error) {
	if err := s.authorize(principal); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	division := &models.Division{
		TitleEN: strings.TrimSpace(in.TitleEN),
		TitleUK: strings.TrimSpace(in.TitleUK),
		Status:  statusOrHide(in.Status),
	}
	if err := s.db.WithContext(ctx).Create(division).Error; err != nil {
		return nil, err
	}
	return division, nil
}

func (s *Service) UpdateDivision(ctx context.Context, principal *models.User, id uint, in DivisionInput) (*models.Division, error) {
	if err := s.authorize(principal); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var division models.Division
	if err := db.First(&division, id).Error; err != nil {
		return nil, notFound(err, "Division")
	}
	division.TitleEN = strings.TrimSpace(in.TitleEN)
	division.TitleUK = strings.TrimSpace(in.TitleUK)
	division.Status = statusOrHide(in.Status)
	if err := db.Omit("Branches").Save(&division).Error; err != nil {
		return nil, err
	}
	return &division, nil
}

func (s *Service) DeleteDivision(ctx context.Context, principal *models.User, id uint) error {
	if err := s.authorize(principal); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var division models.Division
		if err := tx.First(&division, id).Error; err != nil {
			return notFound(err, "Division")
		}

		var branchIDs []uint
		if err := tx.Model(&models.Branch{}).Where("division_id = ?", id).Pluck("id", &branchIDs).Error; err != nil {
			return err
		}
		if err := deleteBranchChildren(tx, branchIDs); err != nil {
			return err
		}
		if len(branchIDs) > 0 {
			if err := tx.Delete(&models.Branch{}, branchIDs).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&division).Error
	})
}

// build validates in and returns the branch with its child rows.
func (in BranchInput) build() (models.Branch, error) {
	details := map[string]string{}
	branch := models.Branch{
		TitleEN:  strings.TrimSpace(in.TitleEN),
		TitleUK:  strings.TrimSpace(in.TitleUK),
		Address:  strings.TrimSpace(in.Address),
		Postcode: strings.TrimSpace(in.Postcode),
		Status:   statusOrHide(in.Status),
	}

	if branch.TitleEN == "" && branch.TitleUK == "" {
		details["title"] = "a title in at least one language is required"
	}
	if branch.Postcode != "" && !ValidPostcode(branch.Postcode) {
		details["postcode"] = "postcode must be five digits"
	}
	if in.Status != "" && !validStatus(in.Status) {
		details["status"] = "status must be hide or display"
	}
	for _, raw := range in.Phones {
		phone, ok := NormalizePhone(raw)
		if !ok {
			details["phones"] = "phone numbers must be Ukrainian, e.g. +380671234567"
			continue
		}
		branch.Phones = append(branch.Phones, models.Phone{Number: phone})
	}
	for _, raw := range in.Emails {
		email := strings.TrimSpace(raw)
		if !validEmail(email) {
			details["emails"] = "invalid email address " + raw
			continue
		}
		branch.Emails = append(branch.Emails, models.Email{Address: email})
	}
	for _, p := range in.Persons {
		if strings.TrimSpace(p.Name) == "" {
			details["persons"] = "every person needs a name"
			continue
		}
		branch.Persons = append(branch.Persons, models.Person{
			Name:     strings.TrimSpace(p.Name),
			Position: strings.TrimSpace(p.Position),
		})
	}

	if len(details) > 0 {
		return models.Branch{}, apperror.Validation("Invalid branch", details)
	}
	return branch, nil
}

func (s *Service) CreateBranch(ctx context.Context, principal *models.User, divisionID uint, in BranchInput) (*models.Branch, error) {
	if err := s.authorize(principal); err != nil {
		return nil, err
	}
	branch, err := in.build()
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var division models.Division
	if err := db.First(&division, divisionID).Error; err != nil {
		return nil, notFound(err, "Division")
	}

	branch.DivisionID = division.ID
	if err := db.Create(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

// UpdateBranch replaces the branch fields and its persons, phones and emails.
func (s *Service) UpdateBranch(ctx context.Context, principal *models.User, id uint, in BranchInput) (*models.Branch, error) {
	if err := s.authorize(principal); err != nil {
		return nil, err
	}
	next, err := in.build()
	if err != nil {
		return nil, err
	}

	var branch models.Branch
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&branch, id).Error; err != nil {
			return notFound(err, "Branch")
		}
		if err := deleteBranchChildren(tx, []uint{branch.ID}); err != nil {
			return err
		}

		next.ID = branch.ID
		next.DivisionID = branch.DivisionID
		next.CreatedAt = branch.CreatedAt
		if err := tx.Omit("Persons", "Phones", "Emails").Save(&next).Error; err != nil {
			return err
		}
		for i := range next.Persons {
			next.Persons[i].BranchID = branch.ID
		}
		for i := range next.Phones {
			next.Phones[i].BranchID = branch.ID
		}
		for i := range next.Emails {
			next.Emails[i].BranchID = branch.ID
		}
		if len(next.Persons) > 0 {
			if err := tx.Create(&next.Persons).Error; err != nil {
				return err
			}
		}
		if len(next.Phones) > 0 {
			if err := tx.Create(&next.Phones).Error; err != nil {
				return err
			}
		}
		if len(next.Emails) > 0 {
			if err := tx.Create(&next.Emails).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *Service) DeleteBranch(ctx context.Context, principal *models.User, id uint) error {
	if err := s.authorize(principal); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var branch models.Branch
		if err := tx.First(&branch, id).Error; err != nil {
			return notFound(err, "Branch")
		}
		if err := deleteBranchChildren(tx, []uint{branch.ID}); err != nil {
			return err
		}
		return tx.Delete(&branch).Error
	})
}

func deleteBranchChildren(tx *gorm.DB, branchIDs []uint) error {
	if len(branchIDs) == 0 {
		return nil
	}
	for _, model := range []interface{}{&models.Person{}, &models.Phone{}, &models.Email{}} {
		if err := tx.Where("branch_id IN ?", branchIDs).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func statusOrHide(s models.DisplayStatus) models.DisplayStatus {
	if s == "" {
		return models.StatusHide
	}
	return s
}
