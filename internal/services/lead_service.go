package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"leadcrm/internal/apperr"
	"leadcrm/internal/models"
	"leadcrm/internal/repositories"
	"leadcrm/internal/utils"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	errInvalidLeadID = apperr.Validation("Invalid Lead ID format")
	errLeadNotFound  = apperr.NotFound("Lead not found")
	errInvalidSource = apperr.Validation("Invalid source value.")
	errInvalidStatus = apperr.Validation("Invalid status value.")
)

type LeadService struct {
	Repo repositories.LeadRepository
}

func NewLeadService(leadRepo repositories.LeadRepository) *LeadService {
	return &LeadService{Repo: leadRepo}
}

func (s *LeadService) Create(ctx context.Context, ownerID string, req models.CreateLeadRequest) (*models.Lead, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if firstName == "" || lastName == "" || email == "" {
		return nil, apperr.Validation("First name, last name, and email are required.")
	}

	source := req.Source
	if source == "" {
		source = models.SourceOther
	}
	status := req.Status
	if status == "" {
		status = models.StatusNew
	}
	if !source.Valid() {
		return nil, errInvalidSource
	}
	if !status.Valid() {
		return nil, errInvalidStatus
	}
	if !emailPattern.MatchString(email) {
		return nil, apperr.Validation("Invalid email format.")
	}

	exists, err := s.Repo.ExistsByEmail(ctx, ownerID, email)
	if err != nil {
		return nil, fmt.Errorf("check duplicate lead: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("Lead with this email already exists.")
	}

	id, err := utils.NewObjectID()
	if err != nil {
		return nil, fmt.Errorf("generate lead id: %w", err)
	}
	now := time.Now().UTC()
	lead := &models.Lead{
		ID:             id,
		UserID:         ownerID,
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		Phone:          models.TrimOptional(req.Phone),
		Company:        models.TrimOptional(req.Company),
		City:           models.TrimOptional(req.City),
		State:          models.TrimOptional(req.State),
		Source:         source,
		Status:         status,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Score != nil {
		lead.Score = *req.Score
	}
	if req.LeadValue != nil {
		lead.LeadValue = *req.LeadValue
	}
	if req.LastActivityAt != nil && !req.LastActivityAt.IsZero() {
		lead.LastActivityAt = req.LastActivityAt.UTC()
	}
	if req.IsQualified != nil {
		lead.IsQualified = *req.IsQualified
	}

	if err := s.Repo.Create(ctx, lead); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("Lead with this email already exists.")
		}
		return nil, fmt.Errorf("create lead: %w", err)
	}
	log.WithFields(log.Fields{"user_id": ownerID, "lead_id": lead.ID}).Info("[lead][create] created")
	return lead, nil
}

func (s *LeadService) GetByID(ctx context.Context, ownerID, rawID string) (*models.Lead, error) {
	id, ok := utils.NormalizeObjectID(rawID)
	if !ok {
		return nil, errInvalidLeadID
	}
	lead, err := s.Repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, notFoundOr(err, "get lead")
	}
	return lead, nil
}

// Update applies the allow-listed fields in patch. Validation runs before the
// single UPDATE statement, so a bad payload is rejected even for a missing id.
func (s *LeadService) Update(ctx context.Context, ownerID, rawID string, patch models.LeadPatch) (*models.Lead, error) {
	id, ok := utils.NormalizeObjectID(rawID)
	if !ok {
		return nil, errInvalidLeadID
	}
	if patch.Source != nil && !patch.Source.Valid() {
		return nil, apperr.Validation("Invalid source. Allowed values: " + joinSources())
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperr.Validation("Invalid status. Allowed values: " + joinStatuses())
	}
	if patch.FirstName != nil && strings.TrimSpace(*patch.FirstName) == "" {
		return nil, apperr.Validation("First name cannot be empty.")
	}
	if patch.LastName != nil && strings.TrimSpace(*patch.LastName) == "" {
		return nil, apperr.Validation("Last name cannot be empty.")
	}

	lead, err := s.Repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, notFoundOr(err, "update lead")
	}
	log.WithFields(log.Fields{"user_id": ownerID, "lead_id": id}).Info("[lead][update] updated")
	return lead, nil
}

func (s *LeadService) Delete(ctx context.Context, ownerID, rawID string) (*models.Lead, error) {
	id, ok := utils.NormalizeObjectID(rawID)
	if !ok {
		return nil, errInvalidLeadID
	}
	lead, err := s.Repo.Delete(ctx, ownerID, id)
	if err != nil {
		return nil, notFoundOr(err, "delete lead")
	}
	log.WithFields(log.Fields{"user_id": ownerID, "lead_id": id}).Info("[lead][delete] deleted")
	return lead, nil
}

func (s *LeadService) List(ctx context.Context, ownerID string, q models.LeadListQuery) (*models.LeadPage, error) {
	leads, total, err := s.Repo.List(ctx, ownerID, q)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	if leads == nil {
		leads = []models.Lead{}
	}
	return &models.LeadPage{
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: models.TotalPages(total, q.Limit),
		Leads:      leads,
	}, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return errLeadNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func joinSources() string {
	parts := make([]string, len(models.LeadSources))
	for i, v := range models.LeadSources {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func joinStatuses() string {
	parts := make([]string, len(models.LeadStatuses))
	for i, v := range models.LeadStatuses {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
