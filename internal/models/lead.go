package models

import (
	"strings"
	"time"
)

// LeadSource is where a lead came from.
type LeadSource string

const (
	SourceWebsite     LeadSource = "website"
	SourceFacebookAds LeadSource = "facebook_ads"
	SourceGoogleAds   LeadSource = "google_ads"
	SourceReferral    LeadSource = "referral"
	SourceEvents      LeadSource = "events"
	SourceOther       LeadSource = "other"
)

var LeadSources = []LeadSource{SourceWebsite, SourceFacebookAds, SourceGoogleAds, SourceReferral, SourceEvents, SourceOther}

func (s LeadSource) Valid() bool {
	for _, v := range LeadSources {
		if s == v {
			return true
		}
	}
	return false
}

// LeadStatus is the pipeline stage of a lead.
type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusQualified LeadStatus = "qualified"
	StatusLost      LeadStatus = "lost"
	StatusWon       LeadStatus = "won"
)

var LeadStatuses = []LeadStatus{StatusNew, StatusContacted, StatusQualified, StatusLost, StatusWon}

func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

const (
	MinScore = 0
	MaxScore = 100
)

// ClampScore forces a score into [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

type Lead struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Email          string     `db:"email" json:"email"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Company        *string    `db:"company" json:"company,omitempty"`
	City           *string    `db:"city" json:"city,omitempty"`
	State          *string    `db:"state" json:"state,omitempty"`
	Source         LeadSource `db:"source" json:"source"`
	Status         LeadStatus `db:"status" json:"status"`
	Score          int        `db:"score" json:"score"`
	LeadValue      float64    `db:"lead_value" json:"lead_value"`
	LastActivityAt time.Time  `db:"last_activity_at" json:"last_activity_at"`
	IsQualified    bool       `db:"is_qualified" json:"is_qualified"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// CreateLeadRequest is the POST /leads body.
type CreateLeadRequest struct {
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone"`
	Company        *string    `json:"company"`
	City           *string    `json:"city"`
	State          *string    `json:"state"`
	Source         LeadSource `json:"source"`
	Status         LeadStatus `json:"status"`
	Score          *int       `json:"score"`
	LeadValue      *float64   `json:"leadValue"`
	LastActivityAt *time.Time `json:"lastActivityAt"`
	IsQualified    *bool      `json:"isQualified"`
}

// LeadPatch holds the fields PUT /leads/:id may change. Keys outside this
// set (id, user_id, email, is_qualified, timestamps) are ignored on decode.
type LeadPatch struct {
	FirstName      *string     `json:"first_name"`
	LastName       *string     `json:"last_name"`
	Phone          *string     `json:"phone"`
	Company        *string     `json:"company"`
	City           *string     `json:"city"`
	State          *string     `json:"state"`
	Source         *LeadSource `json:"source"`
	Status         *LeadStatus `json:"status"`
	Score          *int        `json:"score"`
	LeadValue      *float64    `json:"lead_value"`
	LastActivityAt *time.Time  `json:"last_activity_at"`
}

// TrimOptional trims s and maps nil or blank to nil.
func TrimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// LeadPage is one window of a filtered lead listing.
type LeadPage struct {
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
	Leads      []Lead `json:"-"`
}
