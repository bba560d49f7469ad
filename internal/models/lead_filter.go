package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"leadcrm/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// sortColumns maps accepted sortBy keys to lead columns.
var sortColumns = map[string]string{
	"createdAt":        "created_at",
	"created_at":       "created_at",
	"updatedAt":        "updated_at",
	"updated_at":       "updated_at",
	"first_name":       "first_name",
	"firstName":        "first_name",
	"last_name":        "last_name",
	"lastName":         "last_name",
	"email":            "email",
	"company":          "company",
	"city":             "city",
	"state":            "state",
	"source":           "source",
	"status":           "status",
	"score":            "score",
	"lead_value":       "lead_value",
	"leadValue":        "lead_value",
	"last_activity_at": "last_activity_at",
	"lastActivityAt":   "last_activity_at",
}

// NumberRange is an inclusive range; a nil bound is open.
type NumberRange struct {
	Min *float64
	Max *float64
}

// DateRange is inclusive on both ends and already expanded to whole days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// LeadListQuery is a validated listing request. SortColumn is a lead column name.
type LeadListQuery struct {
	Page           int
	Limit          int
	SortColumn     string
	Desc           bool
	Status         *LeadStatus
	Source         *LeadSource
	IsQualified    *bool
	Score          *NumberRange
	LeadValue      *NumberRange
	CreatedAt      *DateRange
	LastActivityAt *DateRange
	Search         string
}

func (q LeadListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

func DefaultLeadListQuery() LeadListQuery {
	return LeadListQuery{Page: DefaultPage, Limit: DefaultLimit, SortColumn: "created_at", Desc: true}
}

// flexNumber accepts a JSON number or a numeric string; null and "" mean unset.
type flexNumber struct {
	set bool
	v   float64
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%q is not a number", s)
		}
		n.set, n.v = true, v
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.set, n.v = true, v
	return nil
}

func (n flexNumber) ptr() *float64 {
	if !n.set {
		return nil
	}
	v := n.v
	return &v
}

type rangeParams struct {
	Min flexNumber `json:"min"`
	Max flexNumber `json:"max"`
}

type dateRangeParams struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type leadListParams struct {
	Page           flexNumber       `json:"page"`
	Limit          flexNumber       `json:"limit"`
	SortBy         string           `json:"sortBy"`
	Order          string           `json:"order"`
	Status         string           `json:"status"`
	Source         string           `json:"source"`
	IsQualified    json.RawMessage  `json:"is_qualified"`
	Score          *rangeParams     `json:"score"`
	LeadValue      *rangeParams     `json:"lead_value"`
	CreatedAt      *dateRangeParams `json:"created_at"`
	LastActivityAt *dateRangeParams `json:"last_activity_at"`
	Search         string           `json:"search"`
}

// ParseLeadListQuery decodes the JSON object carried in the `data` query
// parameter. An empty string yields the defaults; unknown keys are rejected.
func ParseLeadListQuery(raw string) (LeadListQuery, error) {
	q := DefaultLeadListQuery()
	if strings.TrimSpace(raw) == "" {
		return q, nil
	}

	var p leadListParams
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return q, apperr.Wrap(apperr.KindValidation, "Invalid query data.", err)
	}

	if p.Page.set {
		page, ok := wholeNumber(p.Page.v)
		if !ok || page < 1 {
			return q, apperr.Validation("page must be a positive integer.")
		}
		q.Page = page
	}
	if p.Limit.set {
		limit, ok := wholeNumber(p.Limit.v)
		if !ok || limit < 1 || limit > MaxLimit {
			return q, apperr.Validation(fmt.Sprintf("limit must be an integer between 1 and %d.", MaxLimit))
		}
		q.Limit = limit
	}

	if p.SortBy != "" {
		col, ok := sortColumns[p.SortBy]
		if !ok {
			return q, apperr.Validation("Invalid sortBy value.")
		}
		q.SortColumn = col
	}
	q.Desc = p.Order != "asc"

	if p.Status != "" {
		st := LeadStatus(p.Status)
		if !st.Valid() {
			return q, apperr.Validation("Invalid status value.")
		}
		q.Status = &st
	}
	if p.Source != "" {
		src := LeadSource(p.Source)
		if !src.Valid() {
			return q, apperr.Validation("Invalid source value.")
		}
		q.Source = &src
	}

	q.IsQualified = parseTriState(p.IsQualified)

	if p.Score != nil {
		q.Score = p.Score.toRange()
	}
	if p.LeadValue != nil {
		q.LeadValue = p.LeadValue.toRange()
	}

	var err error
	if q.CreatedAt, err = p.CreatedAt.toDays("created_at"); err != nil {
		return q, err
	}
	if q.LastActivityAt, err = p.LastActivityAt.toDays("last_activity_at"); err != nil {
		return q, err
	}

	q.Search = p.Search
	return q, nil
}

// parseTriState sets the filter only for true/false given as a JSON bool or
// as the strings "true"/"false". Any other value leaves it unset.
func parseTriState(raw json.RawMessage) *bool {
	if len(raw) == 0 {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "true":
			v := true
			return &v
		case "false":
			v := false
			return &v
		}
	}
	return nil
}

func (r *rangeParams) toRange() *NumberRange {
	if !r.Min.set && !r.Max.set {
		return nil
	}
	return &NumberRange{Min: r.Min.ptr(), Max: r.Max.ptr()}
}

// toDays applies only when both ends are present.
func (r *dateRangeParams) toDays(field string) (*DateRange, error) {
	if r == nil || r.StartDate == "" || r.EndDate == "" {
		return nil, nil
	}
	start, err := parseDay(r.StartDate)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("Invalid %s.startDate.", field))
	}
	end, err := parseDay(r.EndDate)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("Invalid %s.endDate.", field))
	}
	return &DateRange{
		Start: start,
		End:   time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC),
	}, nil
}

// parseDay returns 00:00:00.000 UTC of the calendar day in s.
func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func wholeNumber(v float64) (int, bool) {
	if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(v), true
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
