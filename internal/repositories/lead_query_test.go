package repositories

import (
	"strings"
	"testing"
	"time"

	"leadcrm/internal/models"
)

const owner = "65a1b2c3d4e5f60718293a4b"

func TestLeadWhereOwnerOnly(t *testing.T) {
	where, args := leadWhere(owner, models.DefaultLeadListQuery())
	if where != "user_id = ?" {
		t.Errorf("where = %q", where)
	}
	if len(args) != 1 || args[0] != owner {
		t.Errorf("args = %v", args)
	}
}

func TestLeadWhereAllFilters(t *testing.T) {
	status := models.StatusQualified
	source := models.SourceReferral
	qualified := false
	lo, hi := 10.0, 90.0
	minValue := 1000.0
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 999_000_000, time.UTC)

	q := models.DefaultLeadListQuery()
	q.Status = &status
	q.Source = &source
	q.IsQualified = &qualified
	q.Score = &models.NumberRange{Min: &lo, Max: &hi}
	q.LeadValue = &models.NumberRange{Min: &minValue}
	q.CreatedAt = &models.DateRange{Start: start, End: end}
	q.LastActivityAt = &models.DateRange{Start: start, End: end}
	q.Search = "acme"

	where, args := leadWhere(owner, q)

	want := "user_id = ? AND status = ? AND source = ? AND is_qualified = ?" +
		" AND score >= ? AND score <= ? AND lead_value >= ?" +
		" AND created_at >= ? AND created_at <= ?" +
		" AND last_activity_at >= ? AND last_activity_at <= ?" +
		" AND (first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?" +
		" OR company ILIKE ? OR city ILIKE ? OR state ILIKE ?)"
	if where != want {
		t.Fatalf("where =\n%s\nwant\n%s", where, want)
	}

	if got := strings.Count(where, "?"); got != len(args) {
		t.Fatalf("%d placeholders, %d args", got, len(args))
	}
	if args[1] != "qualified" || args[2] != "referral" || args[3] != false {
		t.Errorf("enum/bool args = %v", args[1:4])
	}
	if args[4] != 10.0 || args[5] != 90.0 || args[6] != 1000.0 {
		t.Errorf("range args = %v", args[4:7])
	}
	if args[7] != start || args[8] != end {
		t.Errorf("date args = %v %v", args[7], args[8])
	}
	for _, a := range args[11:] {
		if a != "%acme%" {
			t.Errorf("search arg = %v", a)
		}
	}
}

func TestLeadWhereSearchIsLiteral(t *testing.T) {
	q := models.DefaultLeadListQuery()
	q.Search = `50%_off\`
	_, args := leadWhere(owner, q)
	if got := args[1]; got != `%50\%\_off\\%` {
		t.Errorf("pattern = %v", got)
	}
}

func TestLeadListSQL(t *testing.T) {
	q := models.DefaultLeadListQuery()
	q.Page = 3
	q.Limit = 20
	q.SortColumn = "score"
	q.Desc = false

	pageSQL, pageArgs, countSQL, countArgs := leadListSQL(owner, q)

	if !strings.HasSuffix(pageSQL, "FROM leads WHERE user_id = ? ORDER BY score ASC, id ASC LIMIT ? OFFSET ?") {
		t.Errorf("page sql = %s", pageSQL)
	}
	if len(pageArgs) != 3 || pageArgs[1] != 20 || pageArgs[2] != 40 {
		t.Errorf("page args = %v", pageArgs)
	}
	if countSQL != "SELECT COUNT(*) FROM leads WHERE user_id = ?" {
		t.Errorf("count sql = %s", countSQL)
	}
	if len(countArgs) != 1 {
		t.Errorf("count args must not include the page window: %v", countArgs)
	}
}

func TestLeadListSQLRejectsUnknownSortColumn(t *testing.T) {
	q := models.DefaultLeadListQuery()
	q.SortColumn = "password_hash; DROP TABLE leads"
	pageSQL, _, _, _ := leadListSQL(owner, q)
	if !strings.Contains(pageSQL, "ORDER BY created_at DESC, id DESC") {
		t.Errorf("page sql = %s", pageSQL)
	}
}

func TestLeadUpdateSQL(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first := "  Ada "
	phone := "   "
	status := models.StatusWon
	score := 140

	query, args := leadUpdateSQL(owner, "65a1b2c3d4e5f60718293a4c", models.LeadPatch{
		FirstName: &first,
		Phone:     &phone,
		Status:    &status,
		Score:     &score,
	}, now)

	if !strings.HasPrefix(query, "UPDATE leads SET first_name = ?, phone = ?, status = ?, score = ?, updated_at = ? WHERE id = ? AND user_id = ? RETURNING") {
		t.Fatalf("query = %s", query)
	}
	if args[0] != "Ada" {
		t.Errorf("first_name = %v", args[0])
	}
	if p, ok := args[1].(*string); !ok || p != nil {
		t.Errorf("blank phone should become NULL, got %#v", args[1])
	}
	if args[2] != "won" || args[3] != 100 || args[4] != now {
		t.Errorf("args = %v", args)
	}
	if args[5] != "65a1b2c3d4e5f60718293a4c" || args[6] != owner {
		t.Errorf("scope args = %v", args[5:])
	}
}

func TestLeadUpdateSQLEmptyPatchTouchesTimestamp(t *testing.T) {
	query, args := leadUpdateSQL(owner, "x", models.LeadPatch{}, time.Now())
	if !strings.HasPrefix(query, "UPDATE leads SET updated_at = ? WHERE") {
		t.Errorf("query = %s", query)
	}
	if len(args) != 3 {
		t.Errorf("args = %v", args)
	}
}
