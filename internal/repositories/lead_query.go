package repositories

import (
	"fmt"
	"strings"
	"time"

	"leadcrm/internal/models"
)

const leadColumns = `id, user_id, first_name, last_name, email, phone, company, city, state,
	source, status, score, lead_value, last_activity_at, is_qualified, created_at, updated_at`

var allowedSortColumns = map[string]bool{
	"created_at": true, "updated_at": true, "first_name": true, "last_name": true,
	"email": true, "company": true, "city": true, "state": true, "source": true,
	"status": true, "score": true, "lead_value": true, "last_activity_at": true,
}

var searchColumns = []string{"first_name", "last_name", "email", "phone", "company", "city", "state"}

// leadWhere builds the predicate shared by the page and the count query.
// Placeholders are `?`; callers rebind for the driver.
func leadWhere(ownerID string, q models.LeadListQuery) (string, []interface{}) {
	conds := []string{"user_id = ?"}
	args := []interface{}{ownerID}

	if q.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*q.Status))
	}
	if q.Source != nil {
		conds = append(conds, "source = ?")
		args = append(args, string(*q.Source))
	}
	if q.IsQualified != nil {
		conds = append(conds, "is_qualified = ?")
		args = append(args, *q.IsQualified)
	}
	if r := q.Score; r != nil {
		if r.Min != nil {
			conds = append(conds, "score >= ?")
			args = append(args, *r.Min)
		}
		if r.Max != nil {
			conds = append(conds, "score <= ?")
			args = append(args, *r.Max)
		}
	}
	if r := q.LeadValue; r != nil {
		if r.Min != nil {
			conds = append(conds, "lead_value >= ?")
			args = append(args, *r.Min)
		}
		if r.Max != nil {
			conds = append(conds, "lead_value <= ?")
			args = append(args, *r.Max)
		}
	}
	if r := q.CreatedAt; r != nil {
		conds = append(conds, "created_at >= ?", "created_at <= ?")
		args = append(args, r.Start, r.End)
	}
	if r := q.LastActivityAt; r != nil {
		conds = append(conds, "last_activity_at >= ?", "last_activity_at <= ?")
		args = append(args, r.Start, r.End)
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		or := make([]string, len(searchColumns))
		for i, col := range searchColumns {
			or[i] = col + " ILIKE ?"
			args = append(args, pattern)
		}
		conds = append(conds, "("+strings.Join(or, " OR ")+")")
	}

	return strings.Join(conds, " AND "), args
}

// leadListSQL returns the page query and the count query for q.
func leadListSQL(ownerID string, q models.LeadListQuery) (pageSQL string, pageArgs []interface{}, countSQL string, countArgs []interface{}) {
	where, args := leadWhere(ownerID, q)

	col := q.SortColumn
	if !allowedSortColumns[col] {
		col = "created_at"
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}

	pageSQL = fmt.Sprintf("SELECT %s FROM leads WHERE %s ORDER BY %s %s, id %s LIMIT ? OFFSET ?",
		leadColumns, where, col, dir, dir)
	pageArgs = append(append([]interface{}{}, args...), q.Limit, q.Offset())

	countSQL = "SELECT COUNT(*) FROM leads WHERE " + where
	return pageSQL, pageArgs, countSQL, args
}

// leadUpdateSQL builds an UPDATE for the fields present in p. updated_at is always set.
func leadUpdateSQL(ownerID, id string, p models.LeadPatch, now time.Time) (string, []interface{}) {
	var sets []string
	var args []interface{}
	set := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.FirstName != nil {
		set("first_name", strings.TrimSpace(*p.FirstName))
	}
	if p.LastName != nil {
		set("last_name", strings.TrimSpace(*p.LastName))
	}
	if p.Phone != nil {
		set("phone", models.TrimOptional(p.Phone))
	}
	if p.Company != nil {
		set("company", models.TrimOptional(p.Company))
	}
	if p.City != nil {
		set("city", models.TrimOptional(p.City))
	}
	if p.State != nil {
		set("state", models.TrimOptional(p.State))
	}
	if p.Source != nil {
		set("source", string(*p.Source))
	}
	if p.Status != nil {
		set("status", string(*p.Status))
	}
	if p.Score != nil {
		set("score", models.ClampScore(*p.Score))
	}
	if p.LeadValue != nil {
		set("lead_value", *p.LeadValue)
	}
	if p.LastActivityAt != nil {
		set("last_activity_at", p.LastActivityAt.UTC())
	}
	set("updated_at", now)

	args = append(args, id, ownerID)
	return fmt.Sprintf("UPDATE leads SET %s WHERE id = ? AND user_id = ? RETURNING %s",
		strings.Join(sets, ", "), leadColumns), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
