package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"leadcrm/internal/models"
)

// LeadRepository persists leads. Every method is scoped to the owning user.
type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, ownerID, id string) (*models.Lead, error)
	ExistsByEmail(ctx context.Context, ownerID, email string) (bool, error)
	Update(ctx context.Context, ownerID, id string, patch models.LeadPatch) (*models.Lead, error)
	Delete(ctx context.Context, ownerID, id string) (*models.Lead, error)
	List(ctx context.Context, ownerID string, q models.LeadListQuery) ([]models.Lead, int, error)
}

type leadRepository struct {
	db *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) LeadRepository {
	if db == nil {
		log.Fatal("received nil database connection")
	}
	return &leadRepository{db: db}
}

func (r *leadRepository) Create(ctx context.Context, lead *models.Lead) error {
	lead.Score = models.ClampScore(lead.Score)
	const query = `
		INSERT INTO leads (
			id, user_id, first_name, last_name, email, phone, company, city, state,
			source, status, score, lead_value, last_activity_at, is_qualified, created_at, updated_at
		)
		VALUES (
			:id, :user_id, :first_name, :last_name, :email, :phone, :company, :city, :state,
			:source, :status, :score, :lead_value, :last_activity_at, :is_qualified, :created_at, :updated_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, lead)
	return translate(err)
}

func (r *leadRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Lead, error) {
	query := r.db.Rebind(`SELECT ` + leadColumns + ` FROM leads WHERE id = ? AND user_id = ?`)
	var lead models.Lead
	if err := r.db.GetContext(ctx, &lead, query, id, ownerID); err != nil {
		return nil, translate(err)
	}
	return &lead, nil
}

func (r *leadRepository) ExistsByEmail(ctx context.Context, ownerID, email string) (bool, error) {
	query := r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM leads WHERE user_id = ? AND email = ?)`)
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, ownerID, email); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *leadRepository) Update(ctx context.Context, ownerID, id string, patch models.LeadPatch) (*models.Lead, error) {
	query, args := leadUpdateSQL(ownerID, id, patch, time.Now().UTC())
	var lead models.Lead
	if err := r.db.GetContext(ctx, &lead, r.db.Rebind(query), args...); err != nil {
		return nil, translate(err)
	}
	return &lead, nil
}

func (r *leadRepository) Delete(ctx context.Context, ownerID, id string) (*models.Lead, error) {
	query := r.db.Rebind(`DELETE FROM leads WHERE id = ? AND user_id = ? RETURNING ` + leadColumns)
	var lead models.Lead
	if err := r.db.GetContext(ctx, &lead, query, id, ownerID); err != nil {
		return nil, translate(err)
	}
	return &lead, nil
}

// List returns one page of leads and the size of the whole filtered set.
// The two queries run concurrently on the shared pool.
func (r *leadRepository) List(ctx context.Context, ownerID string, q models.LeadListQuery) ([]models.Lead, int, error) {
	pageSQL, pageArgs, countSQL, countArgs := leadListSQL(ownerID, q)

	leads := make([]models.Lead, 0, q.Limit)
	var total int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.db.SelectContext(gctx, &leads, r.db.Rebind(pageSQL), pageArgs...); err != nil {
			return fmt.Errorf("select leads: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := r.db.GetContext(gctx, &total, r.db.Rebind(countSQL), countArgs...); err != nil {
			return fmt.Errorf("count leads: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}
