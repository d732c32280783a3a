package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/internx/internx/internal/domain"
)

// InternshipRepo is the listing catalog.
type InternshipRepo struct{ Pool PgxPool }

// NewInternshipRepo constructs an InternshipRepo with the given pool.
func NewInternshipRepo(p PgxPool) *InternshipRepo { return &InternshipRepo{Pool: p} }

const internshipColumns = `id::text, title, company, location, sector, skills_required, link, applicants_count, posted_date`

// Create inserts a listing, filling id and posted date when absent.
func (r *InternshipRepo) Create(ctx domain.Context, in domain.Internship) (domain.Internship, error) {
	ctx, span := startSpan(ctx, "repo.internships", "internships.Create", "INSERT", "internships")
	defer span.End()
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.PostedDate.IsZero() {
		in.PostedDate = time.Now().UTC()
	}
	out, err := scanInternship(r.Pool.QueryRow(ctx,
		`INSERT INTO internships (id, title, company, location, sector, skills_required, link, applicants_count, posted_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING `+internshipColumns,
		in.ID, in.Title, in.Company, in.Location, in.Sector, nonNil(in.SkillsRequired), in.Link, in.ApplicantsCount, in.PostedDate.UTC()))
	if err != nil {
		return domain.Internship{}, classify("internship.create", err)
	}
	return out, nil
}

// List returns one page of listings, newest first.
func (r *InternshipRepo) List(ctx domain.Context, limit, offset int) ([]domain.Internship, error) {
	ctx, span := startSpan(ctx, "repo.internships", "internships.List", "SELECT", "internships")
	defer span.End()
	rows, err := r.Pool.Query(ctx,
		`SELECT `+internshipColumns+` FROM internships ORDER BY posted_date DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, classify("internship.list", err)
	}
	return collectInternships("internship.list", rows)
}

// ListAll returns the whole catalog for scoring.
func (r *InternshipRepo) ListAll(ctx domain.Context) ([]domain.Internship, error) {
	ctx, span := startSpan(ctx, "repo.internships", "internships.ListAll", "SELECT", "internships")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT `+internshipColumns+` FROM internships ORDER BY id`)
	if err != nil {
		return nil, classify("internship.list_all", err)
	}
	return collectInternships("internship.list_all", rows)
}

func collectInternships(op string, rows pgx.Rows) ([]domain.Internship, error) {
	defer rows.Close()
	out := []domain.Internship{}
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

func scanInternship(row scanner) (domain.Internship, error) {
	var in domain.Internship
	if err := row.Scan(&in.ID, &in.Title, &in.Company, &in.Location, &in.Sector, &in.SkillsRequired, &in.Link, &in.ApplicantsCount, &in.PostedDate); err != nil {
		return domain.Internship{}, err
	}
	in.SkillsRequired = nonNil(in.SkillsRequired)
	return in, nil
}
