package inventory

import (
	"context"
	"strings"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the drug ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Find loads a drug by normalized name. Returns gorm.ErrRecordNotFound when absent.
func (r *Repository) Find(ctx context.Context, name string) (*models.Drug, error) {
	var drug models.Drug
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&drug).Error; err != nil {
		return nil, err
	}
	return &drug, nil
}

// FindMany loads the named drugs keyed by name.
func (r *Repository) FindMany(ctx context.Context, names []string) (map[string]models.Drug, error) {
	out := make(map[string]models.Drug, len(names))
	if len(names) == 0 {
		return out, nil
	}
	var drugs []models.Drug
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&drugs).Error; err != nil {
		return nil, err
	}
	for _, d := range drugs {
		out[d.Name] = d
	}
	return out, nil
}

// List returns every drug ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Drug, error) {
	var drugs []models.Drug
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&drugs).Error; err != nil {
		return nil, err
	}
	return drugs, nil
}

// Search matches term as a case-insensitive substring of name, category or description.
func (r *Repository) Search(ctx context.Context, term string) ([]models.Drug, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	var drugs []models.Drug
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(category) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'", pattern, pattern, pattern).
		Order("name ASC").
		Find(&drugs).Error
	if err != nil {
		return nil, err
	}
	return drugs, nil
}

// Upsert inserts the drug or replaces every attribute except its name.
func (r *Repository) Upsert(ctx context.Context, drug *models.Drug) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quantity", "price", "category", "description",
				"course_days", "dosage_frequency", "updated_at",
			}),
		}).
		Create(drug).Error
}

// Decrement subtracts qty only while enough stock remains. It reports false,
// leaving the row untouched, when the drug is missing or short.
func (r *Repository) Decrement(ctx context.Context, name string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Drug{}).
		Where("name = ? AND quantity >= ?", name, qty).
		UpdateColumns(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Count returns the number of drugs in the ledger.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Drug{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
