package repositories

import (
	"context"
	"errors"
	"fmt"

	"estudio/internal/models"
	"estudio/internal/recategorization"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrClientNotFound = errors.New("client not found")

// ClientRepository reads a studio's clients and their movement sums inside
// the studio's schema.
type ClientRepository interface {
	// MetricsFor builds the engine input of the given clients for the
	// period's observation window with one aggregate query. Unknown IDs are
	// absent from the returned map. A nil ids slice means every client of the
	// studio.
	MetricsFor(ctx context.Context, schema string, ids []uint, period *models.Period) (map[uint]ClientMetrics, error)
}

// ClientMetrics pairs a client with its engine input.
type ClientMetrics struct {
	Client  models.Client
	Metrics recategorization.ClientMetrics
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

// movementSums selects the sales and purchases totals of a movement query.
// Its placeholders take movementKinds.
const movementSums = "COALESCE(SUM(CASE WHEN kind = ? THEN amount END), 0), " +
	"COALESCE(SUM(CASE WHEN kind = ? THEN amount END), 0)"

func movementKinds() []interface{} {
	return []interface{}{models.MovementSale, models.MovementPurchase}
}

func (r *clientRepository) MetricsFor(ctx context.Context, schema string, ids []uint, period *models.Period) (map[uint]ClientMetrics, error) {
	out := make(map[uint]ClientMetrics)
	if ids != nil && len(ids) == 0 {
		return out, nil
	}

	err := WithTenant(ctx, r.db, schema, func(tx *gorm.DB) error {
		var clients []models.Client
		q := tx.Model(&models.Client{})
		if ids != nil {
			q = q.Where("id IN ?", ids)
		}
		if err := q.Find(&clients).Error; err != nil {
			return fmt.Errorf("failed to load clients: %w", err)
		}
		if len(clients) == 0 {
			return nil
		}

		found := make([]uint, 0, len(clients))
		for _, c := range clients {
			found = append(found, c.ID)
		}

		rows, err := tx.Model(&models.Movement{}).
			Select("client_id, "+movementSums, movementKinds()...).
			Where("client_id IN ? AND date BETWEEN ? AND ?", found, period.SalesFrom, period.SalesTo).
			Group("client_id").
			Rows()
		if err != nil {
			return fmt.Errorf("failed to sum movements: %w", err)
		}
		defer rows.Close()

		type sums struct{ sales, purchases decimal.Decimal }
		totals := make(map[uint]sums, len(clients))
		for rows.Next() {
			var id uint
			var s sums
			if err := rows.Scan(&id, &s.sales, &s.purchases); err != nil {
				return fmt.Errorf("failed to scan movement sums: %w", err)
			}
			totals[id] = s
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to read movement sums: %w", err)
		}

		for _, c := range clients {
			s := totals[c.ID]
			out[c.ID] = ClientMetrics{Client: c, Metrics: c.Metrics(s.sales, s.purchases)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
