package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"citymove/internal/domain/entities"
	"citymove/internal/repository"
)

const vehicleColumns = `id, type, name, route, current_location, stands, price, duration, next_available, updated_at`

type VehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) List(ctx context.Context) ([]entities.Vehicle, error) {
	q := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY price ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	var out []entities.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*entities.Vehicle, error) {
	q := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrVehicleNotFound
	}
	return v, err
}

func (r *VehicleRepository) Upsert(ctx context.Context, v *entities.Vehicle) error {
	loc, stands, err := encodeVehicleJSON(v)
	if err != nil {
		return err
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = time.Now()
	}
	q := `
INSERT INTO vehicles (` + vehicleColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
  type = EXCLUDED.type,
  name = EXCLUDED.name,
  route = EXCLUDED.route,
  current_location = EXCLUDED.current_location,
  stands = EXCLUDED.stands,
  price = EXCLUDED.price,
  duration = EXCLUDED.duration,
  next_available = EXCLUDED.next_available,
  updated_at = EXCLUDED.updated_at`
	_, err = r.db.ExecContext(ctx, q,
		v.ID, string(v.Category), v.Name, v.Route, string(loc), string(stands),
		v.Price, v.Duration, v.NextAvailable, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert vehicle %s: %w", v.ID, err)
	}
	return nil
}

func (r *VehicleRepository) UpdateLocation(ctx context.Context, id string, loc entities.Location) (*entities.Vehicle, error) {
	b, err := json.Marshal(loc)
	if err != nil {
		return nil, err
	}
	q := `UPDATE vehicles SET current_location = $2, updated_at = now() WHERE id = $1 RETURNING ` + vehicleColumns
	v, err := scanVehicle(r.db.QueryRowContext(ctx, q, id, string(b)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrVehicleNotFound
	}
	return v, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*entities.Vehicle, error) {
	var (
		v        entities.Vehicle
		category string
		loc      []byte
		stands   []byte
	)
	err := row.Scan(&v.ID, &category, &v.Name, &v.Route, &loc, &stands,
		&v.Price, &v.Duration, &v.NextAvailable, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Category = entities.Category(category)
	if err := decodeVehicleJSON(&v, loc, stands); err != nil {
		return nil, fmt.Errorf("vehicle %s: %w", v.ID, err)
	}
	return &v, nil
}

func encodeVehicleJSON(v *entities.Vehicle) (loc, stands []byte, err error) {
	if loc, err = json.Marshal(v.Position); err != nil {
		return nil, nil, err
	}
	s := v.Stands
	if s == nil {
		s = []string{}
	}
	if stands, err = json.Marshal(s); err != nil {
		return nil, nil, err
	}
	return loc, stands, nil
}

func decodeVehicleJSON(v *entities.Vehicle, loc, stands []byte) error {
	if len(loc) > 0 {
		if err := json.Unmarshal(loc, &v.Position); err != nil {
			return fmt.Errorf("decode current_location: %w", err)
		}
	}
	if len(stands) > 0 {
		if err := json.Unmarshal(stands, &v.Stands); err != nil {
			return fmt.Errorf("decode stands: %w", err)
		}
	}
	return nil
}
