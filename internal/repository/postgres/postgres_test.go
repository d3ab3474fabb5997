package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citymove/internal/domain/entities"
)

func TestSchemaDeclaresChangeTrigger(t *testing.T) {
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS vehicles")
	assert.Contains(t, schema, "user_preferences")
	assert.Contains(t, schema, "pg_notify('"+ChangeChannel+"'")
}

func TestDecodeChange(t *testing.T) {
	payload := `{"id":"1","type":"bus","name":"Bus 201","route":"MG Road → Indiranagar",
		"current_location":{"lat":12.9716,"lng":77.5946},"stands":["MG Road","Indiranagar"],
		"price":25,"duration":"25 mins","next_available":"5 mins",
		"updated_at":"2024-05-01T10:00:00.123456+00:00"}`

	v, err := DecodeChange([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "1", v.ID)
	assert.Equal(t, entities.CategoryBus, v.Category)
	assert.Equal(t, 12.9716, v.Position.Latitude)
	assert.Equal(t, []string{"MG Road", "Indiranagar"}, v.Stands)
	assert.Equal(t, 25.0, v.Price)
	assert.Equal(t, 2024, v.UpdatedAt.Year())
}

func TestDecodeChange_Invalid(t *testing.T) {
	_, err := DecodeChange([]byte(`{"type":"bus"}`))
	assert.Error(t, err)

	_, err = DecodeChange([]byte(`not json`))
	assert.Error(t, err)
}

func TestVehicleJSONColumns(t *testing.T) {
	v := &entities.Vehicle{ID: "9", Position: entities.NewLocation(1.5, 2.5)}
	loc, stands, err := encodeVehicleJSON(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lat":1.5,"lng":2.5}`, string(loc))
	assert.Equal(t, `[]`, string(stands))

	var out entities.Vehicle
	require.NoError(t, decodeVehicleJSON(&out, loc, []byte(`["A","B"]`)))
	assert.Equal(t, v.Position, out.Position)
	assert.Equal(t, []string{"A", "B"}, out.Stands)

	assert.Error(t, decodeVehicleJSON(&out, []byte(`{`), nil))
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("want %d columns, got %d", len(dest), len(r.values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *[]byte:
			*p = []byte(r.values[i].(string))
		case *float64:
			*p = r.values[i].(float64)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return fmt.Errorf("unexpected dest %T", d)
		}
	}
	return nil
}

func TestScanVehicle(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	row := fakeRow{values: []any{
		"3", "shuttle", "Night Shuttle", "A → B", `{"lat":12.9,"lng":77.6}`, `["A","B"]`,
		18.0, "15 mins", "soon", at,
	}}

	v, err := scanVehicle(row)
	require.NoError(t, err)
	assert.Equal(t, entities.Category("shuttle"), v.Category)
	assert.False(t, v.Category.Known())
	assert.Equal(t, 12.9, v.Position.Latitude)
	assert.Equal(t, "soon", v.NextAvailable)
	assert.Equal(t, at, v.UpdatedAt)

	_, err = scanVehicle(fakeRow{err: errors.New("boom")})
	assert.EqualError(t, err, "boom")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("plain")))
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, strings.HasPrefix(vehicleColumns, "id, type"))
}
