package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"tour_scraper/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valF64(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Migrate creates the sink tables when missing.
func (r *Repo) Migrate(ctx context.Context) error {
	for _, stmt := range createTableSQL {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceDataset swaps the stored dataset for the given one in a single
// transaction. Readers never see a half-replaced state.
func (r *Repo) ReplaceDataset(ctx context.Context, ds *domain.Dataset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"tour_options", "room_types", "transports", "hotels", "destinations"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	if err := insertDestinations(ctx, tx, ds.Destinations); err != nil {
		return err
	}
	if err := insertHotels(ctx, tx, ds.Hotels); err != nil {
		return err
	}
	if err := insertRoomTypes(ctx, tx, ds.RoomTypes); err != nil {
		return err
	}
	if err := insertTransports(ctx, tx, ds.Transports); err != nil {
		return err
	}
	if err := insertTourOptions(ctx, tx, ds.TourOptions); err != nil {
		return err
	}

	manifest, _ := json.Marshal(ds.Manifest)
	if _, err := tx.ExecContext(ctx, insertRunSQL, ds.Manifest.GeneratedAt, string(manifest)); err != nil {
		return err
	}
	return tx.Commit()
}

func insertDestinations(ctx context.Context, tx *sql.Tx, ds []domain.Destination) error {
	if len(ds) == 0 {
		return nil
	}
	values := make([]string, 0, len(ds))
	args := make([]any, 0, len(ds)*6)
	for _, d := range ds {
		values = append(values, "(?,?,?,?,?,?)")
		args = append(args, d.ID, d.Name, valStr(d.Country), valStr(d.Region), d.Arrival, d.Departure)
	}
	_, err := tx.ExecContext(ctx, insertDestinationsPrefix+strings.Join(values, ","), args...)
	return err
}

func insertHotels(ctx context.Context, tx *sql.Tx, hs []domain.Hotel) error {
	if len(hs) == 0 {
		return nil
	}
	values := make([]string, 0, len(hs))
	args := make([]any, 0, len(hs)*8)
	for _, h := range hs {
		roomIDs, _ := json.Marshal(h.RoomTypeIDs)
		values = append(values, "(?,?,?,?,?,?,?,?)")
		args = append(args, h.ID, h.Name, h.DestinationID, h.Rating,
			valF64(h.Lat), valF64(h.Lng), string(roomIDs), valJSON(h.Raw))
	}
	_, err := tx.ExecContext(ctx, insertHotelsPrefix+strings.Join(values, ","), args...)
	return err
}

func insertRoomTypes(ctx context.Context, tx *sql.Tx, rs []domain.RoomType) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*6)
	for _, rt := range rs {
		values = append(values, "(?,?,?,?,?,?)")
		args = append(args, rt.ID, rt.HotelID, rt.Name, rt.Capacity, rt.ExtraBeds, valStr(rt.Board))
	}
	_, err := tx.ExecContext(ctx, insertRoomTypesPrefix+strings.Join(values, ","), args...)
	return err
}

func insertTransports(ctx context.Context, tx *sql.Tx, ts []domain.TransportMethod) error {
	if len(ts) == 0 {
		return nil
	}
	values := make([]string, 0, len(ts))
	args := make([]any, 0, len(ts)*6)
	for _, t := range ts {
		via, _ := json.Marshal(t.Via)
		values = append(values, "(?,?,?,?,?,?)")
		args = append(args, t.ID, t.Mode, t.OriginID, t.TargetID, valStr(t.Carrier), string(via))
	}
	_, err := tx.ExecContext(ctx, insertTransportsPrefix+strings.Join(values, ","), args...)
	return err
}

func insertTourOptions(ctx context.Context, tx *sql.Tx, ts []domain.TourOption) error {
	if len(ts) == 0 {
		return nil
	}
	values := make([]string, 0, len(ts))
	args := make([]any, 0, len(ts)*10)
	for _, t := range ts {
		values = append(values, "(?,?,?,?,?,?,?,?,?,?)")
		args = append(args, t.ID, t.DestinationID, t.HotelID, t.RoomTypeID, t.TransportID,
			t.StartDate, t.EndDate, t.Price, valStr(t.Currency), valJSON(t.Raw))
	}
	_, err := tx.ExecContext(ctx, insertTourOptionsPrefix+strings.Join(values, ","), args...)
	return err
}
