package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codemint/internal/models"
)

var ErrCodeNotFound = errors.New("code not found")

// CodeRepository persists generated codes. Each kind writes to its own
// table through a static parameterized query; table names are never
// interpolated.
type CodeRepository struct {
	pool *pgxpool.Pool
}

func NewCodeRepository(pool *pgxpool.Pool) *CodeRepository {
	return &CodeRepository{pool: pool}
}

const (
	insertBarcodeQuery = `INSERT INTO barcodes (name, unique_id, image_path) VALUES ($1, $2, $3)`
	insertQRQuery      = `INSERT INTO qr_codes (name, unique_id, image_path) VALUES ($1, $2, $3)`

	// Both tables are probed; when the same unique_id somehow exists in
	// both, the barcode row wins so lookups stay deterministic.
	lookupQuery = `
		SELECT kind, name, unique_id, image_path FROM (
			SELECT 'barcode' AS kind, name, unique_id, image_path FROM barcodes WHERE unique_id = $1
			UNION ALL
			SELECT 'qrcode' AS kind, name, unique_id, image_path FROM qr_codes WHERE unique_id = $1
		) matches
		ORDER BY kind
		LIMIT 1
	`

	existsBarcodeQuery = `SELECT EXISTS (SELECT 1 FROM barcodes WHERE unique_id = $1)`
	existsQRQuery      = `SELECT EXISTS (SELECT 1 FROM qr_codes WHERE unique_id = $1)`

	listBarcodeQuery = `SELECT name, unique_id, image_path FROM barcodes ORDER BY unique_id DESC LIMIT $1 OFFSET $2`
	listQRQuery      = `SELECT name, unique_id, image_path FROM qr_codes ORDER BY unique_id DESC LIMIT $1 OFFSET $2`
)

func (r *CodeRepository) Insert(ctx context.Context, kind models.CodeKind, name, uniqueID, imagePath string) error {
	query, err := insertQueryFor(kind)
	if err != nil {
		return err
	}

	if _, err := r.pool.Exec(ctx, query, name, uniqueID, imagePath); err != nil {
		return fmt.Errorf("insert %s record: %w", kind, err)
	}
	return nil
}

func (r *CodeRepository) Lookup(ctx context.Context, uniqueID string) (models.CodeRecord, error) {
	row := r.pool.QueryRow(ctx, lookupQuery, uniqueID)

	var record models.CodeRecord
	if err := row.Scan(&record.Kind, &record.Name, &record.UniqueID, &record.ImagePath); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CodeRecord{}, ErrCodeNotFound
		}
		return models.CodeRecord{}, fmt.Errorf("lookup %s: %w", uniqueID, err)
	}
	return record, nil
}

func (r *CodeRepository) Exists(ctx context.Context, kind models.CodeKind, uniqueID string) (bool, error) {
	var query string
	switch kind {
	case models.CodeKindBarcode:
		query = existsBarcodeQuery
	case models.CodeKindQR:
		query = existsQRQuery
	default:
		return false, fmt.Errorf("unknown code kind %q", kind)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, query, uniqueID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", uniqueID, err)
	}
	return exists, nil
}

func (r *CodeRepository) List(ctx context.Context, kind models.CodeKind, limit, offset int) ([]models.CodeRecord, error) {
	var query string
	switch kind {
	case models.CodeKindBarcode:
		query = listBarcodeQuery
	case models.CodeKindQR:
		query = listQRQuery
	default:
		return nil, fmt.Errorf("unknown code kind %q", kind)
	}

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", kind, err)
	}
	defer rows.Close()

	var records []models.CodeRecord
	for rows.Next() {
		record := models.CodeRecord{Kind: kind}
		if err := rows.Scan(&record.Name, &record.UniqueID, &record.ImagePath); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func insertQueryFor(kind models.CodeKind) (string, error) {
	switch kind {
	case models.CodeKindBarcode:
		return insertBarcodeQuery, nil
	case models.CodeKindQR:
		return insertQRQuery, nil
	default:
		return "", fmt.Errorf("unknown code kind %q", kind)
	}
}
