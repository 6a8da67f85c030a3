package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"booking_portal_backend/internal/bookings/domain"
	"booking_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingNotFoundMsg = "booking not found"

// Repository provides database operations for bookings and accepted quote requests.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new bookings repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Compile-time check that Repository implements BookingStore.
var _ BookingStore = (*Repository)(nil)

// Confirmed bookings are returned as their row plus the customer's contact
// fields; requests are returned in the camelCase shape the request form stored.
const confirmedSelect = `
	SELECT to_jsonb(b) || jsonb_build_object(
		'customer_name', c.name,
		'email', c.email,
		'phone', c.phone)
	FROM NF_bookings b
	LEFT JOIN NF_customers c ON c.id = b.customer_id`

const requestSelect = `
	SELECT jsonb_build_object(
		'id', q.id,
		'status', q.status,
		'serviceTypes', to_jsonb(q.service_types),
		'value', q.value,
		'services', q.services,
		'start_address', q.start_address,
		'end_address', q.end_address,
		'move_date', q.move_date,
		'move_time', q.move_time,
		'orderNumber', q.order_number,
		'details', q.details,
		'customers', CASE WHEN c.id IS NULL THEN NULL
			ELSE jsonb_build_object('name', c.name, 'email', c.email, 'phone', c.phone) END)
	FROM NF_quotes q
	LEFT JOIN NF_customers c ON c.id = q.customer_id`

// GetBooking returns the stored record for key. A key that is an id is
// matched against bookings, then quote requests. When neither matches, the
// record carrying the id's derived reference is returned as a fallback.
// Any other key is treated as a booking reference or order number.
func (r *Repository) GetBooking(ctx context.Context, key string) (domain.RawRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.RawRecord{}, apperr.NotFound(bookingNotFoundMsg)
	}

	id, err := uuid.Parse(key)
	if err != nil {
		return r.getByReference(ctx, key, false)
	}

	data, err := r.queryRecord(ctx, confirmedSelect+` WHERE b.id = $1`, id)
	if err == nil {
		return domain.RawRecord{Data: data}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.RawRecord{}, classify("get booking", err)
	}

	data, err = r.queryRecord(ctx, requestSelect+` WHERE q.id = $1`, id)
	if err == nil {
		return domain.RawRecord{Data: data}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.RawRecord{}, classify("get quote request", err)
	}

	return r.getByReference(ctx, domain.DerivedReference(id.String()), true)
}

func (r *Repository) getByReference(ctx context.Context, reference string, fallback bool) (domain.RawRecord, error) {
	data, err := r.queryRecord(ctx, confirmedSelect+` WHERE upper(b.booking_reference) = upper($1) LIMIT 1`, reference)
	if err == nil {
		return domain.RawRecord{Data: data, IsFallback: fallback}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.RawRecord{}, classify("get booking by reference", err)
	}

	data, err = r.queryRecord(ctx, requestSelect+` WHERE upper(q.order_number) = upper($1) LIMIT 1`, reference)
	if err == nil {
		return domain.RawRecord{Data: data, IsFallback: fallback}, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.RawRecord{}, apperr.NotFound(bookingNotFoundMsg)
	}
	return domain.RawRecord{}, classify("get quote request by reference", err)
}

func (r *Repository) queryRecord(ctx context.Context, query string, arg any) (json.RawMessage, error) {
	var data []byte
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&data); err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// UpdateBooking applies patch to the booking with id, or to the quote
// request with that id when no booking row exists.
func (r *Repository) UpdateBooking(ctx context.Context, id string, patch Patch) error {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return apperr.NotFound(bookingNotFoundMsg)
	}
	if patch.Empty() {
		return nil
	}

	for _, table := range []updateTarget{bookingsTarget, quotesTarget} {
		query, args, err := buildUpdate(table, bookingID, patch)
		if err != nil {
			return err
		}
		result, err := r.pool.Exec(ctx, query, args...)
		if err != nil {
			return classify("update "+table.name, err)
		}
		if result.RowsAffected() > 0 {
			return nil
		}
	}
	return apperr.NotFound(bookingNotFoundMsg)
}

// ListAdditionalServices returns the services staff added to a booking, oldest first.
func (r *Repository) ListAdditionalServices(ctx context.Context, bookingID string) ([]AdditionalService, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return []AdditionalService{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, booking_id, name, price, quantity, unit, added_by, created_at
		FROM NF_booking_additional_services
		WHERE booking_id = $1
		ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, classify("list additional services", err)
	}
	defer rows.Close()

	items := make([]AdditionalService, 0)
	for rows.Next() {
		var (
			item      AdditionalService
			itemID    uuid.UUID
			bookingFK uuid.UUID
		)
		if err := rows.Scan(&itemID, &bookingFK, &item.Name, &item.Price, &item.Quantity,
			&item.Unit, &item.AddedBy, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan additional service: %w", err)
		}
		item.ID = itemID.String()
		item.BookingID = bookingFK.String()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list additional services", err)
	}
	return items, nil
}

// classify maps connectivity failures to apperr.Unavailable so callers can
// tell the customer to retry; everything else stays an internal error.
func classify(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) ||
		pgconn.SafeToRetry(err) || errors.As(err, &netErr) {
		return apperr.Unavailable("booking store unreachable", fmt.Errorf("failed to %s: %w", op, err))
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
