package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// updateTarget maps patch fields onto one table's columns.
type updateTarget struct {
	name       string
	table      string
	totalPrice string
}

var (
	bookingsTarget = updateTarget{name: "booking", table: "NF_bookings", totalPrice: "total_price"}
	quotesTarget   = updateTarget{name: "quote request", table: "NF_quotes", totalPrice: "value"}
)

// buildUpdate renders a sparse UPDATE for patch. Details are merged into the
// stored object rather than replacing it.
func buildUpdate(t updateTarget, id uuid.UUID, patch Patch) (string, []any, error) {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.StartAddress != nil {
		add("start_address", *patch.StartAddress)
	}
	if patch.EndAddress != nil {
		add("end_address", *patch.EndAddress)
	}
	if patch.MoveDate != nil {
		args = append(args, *patch.MoveDate)
		sets = append(sets, fmt.Sprintf("move_date = $%d::date", len(args)))
	}
	if patch.MoveTime != nil {
		add("move_time", *patch.MoveTime)
	}
	if patch.TotalPrice != nil {
		add(t.totalPrice, *patch.TotalPrice)
	}
	if patch.ServiceTypes != nil {
		add("service_types", patch.ServiceTypes)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if len(patch.Details) > 0 {
		encoded, err := json.Marshal(patch.Details)
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode booking details: %w", err)
		}
		args = append(args, string(encoded))
		sets = append(sets, fmt.Sprintf("details = COALESCE(details, '{}'::jsonb) || $%d::jsonb", len(args)))
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", t.table, strings.Join(sets, ", "), len(args))
	return query, args, nil
}
