package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/piwi3910/matcalc/internal/model"
)

const orderKeyPrefix = "order:"

// ErrOrderExists is returned by Append when a record with the same ID is
// already stored. History is append-only.
var ErrOrderExists = errors.New("order already exists")

// OrderHistory stores calculation snapshots in a KVStore.
type OrderHistory struct {
	store KVStore
}

// NewOrderHistory returns a history backed by store.
func NewOrderHistory(store KVStore) *OrderHistory {
	return &OrderHistory{store: store}
}

// Store returns the underlying backend.
func (h *OrderHistory) Store() KVStore { return h.store }

func orderKey(id string) string { return orderKeyPrefix + id }

// Append saves rec. A missing ID or timestamp is filled in; an existing
// record is never overwritten.
func (h *OrderHistory) Append(ctx context.Context, rec model.OrderRecord) (model.OrderRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	_, err := h.store.Get(ctx, orderKey(rec.ID))
	switch {
	case err == nil:
		return model.OrderRecord{}, fmt.Errorf("%w: %s", ErrOrderExists, rec.ID)
	case !errors.Is(err, ErrNotFound):
		return model.OrderRecord{}, fmt.Errorf("failed to check order %s: %w", rec.ID, err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return model.OrderRecord{}, fmt.Errorf("failed to marshal order: %w", err)
	}
	if err := h.store.Set(ctx, orderKey(rec.ID), data); err != nil {
		return model.OrderRecord{}, fmt.Errorf("failed to save order %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Get returns the record with the given ID, or ErrNotFound.
func (h *OrderHistory) Get(ctx context.Context, id string) (model.OrderRecord, error) {
	data, err := h.store.Get(ctx, orderKey(id))
	if err != nil {
		return model.OrderRecord{}, err
	}
	var rec model.OrderRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.OrderRecord{}, fmt.Errorf("failed to parse order %s: %w", id, err)
	}
	return rec, nil
}

// List returns every record, newest first.
func (h *OrderHistory) List(ctx context.Context) ([]model.OrderRecord, error) {
	entries, err := h.store.List(ctx, orderKeyPrefix)
	if err != nil {
		return nil, err
	}
	records := make([]model.OrderRecord, 0, len(entries))
	for _, e := range entries {
		var rec model.OrderRecord
		if err := json.Unmarshal(e.Value, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", e.Key, err)
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].ID < records[j].ID
		}
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

// Delete removes one record.
func (h *OrderHistory) Delete(ctx context.Context, id string) error {
	return h.store.Delete(ctx, orderKey(id))
}

// Clear removes every record and returns how many were deleted.
func (h *OrderHistory) Clear(ctx context.Context) (int, error) {
	entries, err := h.store.List(ctx, orderKeyPrefix)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if err := h.store.Delete(ctx, e.Key); err != nil && !errors.Is(err, ErrNotFound) {
			return n, err
		}
		n++
	}
	return n, nil
}

// ExportJSON writes the full history, newest first, as an indented JSON array.
func (h *OrderHistory) ExportJSON(ctx context.Context, w io.Writer) error {
	records, err := h.List(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
