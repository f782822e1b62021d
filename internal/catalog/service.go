package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var requiredFields = []string{"id", "name", "price", "weight"}

var errMissingFields = validationf("Missing required fields. Must contain: ['%s']", strings.Join(requiredFields, "', '"))

// Service implements the item operations on top of a Store. Each call
// re-reads the store. Mutations hold the write lock for the whole
// load-modify-save cycle so concurrent requests cannot lose updates.
type Service struct {
	store Store
	log   *zap.Logger

	mu      sync.RWMutex
	metrics *serviceMetrics
}

type serviceMetrics struct {
	items     prometheus.Gauge
	mutations *prometheus.CounterVec
}

// NewService registers catalog metrics on reg when reg is not nil.
func NewService(store Store, log *zap.Logger, reg prometheus.Registerer) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{store: store, log: log}

	if reg != nil {
		s.metrics = &serviceMetrics{
			items: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "catalog_items",
				Help: "Items in the catalog as of the last load",
			}),
			mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "catalog_mutations_total",
				Help: "Successful catalog mutations",
			}, []string{"op"}),
		}
		reg.MustRegister(s.metrics.items, s.metrics.mutations)
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := s.load(ctx)
	if err != nil {
		return Item{}, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return Item{}, ErrNotFound
	}
	return items[i], nil
}

// Create validates a JSON object carrying id, name, price and weight and
// appends it to the catalog.
func (s *Service) Create(ctx context.Context, body []byte) (Item, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return Item{}, err
	}
	for _, f := range requiredFields {
		raw, ok := fields[f]
		if !ok {
			return Item{}, errMissingFields
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return Item{}, validationf("Field '%s' has an invalid value", f)
		}
	}

	var it Item
	if err := decodeField(fields, "id", &it.ID); err != nil {
		return Item{}, err
	}
	if err := applyFields(&it, fields); err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return Item{}, err
	}
	if indexOf(items, it.ID) >= 0 {
		return Item{}, validationf("Item with id %d already exists", it.ID)
	}

	items = append(items, it)
	if err := s.save(ctx, "create", items); err != nil {
		return Item{}, err
	}
	return it, nil
}

// Update overwrites name, price and weight when present in body. The id
// is never changed.
func (s *Service) Update(ctx context.Context, id int64, body []byte) (Item, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return Item{}, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return Item{}, ErrNotFound
	}

	updated := items[i]
	if err := applyFields(&updated, fields); err != nil {
		return Item{}, err
	}
	items[i] = updated

	if err := s.save(ctx, "update", items); err != nil {
		return Item{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return DeleteResult{}, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return DeleteResult{}, ErrNotFound
	}

	items = append(items[:i], items[i+1:]...)
	if err := s.save(ctx, "delete", items); err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{Result: true, Message: fmt.Sprintf("Item %d deleted", id)}, nil
}

func (s *Service) load(ctx context.Context) ([]Item, error) {
	items, err := s.store.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}
	if s.metrics != nil {
		s.metrics.items.Set(float64(len(items)))
	}
	return items, nil
}

func (s *Service) save(ctx context.Context, op string, items []Item) error {
	if err := s.store.Save(ctx, items); err != nil {
		return errors.Wrap(err, "save catalog")
	}
	if s.metrics != nil {
		s.metrics.items.Set(float64(len(items)))
		s.metrics.mutations.WithLabelValues(op).Inc()
	}
	s.log.Debug("catalog saved", zap.String("op", op), zap.Int("items", len(items)))
	return nil
}

// decodeObject accepts only a non-empty JSON object.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return nil, ErrNotJSON
	}
	return fields, nil
}

// applyFields copies the optional name, price and weight fields onto it.
// A JSON null leaves the current value in place.
func applyFields(it *Item, fields map[string]json.RawMessage) error {
	if err := decodeField(fields, "name", &it.Name); err != nil {
		return err
	}
	if err := decodeField(fields, "price", &it.Price); err != nil {
		return err
	}
	return decodeField(fields, "weight", &it.Weight)
}

func decodeField(fields map[string]json.RawMessage, name string, dst any) error {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return validationf("Field '%s' has an invalid value", name)
	}
	return nil
}
