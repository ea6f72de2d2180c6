package store

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

// NopStore is a no-op store used in dry-run mode. Nothing is persisted and
// the notification history is always empty, so every qualifying posting is
// treated as never-notified.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Save(postings []model.VerifiedPosting) error       { return nil }
func (s *NopStore) ListByScore() ([]model.VerifiedPosting, error)     { return nil, nil }
func (s *NopStore) All() (mapset.Set[string], error)                  { return mapset.NewSet[string](), nil }
func (s *NopStore) Append(urls []string) error                        { return nil }
func (s *NopStore) Close() error                                      { return nil }
