// Package catalog implements the administrator-side product intake:
// committing a collected draft to the product store and announcing it
// to the broadcast channel.
package catalog

import (
	"context"
	"fmt"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/storage"
	"log/slog"
)

// Announcer delivers a committed product to the broadcast channel.
type Announcer interface {
	Announce(ctx context.Context, p domain.Product) error
}

// Service commits intake drafts. Ordering is commit-then-announce: a
// delivery failure never orphans an uncommitted product, and a product
// whose creation was not confirmed by the store is never announced.
type Service struct {
	products storage.ProductStore
}

// New wires the catalog service.
func New(products storage.ProductStore) *Service {
	return &Service{products: products}
}

// Publish commits the draft and announces the created product. The
// returned product carries the store-assigned id. When the announcement
// fails after a successful commit, the product is returned alongside an
// error wrapping domain.ErrAnnounceFailed so the initiator can be told
// the product exists but was not posted.
func (s *Service) Publish(ctx context.Context, draft domain.IntakeDraft, announcer Announcer) (domain.Product, error) {
	if draft.Name == "" {
		return domain.Product{}, fmt.Errorf("publish: draft has no name")
	}

	created, err := s.products.Append(ctx, domain.Product{
		Name:        draft.Name,
		Description: draft.Description,
		ImageURL:    draft.ImageURL,
	})
	if err != nil {
		logger.Error(ctx, "service.catalog", "intake.commit.failed",
			slog.String("product_name", draft.Name),
			slog.String("err", err.Error()),
		)
		return domain.Product{}, err
	}

	logger.Info(ctx, "service.catalog", "intake.committed",
		slog.String("product_id", created.ID),
		slog.String("product_name", created.Name),
	)

	if announcer != nil {
		if err := announcer.Announce(ctx, created); err != nil {
			logger.Error(ctx, "service.catalog", "intake.announce.failed",
				slog.String("product_id", created.ID),
				slog.String("err", err.Error()),
			)
			return created, fmt.Errorf("%w: product %s: %v", domain.ErrAnnounceFailed, created.ID, err)
		}
	}
	return created, nil
}
