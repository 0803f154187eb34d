package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/vipani/app/models"
	"github.com/shashiranjanraj/vipani/app/repositories"
	"github.com/shashiranjanraj/vipani/pkg/cache"
	"github.com/shashiranjanraj/vipani/pkg/logger"
	"github.com/shashiranjanraj/vipani/pkg/metrics"
)

const (
	productCacheTTL  = 5 * time.Minute
	listCacheTTL     = 30 * time.Second
	listCacheKey     = "products:all"
	productKeyPrefix = "product:"
)

// ProductService coordinates every product mutation across the primary
// store, the search index and the event bus.
//
// The consistency protocol is fixed: validation and blob writes happen
// first, then the primary-store write (the only step that can fail the
// request once reached), then index sync, then publish to the product
// topic, then to the notification topic. After the durable write commits,
// nothing rolls it back: index and publish failures are logged, counted
// and swallowed, and the index is reconciled out-of-band.
type ProductService struct {
	products   ProductStore
	categories CategoryResolver
	blobs      BlobStore
	search     SearchIndexer
	events     EventPublisher
	cache      *cache.Cache
}

// NewProductService wires the orchestrator. blobs may be nil when no blob
// backend is configured; uploads then fail with ErrBlobStoreNotReady.
// cache may be nil to disable read caching.
func NewProductService(
	products ProductStore,
	categories CategoryResolver,
	blobs BlobStore,
	search SearchIndexer,
	events EventPublisher,
	c *cache.Cache,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		blobs:      blobs,
		search:     search,
		events:     events,
		cache:      c,
	}
}

// Create validates the category, stores uploaded images, persists the
// product with the acting user as its seller and fans the snapshot out.
func (s *ProductService) Create(ctx context.Context, in ProductInput, actorID string) (models.ProductView, error) {
	categoryName, err := s.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return models.ProductView{}, err
	}

	categoryID, err := primitive.ObjectIDFromHex(in.CategoryID)
	if err != nil {
		return models.ProductView{}, ErrCategoryNotFound
	}

	p := models.Product{
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  categoryID,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Seller: models.Seller{
			ID:         actorID,
			ProfileURL: in.ProfileURL,
		},
	}

	// An external URL wins over an uploaded file; at most one of
	// Image/ImageID ends up set.
	switch {
	case in.ImageURL != "":
		p.Image = in.ImageURL
	case in.Image != nil:
		ref, err := s.storeBlob(ctx, in.Image)
		if err != nil {
			return models.ProductView{}, err
		}
		p.ImageID = ref
	}

	if in.ProfileImage != nil {
		ref, err := s.storeBlob(ctx, in.ProfileImage)
		if err != nil {
			return models.ProductView{}, err
		}
		p.Seller.ProfileImageID = ref
	}

	// The authoritative write. Everything after it is best-effort.
	if err := s.products.Insert(ctx, &p); err != nil {
		return models.ProductView{}, fmt.Errorf("create product: %w", err)
	}

	view := p.View(categoryName)
	s.syncIndex(ctx, view)
	s.publish(ctx, models.EventProductCreated, view)
	s.invalidate(ctx, p.ID.Hex())

	return view, nil
}

// Read fetches a single product with its category name resolved.
func (s *ProductService) Read(ctx context.Context, id string) (models.ProductView, error) {
	var cached models.ProductView
	if s.cache.Get(ctx, productKeyPrefix+id, &cached) {
		return cached, nil
	}

	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.ProductView{}, ErrProductNotFound
	}
	if err != nil {
		return models.ProductView{}, fmt.Errorf("read product: %w", err)
	}

	view := p.View(s.categoryNameOf(ctx, p))

	_ = s.cache.Set(ctx, productKeyPrefix+id, view, productCacheTTL)
	return view, nil
}

// List returns all products with category names resolved. The result is a
// finite materialized slice, not a stream.
func (s *ProductService) List(ctx context.Context) ([]models.ProductView, error) {
	var cached []models.ProductView
	if s.cache.Get(ctx, listCacheKey, &cached) {
		return cached, nil
	}

	all, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	names := map[string]string{} // category id → name, memoized per request
	views := make([]models.ProductView, 0, len(all))
	for _, p := range all {
		key := p.CategoryID.Hex()
		name, ok := names[key]
		if !ok {
			name = s.categoryNameOf(ctx, p)
			names[key] = name
		}
		views = append(views, p.View(name))
	}

	_ = s.cache.Set(ctx, listCacheKey, views, listCacheTTL)
	return views, nil
}

// Update applies a partial mutation to a product owned by actorID.
//
// Scalar fields follow the falsy-skip rule (see ProductInput). The category
// is re-resolved only when it actually changes. Image fields replace
// unconditionally; switching from an uploaded blob to a URL strands the old
// blob, which is counted and logged for out-of-band cleanup rather than
// deleted here.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput, actorID string) (models.ProductView, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.ProductView{}, ErrProductNotFound
	}
	if err != nil {
		return models.ProductView{}, fmt.Errorf("update product: %w", err)
	}

	if p.Seller.ID != actorID {
		return models.ProductView{}, ErrNotOwner
	}

	categoryName := ""
	if in.CategoryID != "" && in.CategoryID != p.CategoryID.Hex() {
		categoryName, err = s.resolveCategory(ctx, in.CategoryID)
		if err != nil {
			return models.ProductView{}, err
		}
		newID, err := primitive.ObjectIDFromHex(in.CategoryID)
		if err != nil {
			return models.ProductView{}, ErrCategoryNotFound
		}
		p.CategoryID = newID
	} else {
		categoryName = s.categoryNameOf(ctx, p)
	}

	if in.Title != "" {
		p.Title = in.Title
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.Price != 0 {
		p.Price = in.Price
	}
	if in.Quantity != 0 {
		p.Quantity = in.Quantity
	}
	if in.ProfileURL != "" {
		p.Seller.ProfileURL = in.ProfileURL
	}

	switch {
	case in.ImageURL != "":
		if p.ImageID != "" {
			s.orphanBlob(ctx, p.ImageID)
		}
		p.Image = in.ImageURL
		p.ImageID = ""
	case in.Image != nil:
		ref, err := s.storeBlob(ctx, in.Image)
		if err != nil {
			return models.ProductView{}, err
		}
		if p.ImageID != "" {
			s.orphanBlob(ctx, p.ImageID)
		}
		p.ImageID = ref
		p.Image = ""
	}

	if in.ProfileImage != nil {
		ref, err := s.storeBlob(ctx, in.ProfileImage)
		if err != nil {
			return models.ProductView{}, err
		}
		if p.Seller.ProfileImageID != "" {
			s.orphanBlob(ctx, p.Seller.ProfileImageID)
		}
		p.Seller.ProfileImageID = ref
	}

	if err := s.products.Replace(ctx, &p); err != nil {
		return models.ProductView{}, fmt.Errorf("update product: %w", err)
	}

	view := p.View(categoryName)
	s.syncIndex(ctx, view)
	s.publish(ctx, models.EventProductUpdated, view)
	s.invalidate(ctx, id)

	return view, nil
}

// Delete removes a product owned by actorID, its blobs, and its search
// document, then publishes the pre-deletion snapshot.
//
// Blob deletions are attempted independently before the record goes away; a
// failure in either is logged and counted but never aborts the deletion.
func (s *ProductService) Delete(ctx context.Context, id string, actorID string) error {
	log := logger.WithCtx(ctx)

	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if p.Seller.ID != actorID {
		return ErrNotOwner
	}

	if p.ImageID != "" {
		s.deleteBlob(ctx, p.ImageID, "product_image")
	}
	if p.Seller.ProfileImageID != "" {
		s.deleteBlob(ctx, p.Seller.ProfileImageID, "profile_image")
	}

	// Resolve before the record disappears; the deleted event carries the
	// full snapshot.
	categoryName := s.categoryNameOf(ctx, p)

	if err := s.products.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.search.Remove(ctx, p.ID.Hex()); err != nil {
		log.Error("search remove failed", "product_id", p.ID.Hex(), "error", err)
		metrics.IndexSyncFailures.WithLabelValues("remove").Inc()
	}

	s.publish(ctx, models.EventProductDeleted, p.View(categoryName))
	s.invalidate(ctx, id)

	return nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func (s *ProductService) resolveCategory(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrCategoryNotFound
	}
	name, err := s.categories.Resolve(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", ErrCategoryNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve category %s: %w", id, err)
	}
	return name, nil
}

// categoryNameOf resolves the stored category of p, tolerating a category
// deleted underneath the product: reads keep working with an empty name.
func (s *ProductService) categoryNameOf(ctx context.Context, p models.Product) string {
	name, err := s.categories.Resolve(ctx, p.CategoryID.Hex())
	if err != nil {
		logger.WithCtx(ctx).Warn("category no longer resolves",
			"product_id", p.ID.Hex(), "category_id", p.CategoryID.Hex(), "error", err)
		return ""
	}
	return name
}

func (s *ProductService) storeBlob(ctx context.Context, up *Upload) (string, error) {
	if s.blobs == nil {
		return "", ErrBlobStoreNotReady
	}
	ref, err := s.blobs.Store(ctx, up.Data, up.Filename, up.ContentType)
	if err != nil {
		return "", fmt.Errorf("store blob %s: %w", up.Filename, err)
	}
	return ref, nil
}

// deleteBlob is best-effort: failures leave data behind but never fail the
// surrounding deletion.
func (s *ProductService) deleteBlob(ctx context.Context, ref, kind string) {
	if s.blobs == nil {
		logger.WithCtx(ctx).Warn("blob store not ready, blob left behind", "ref", ref, "kind", kind)
		metrics.BlobDeleteFailures.WithLabelValues(kind).Inc()
		return
	}
	if err := s.blobs.Delete(ctx, ref); err != nil {
		logger.WithCtx(ctx).Error("blob delete failed", "ref", ref, "kind", kind, "error", err)
		metrics.BlobDeleteFailures.WithLabelValues(kind).Inc()
	}
}

// orphanBlob records a blob stranded by an image replacement. The old data
// is deliberately not deleted here (matching the long-standing behaviour);
// the counter feeds out-of-band cleanup.
func (s *ProductService) orphanBlob(ctx context.Context, ref string) {
	logger.WithCtx(ctx).Warn("blob orphaned by image replacement", "ref", ref)
	metrics.OrphanedBlobs.Inc()
}

// syncIndex mirrors the snapshot into the search index. Runs after the
// durable write; failures are swallowed.
func (s *ProductService) syncIndex(ctx context.Context, view models.ProductView) {
	doc := models.NewSearchDocument(view)
	if err := s.search.Upsert(ctx, view.ID.Hex(), doc); err != nil {
		logger.WithCtx(ctx).Error("search sync failed",
			"product_id", view.ID.Hex(), "error", err)
		metrics.IndexSyncFailures.WithLabelValues("upsert").Inc()
	}
}

// publish emits the event to the general topic first, then the notification
// topic. The publisher itself is fire-and-forget.
func (s *ProductService) publish(ctx context.Context, eventType string, view models.ProductView) {
	evt := models.ProductEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Data:      view,
		EmittedAt: time.Now().UTC(),
	}
	s.events.Publish(models.TopicProductEvents, evt)
	s.events.Publish(models.TopicNotifications, evt)

	logger.WithCtx(ctx).Debug("product event emitted",
		"type", eventType, "product_id", view.ID.Hex())
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Del(ctx, productKeyPrefix+id, listCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("cache invalidation failed", "product_id", id, "error", err)
	}
}
