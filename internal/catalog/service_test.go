package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/storage"
)

type fakeStore struct {
	products  []domain.Product
	appendErr error
}

func (f *fakeStore) Load(ctx context.Context) ([]domain.Product, error) {
	return f.products, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Append(ctx context.Context, p domain.Product) (domain.Product, error) {
	if f.appendErr != nil {
		return domain.Product{}, f.appendErr
	}
	p.ID = "1"
	f.products = append(f.products, p)
	return p, nil
}

type recordingAnnouncer struct {
	announced []domain.Product
	err       error
}

func (a *recordingAnnouncer) Announce(ctx context.Context, p domain.Product) error {
	if a.err != nil {
		return a.err
	}
	a.announced = append(a.announced, p)
	return nil
}

func TestPublishCommitsThenAnnounces(t *testing.T) {
	store := &fakeStore{}
	announcer := &recordingAnnouncer{}
	svc := New(store)

	created, err := svc.Publish(context.Background(), domain.IntakeDraft{
		Name: "Widget", Description: "A fine widget", ImageURL: "http://img/1.png",
	}, announcer)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if created.ID != "1" || created.Name != "Widget" {
		t.Fatalf("created = %+v", created)
	}
	if len(announcer.announced) != 1 {
		t.Fatalf("announced %d times, want 1", len(announcer.announced))
	}
	if announcer.announced[0].ID != "1" {
		t.Fatalf("announced product must carry the assigned id, got %+v", announcer.announced[0])
	}
}

func TestPublishCommitFailureNeverAnnounces(t *testing.T) {
	store := &fakeStore{appendErr: domain.ErrBackendUnavailable}
	announcer := &recordingAnnouncer{}
	svc := New(store)

	_, err := svc.Publish(context.Background(), domain.IntakeDraft{Name: "Widget"}, announcer)
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
	if len(announcer.announced) != 0 {
		t.Fatal("an unconfirmed product must not be announced")
	}
	if len(store.products) != 0 {
		t.Fatal("failed commit must leave the catalog empty")
	}
}

func TestPublishAnnounceFailureKeepsProduct(t *testing.T) {
	store := &fakeStore{}
	announcer := &recordingAnnouncer{err: errors.New("channel unreachable")}
	svc := New(store)

	created, err := svc.Publish(context.Background(), domain.IntakeDraft{Name: "Widget"}, announcer)
	if !errors.Is(err, domain.ErrAnnounceFailed) {
		t.Fatalf("error = %v, want ErrAnnounceFailed", err)
	}
	if created.ID != "1" {
		t.Fatalf("committed product must be returned, got %+v", created)
	}
	if len(store.products) != 1 {
		t.Fatal("product must stay committed despite the failed announcement")
	}
}

func TestPublishRejectsEmptyName(t *testing.T) {
	svc := New(&fakeStore{})
	if _, err := svc.Publish(context.Background(), domain.IntakeDraft{}, nil); err == nil {
		t.Fatal("expected an error for a nameless draft")
	}
}

func TestPublishAgainstFileStore(t *testing.T) {
	store := storage.NewFileProductStore(filepath.Join(t.TempDir(), "products.json"))
	announcer := &recordingAnnouncer{}
	svc := New(store)
	ctx := context.Background()

	created, err := svc.Publish(ctx, domain.IntakeDraft{
		Name: "Widget", Description: "A fine widget", ImageURL: "http://img/1.png",
	}, announcer)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	want := domain.Product{ID: "1", Name: "Widget", Description: "A fine widget", ImageURL: "http://img/1.png"}
	if created != want {
		t.Fatalf("created = %+v, want %+v", created, want)
	}

	stored, err := store.GetByID(ctx, "1")
	if err != nil || stored == nil || *stored != want {
		t.Fatalf("stored = %+v, %v", stored, err)
	}
}
