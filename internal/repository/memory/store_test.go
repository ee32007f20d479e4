package memory

import (
	"context"
	"errors"
	"testing"
)

type item struct {
	key   string
	value int
}

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New(func(i item) string { return i.key })

	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
	}
	_ = s.Set(ctx, item{"a", 1})
	_ = s.Set(ctx, item{"a", 2})
	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.value != 2 {
		t.Errorf("value = %d, want 2 (replaced)", got.value)
	}
	if all, _ := s.All(ctx); len(all) != 1 {
		t.Errorf("All = %d items, want 1", len(all))
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: err = %v, want ErrNotFound", err)
	}
	if s.Has(ctx, "a") {
		t.Error("Has after delete = true")
	}
}

func TestStore_AllOrderedByKey(t *testing.T) {
	ctx := context.Background()
	s := New(func(i item) string { return i.key })
	for _, k := range []string{"c", "a", "b"} {
		_ = s.Set(ctx, item{key: k})
	}
	all, _ := s.All(ctx)
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].key != want {
			t.Errorf("all[%d] = %q, want %q", i, all[i].key, want)
		}
	}
}
