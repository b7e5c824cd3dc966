package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/store"
	"github.com/dropDatabas3/accounts/internal/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.AdapterConnection {
		return NewConnection()
	})
}

func TestAdapterRegistered(t *testing.T) {
	conn, err := store.OpenAdapter(context.Background(), store.AdapterConfig{Name: "memory"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if conn.Name() != "memory" {
		t.Fatalf("name = %s", conn.Name())
	}
}

type brokenMapper struct{ repository.UserMapper }

func (brokenMapper) FromRecord(repository.Record) (*repository.User, error) {
	return nil, errors.New("corrupt row")
}

func TestDecodeFailureIsRepositoryError(t *testing.T) {
	g := NewGateway[*repository.User](brokenMapper{})
	_, err := g.Save(context.Background(), storetest.NewUser(1, "org-1"))

	var re *repository.RepositoryError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *RepositoryError", err)
	}
	if re.Entity != "User" || re.Op != "save" {
		t.Fatalf("entity=%s op=%s", re.Entity, re.Op)
	}
}

func TestBulkSave_StopsAtFirstFailure(t *testing.T) {
	g := NewGateway[*repository.User](repository.UserMapper{})
	bad := storetest.NewUser(2, "org-1")
	bad.ID = ""

	saved, err := g.BulkSave(context.Background(), []*repository.User{storetest.NewUser(1, "org-1"), bad, storetest.NewUser(3, "org-1")})
	if !repository.IsInvalidArgument(err) {
		t.Fatalf("err = %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("saved = %d, want 1", len(saved))
	}
	if n, _ := g.Count(context.Background(), nil); n != 1 {
		t.Fatalf("count = %d, want 1 (memory bulk save is not atomic)", n)
	}
}

func TestListAll_InsertionOrderPages(t *testing.T) {
	ctx := context.Background()
	g := NewGateway[*repository.User](repository.UserMapper{})

	// IDs fuera de orden lexicográfico: el orden esperado es el de inserción.
	ids := []string{"u-e", "u-a", "u-d", "u-b", "u-c"}
	for i, id := range ids {
		u := storetest.NewUser(i, "org-1")
		u.ID = id
		if _, err := g.Save(ctx, u); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	want := [][]string{{"u-e", "u-a"}, {"u-d", "u-b"}, {"u-c"}}
	for page, offset := range []int{0, 2, 4} {
		got, err := g.ListAll(ctx, repository.ListOptions{Limit: 2, Offset: offset})
		if err != nil {
			t.Fatalf("offset %d: %v", offset, err)
		}
		if len(got) != len(want[page]) {
			t.Fatalf("offset %d: len = %d, want %d", offset, len(got), len(want[page]))
		}
		for i, u := range got {
			if u.ID != want[page][i] {
				t.Fatalf("offset %d[%d] = %s, want %s", offset, i, u.ID, want[page][i])
			}
		}
	}

	// Re-guardar un ID existente no lo mueve al final.
	again := storetest.NewUser(9, "org-1")
	again.ID = "u-e"
	if _, err := g.Save(ctx, again); err != nil {
		t.Fatal(err)
	}
	first, err := g.ListAll(ctx, repository.ListOptions{Limit: 1})
	if err != nil || len(first) != 1 || first[0].ID != "u-e" {
		t.Fatalf("first = %v, err = %v", first, err)
	}
}
