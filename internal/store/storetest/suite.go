// Package storetest contiene la suite de conformidad que todo adapter de
// store debe pasar. Los tests de cada adapter la invocan con su propia
// fábrica de conexiones.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/domain/types"
	"github.com/dropDatabas3/accounts/internal/store"
)

// Factory crea una conexión vacía para un subtest.
type Factory func(t *testing.T) store.AdapterConnection

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// NewUser arma un usuario válido con ID y email derivados de n.
func NewUser(n int, org string) *repository.User {
	return &repository.User{
		ID:             fmt.Sprintf("u-%03d", n),
		Email:          fmt.Sprintf("user%d@example.com", n),
		OrganizationID: org,
		PasswordHash:   "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		Name:           fmt.Sprintf("User %d", n),
		Status:         types.UserActive,
		CreatedAt:      base.Add(time.Duration(n) * time.Minute),
	}
}

// Run ejecuta la suite completa.
func Run(t *testing.T, newConn Factory) {
	t.Run("RoundTrip", func(t *testing.T) { roundTrip(t, newConn(t)) })
	t.Run("Pagination", func(t *testing.T) { pagination(t, newConn(t)) })
	t.Run("Filters", func(t *testing.T) { filters(t, newConn(t)) })
	t.Run("NotFound", func(t *testing.T) { notFound(t, newConn(t)) })
	t.Run("InvalidArgument", func(t *testing.T) { invalidArgument(t, newConn(t)) })
	t.Run("SaveUnique", func(t *testing.T) { saveUnique(t, newConn(t)) })
	t.Run("Merchants", func(t *testing.T) { merchants(t, newConn(t)) })
	t.Run("ConcurrentWrites", func(t *testing.T) { concurrentWrites(t, newConn(t)) })
	t.Run("ConditionalUpdate", func(t *testing.T) { conditionalUpdate(t, newConn(t)) })
}

func roundTrip(t *testing.T, c store.AdapterConnection) {
	ctx := context.Background()
	users := c.Users()

	u := NewUser(1, "org-1")
	login := base.Add(time.Hour)
	u.LastLoginAt = &login

	saved, err := users.Save(ctx, u)
	require.NoError(t, err)
	require.Equal(t, u, saved)

	got, err := users.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u, got)

	// Save sobre el mismo ID reemplaza.
	got.Name = "Renamed"
	got.LastLoginAt = nil
	_, err = users.Save(ctx, got)
	require.NoError(t, err)

	again, err := users.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", again.Name)
	require.Nil(t, again.LastLoginAt)

	n, err := users.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Las entidades devueltas no comparten estado con el store.
	again.Name = "mutated"
	fresh, err := users.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", fresh.Name)

	org := &repository.Organization{
		ID: "org-1", Name: "Acme", Domain: "acme.example", Status: types.OrganizationActive,
		CreatedAt: base, UpdatedAt: base,
		Metadata: map[string]any{"tier": "gold", "seats": float64(10)},
	}
	_, err = c.Organizations().Save(ctx, org)
	require.NoError(t, err)
	gotOrg, err := c.Organizations().GetByDomain(ctx, "ACME.example")
	require.NoError(t, err)
	require.Equal(t, org, gotOrg)
}

func pagination(t *testing.T, c store.AdapterConnection) {
	ctx := context.Background()
	users := c.Users()

	batch := make([]*repository.User, 0, 5)
	for i := 1; i <= 5; i++ {
		batch = append(batch, NewUser(i, "org-1"))
	}
	_, err := users.BulkSave(ctx, batch)
	require.NoError(t, err)

	sorted := repository.Sort{Field: repository.UserColCreatedAt}
	var pages [][]string
	for offset := 0; offset < 5; offset += 2 {
		page, err := users.ListAll(ctx, repository.ListOptions{Limit: 2, Offset: offset, Sort: sorted})
		require.NoError(t, err)
		ids := make([]string, 0, len(page))
		for _, u := range page {
			ids = append(ids, u.ID)
		}
		pages = append(pages, ids)
	}
	require.Equal(t, [][]string{{"u-001", "u-002"}, {"u-003", "u-004"}, {"u-005"}}, pages)

	desc, err := users.ListAll(ctx, repository.ListOptions{Limit: 1, Sort: repository.Sort{Field: repository.UserColCreatedAt, Desc: true}})
	require.NoError(t, err)
	require.Len(t, desc, 1)
	require.Equal(t, "u-005", desc[0].ID)

	empty, err := users.ListAll(ctx, repository.ListOptions{Offset: 10})
	require.NoError(t, err)
	require.Empty(t, empty)

	// Un campo de orden desconocido se ignora.
	all, err := users.ListAll(ctx, repository.ListOptions{Sort: repository.Sort{Field: "nope"}})
	require.NoError(t, err)
	require.Len(t, all, 5)
}

func filters(t *testing.T, c store.AdapterConnection) {
	ctx := context.Background()
	users := c.Users()

	for i := 1; i <= 6; i++ {
		org := "org-a"
		if i%2 == 0 {
			org = "org-b"
		}
		u := NewUser(i, org)
		if i == 6 {
			u.Status = types.UserSuspended
		}
		_, err := users.Save(ctx, u)
		require.NoError(t, err)
	}

	count := func(f repository.Filters) int {
		t.Helper()
		n, err := users.Count(ctx, f)
		require.NoError(t, err)
		return n
	}

	require.Equal(t, 3, count(repository.Where(repository.UserColOrganizationID, repository.Equals("org-b"))))
	require.Equal(t, 1, count(repository.Where(repository.UserColStatus, repository.Equals(types.UserSuspended))))
	require.Equal(t, 2, count(repository.Where(repository.UserColID, repository.In("u-001", "u-004", "u-999"))))
	require.Equal(t, 0, count(repository.Where(repository.UserColID, repository.In())))
	require.Equal(t, 3, count(repository.Where(repository.UserColCreatedAt, repository.Range(base.Add(2*time.Minute), base.Add(4*time.Minute)))))
	require.Equal(t, 2, count(repository.Where(repository.UserColCreatedAt, repository.AtLeast(base.Add(5*time.Minute)))))
	require.Equal(t, 1, count(repository.Where(repository.UserColCreatedAt, repository.AtMost(base.Add(time.Minute)))))
	require.Equal(t, 1, count(repository.Where(repository.UserColEmail, repository.Like("user3@%"))))
	require.Equal(t, 2, count(repository.Where(repository.UserColOrganizationID, repository.Equals("org-b")).
		And(repository.UserColStatus, repository.Equals(types.UserActive))))

	// Campos desconocidos se ignoran.
	require.Equal(t, 6, count(repository.Where("favourite_colour", repository.Equals("blue"))))

	ok, err := users.Exists(ctx, repository.Where(repository.UserColEmail, repository.Equals("user2@example.com")))
	require.NoError(t, err)
	require.True(t, ok)

	u, err := users.GetByEmail(ctx, " USER2@example.com ")
	require.NoError(t, err)
	require.Equal(t, "u-002", u.ID)

	_, err = users.GetByEmailInOrganization(ctx, "user2@example.com", "org-a")
	require.True(t, repository.IsNotFound(err))

	n, err := users.BulkDelete(ctx, repository.Where(repository.UserColOrganizationID, repository.Equals("org-a")))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 3, count(nil))
}

func notFound(t *testing.T, c store.AdapterConnection) {
	ctx := context.Background()
	users := c.Users()

	_, err := users.Get(ctx, "missing")
	require.True(t, repository.IsNotFound(err), "err = %v", err)

	var nf *repository.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "User", nf.Entity)
	require.Equal(t, "missing", nf.ID)

	_, err = users.Delete(ctx, "missing")
	require.True(t, repository.IsNotFound(err))

	_, found, err := users.FindOne(ctx, repository.Where(repository.UserColEmail, repository.Equals("nobody@example.com")))
	require.NoError(t, err)
	require.False(t, found)

	_, err = users.GetByEmail(ctx, "nobody@example.com")
	require.True(t, repository.IsNotFound(err))

	_, err = users.Save(ctx, NewUser(1, "org-1"))
	require.NoError(t, err)
	ok, err := users.Delete(ctx, "u-001")
	require.NoError(t, err)
	require.True(t, ok)
	_, err = users.Get(ctx, "u-001")
	require.True(t, repository.IsNotFound(err))
}

func invalidArgument(t *testing.T, c store.AdapterConnection) {
	ctx := context.Background()
	users := c.Users()

	_, _, err := users.FindOne(ctx, nil)
	require.True(t, repository.IsInvalidArgument(err))
	_, err = users.Exists(ctx, repository.Filters{})
	require.True(t, repository.IsInvalidArgument(err))
	_, err = users.BulkDelete(ctx, nil)
	require.True(t, repository.IsInvalidArgument(err))

	noID := NewUser(1, "org-1")
	noID.ID = ""
	_, err = users.Save(ctx, noID)
	require.True(t, repository.IsInvalidArgument(err))
}

func saveUnique(t *testing.T, c store.AdapterConnection) {
	ctx := context.Background()
	users := c.Users()

	unique := func(u *repository.User) repository.Filters {
		return repository.Where(repository.UserColEmail, repository.Equals(u.Email)).
			And(repository.UserColOrganizationID, repository.Equals(u.OrganizationID))
	}

	first := NewUser(1, "org-1")
	_, err := users.SaveUnique(ctx, first, unique(first))
	require.NoError(t, err)

	dup := NewUser(2, "org-1")
	dup.Email = first.Email
	_, err = users.SaveUnique(ctx, dup, unique(dup))
	require.True(t, repository.IsConflict(err), "err = %v", err)

	// Mismo email en otra organización es válido.
	other := NewUser(3, "org-2")
	other.Email = first.Email
	_, err = users.SaveUnique(ctx, other, unique(other))
	require.NoError(t, err)

	n, err := users.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func merchants(t *testing.T, c store.AdapterConnection) {
	ctx := context.Background()
	repo := c.Merchants()

	for i := 1; i <= 3; i++ {
		org := "org-1"
		if i == 3 {
			org = "org-2"
		}
		m := &repository.Merchant{
			ID: fmt.Sprintf("m-%d", i), OrganizationID: org, Name: fmt.Sprintf("Shop %d", i),
			CountryCode: "AR", Currency: "ARS", Status: types.MerchantUnderReview,
			PaymentMethods: []string{"card"}, APIKeys: []string{}, Metadata: map[string]any{},
			CreatedAt: base.Add(time.Duration(i) * time.Second), UpdatedAt: base,
		}
		_, err := repo.Save(ctx, m)
		require.NoError(t, err)
	}

	list, err := repo.ListByOrganization(ctx, "org-1", repository.ListOptions{Sort: repository.Sort{Field: repository.MerchantColCreatedAt}})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "m-1", list[0].ID)
	require.Equal(t, []string{"card"}, list[0].PaymentMethods)
	require.Empty(t, list[0].APIKeys)
	require.NotNil(t, list[0].Metadata)
}

func concurrentWrites(t *testing.T, c store.AdapterConnection) {
	ctx := context.Background()
	users := c.Users()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := users.Save(ctx, NewUser(i, "org-1")); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := users.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, n, count)
}

func conditionalUpdate(t *testing.T, c store.AdapterConnection) {
	ctx := context.Background()
	users := c.Users()
	u := NewUser(1, "org-1")
	_, err := users.Save(ctx, u)
	require.NoError(t, err)

	at := base.Add(2 * time.Hour)
	got, ok, err := users.RecordLogin(ctx, u.ID, at)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, got.LastLoginAt)
	require.True(t, got.LastLoginAt.Equal(at))
	require.Equal(t, u.Name, got.Name, "only last_login_at changes")

	ok, err = users.UpdatePasswordHash(ctx, u.ID, "$argon2id$v=19$m=2048,t=1,p=1$c2FsdA$bmV3")
	require.NoError(t, err)
	require.True(t, ok)

	// Con el usuario inactivo ninguna de las dos escribe.
	current, err := users.Get(ctx, u.ID)
	require.NoError(t, err)
	current.Deactivate()
	_, err = users.Save(ctx, current)
	require.NoError(t, err)

	_, ok, err = users.RecordLogin(ctx, u.ID, at.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = users.UpdatePasswordHash(ctx, u.ID, "$argon2id$v=19$m=4096,t=1,p=1$c2FsdA$b3Ry")
	require.NoError(t, err)
	require.False(t, ok)

	final, err := users.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, types.UserInactive, final.Status)
	require.True(t, final.LastLoginAt.Equal(at))
	require.Equal(t, "$argon2id$v=19$m=2048,t=1,p=1$c2FsdA$bmV3", final.PasswordHash)

	_, _, err = users.RecordLogin(ctx, "u-missing", at)
	require.True(t, repository.IsNotFound(err), "err = %v", err)

	_, _, err = users.Update(ctx, u.ID, repository.Record{repository.UserColID: "other"}, nil)
	require.True(t, repository.IsInvalidArgument(err), "pk is not updatable: %v", err)
	_, _, err = users.Update(ctx, u.ID, repository.Record{"nope": 1}, nil)
	require.True(t, repository.IsInvalidArgument(err), "unknown column: %v", err)
}
