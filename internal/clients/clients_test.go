package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-retail/internal/dbtest"
	"github.com/diewo77/go-retail/internal/models"
	"github.com/diewo77/go-retail/validation"
)

func TestCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(dbtest.New(t))

	c, err := reg.Create(ctx, Input{FirstName: "Jeanne", LastName: "Martin", Email: "jeanne@example.fr", City: "Garches", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Jeanne Martin", c.FullName)

	got, err := reg.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "jeanne@example.fr", got.Email)

	updated, err := reg.Update(ctx, c.ID, Input{FirstName: "Jeanne", LastName: "Durand", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Jeanne Durand", updated.FullName)

	_, err = reg.Get(ctx, 404)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestCreateValidates(t *testing.T) {
	reg := NewRegistry(dbtest.New(t))
	_, err := reg.Create(context.Background(), Input{LastName: "Martin", Email: "nope"})
	var v validation.Violations
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "required", v["first_name"])
	assert.Equal(t, "invalid_email", v["email"])
}

func TestListSearch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(dbtest.New(t))
	for _, in := range []Input{
		{FirstName: "Paul", LastName: "Bernard", IsActive: true},
		{FirstName: "Alice", LastName: "Adam", Email: "alice@velo.fr", IsActive: true},
		{FirstName: "Marc", LastName: "Bernard", Phone: "0612345678", IsActive: true},
	} {
		_, err := reg.Create(ctx, in)
		require.NoError(t, err)
	}

	all, err := reg.List(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Adam", all[0].LastName)
	assert.Equal(t, "Marc", all[1].FirstName)

	found, err := reg.List(ctx, "bern", 0, 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = reg.List(ctx, "VELO.FR", 0, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Alice", found[0].FirstName)
}

func TestDeleteClientWithOrders(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	reg := NewRegistry(db)

	c, err := reg.Create(ctx, Input{FirstName: "Luc", LastName: "Petit", IsActive: true})
	require.NoError(t, err)
	u := models.User{Username: "vendeur", Role: models.RoleSeller, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	require.NoError(t, db.Create(&models.Order{ClientID: c.ID, UserID: u.ID, Store: models.StoreVilleAvray, PaymentMethod: models.PaymentCard, Installments: 1}).Error)

	assert.ErrorIs(t, reg.Delete(ctx, c.ID), ErrClientHasOrders)

	free, err := reg.Create(ctx, Input{FirstName: "Eva", LastName: "Roux"})
	require.NoError(t, err)
	require.NoError(t, reg.Delete(ctx, free.ID))
	assert.ErrorIs(t, reg.Delete(ctx, free.ID), ErrClientNotFound)
}
