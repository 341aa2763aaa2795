package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/store"
	"github.com/nhle/led-repair/tests/testutil"
)

func TestSaveEmployeeOverwrites(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	require.NoError(t, s.SaveEmployee(ctx, "ali", "one"))
	require.NoError(t, s.SaveEmployee(ctx, "siti", "two"))
	require.NoError(t, s.SaveEmployee(ctx, "ali", "three"))

	employees, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Employee{
		{Username: "siti", Password: "two"},
		{Username: "ali", Password: "three"},
	}, employees)

	e, err := s.FindEmployee(ctx, "ali")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "three", e.Password)
}

func TestSaveEmployeeValidation(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	tests := []struct {
		name     string
		username string
		password string
		target   error
	}{
		{"empty username", "", "pw", store.ErrValidation},
		{"empty password", "ali", "", store.ErrValidation},
		{"reserved admin", model.AdminUsername, "pw", store.ErrReservedUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SaveEmployee(ctx, tt.username, tt.password)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target))
			assert.True(t, errors.Is(err, store.ErrValidation))
		})
	}

	employees, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
}

func TestDeleteEmployee(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	require.NoError(t, s.SaveEmployee(ctx, "ali", "one"))

	removed, err := s.DeleteEmployee(ctx, model.AdminUsername)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = s.DeleteEmployee(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = s.DeleteEmployee(ctx, "ali")
	require.NoError(t, err)
	assert.True(t, removed)

	e, err := s.FindEmployee(ctx, "ali")
	require.NoError(t, err)
	assert.Nil(t, e)
}
