package queries_test

import (
	"testing"

	"workorders/internal/core/application/usecases/queries"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetWorkOrderQuery(t *testing.T) {
	id := kernel.NewUUID()
	query, err := queries.NewGetWorkOrderQuery(id)
	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.Equal(t, id, query.WorkOrderID())

	_, err = queries.NewGetWorkOrderQuery(kernel.UUID{})
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestGetWorkOrderQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetWorkOrderQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetWorkOrderQueryIsNotConstructed)
}

func TestNewGetAuditEntriesQuery(t *testing.T) {
	_, err := queries.NewGetAuditEntriesQuery(kernel.UUID{})
	require.Error(t, err)

	query := queries.GetAuditEntriesQuery{}
	assert.ErrorIs(t, query.Validate(), queries.ErrGetAuditEntriesQueryIsNotConstructed)
}

func TestNewListWorkOrdersQuery(t *testing.T) {
	t.Run("defaults the limit", func(t *testing.T) {
		query, err := queries.NewListWorkOrdersQuery(queries.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, queries.DefaultListLimit, query.Filter().Limit)
	})

	t.Run("keeps the filter", func(t *testing.T) {
		assignee := kernel.NewUUID()
		query, err := queries.NewListWorkOrdersQuery(queries.ListFilter{
			Status:     workorder.InProgress,
			AssigneeID: &assignee,
			Limit:      5,
		})
		require.NoError(t, err)
		assert.Equal(t, workorder.InProgress, query.Filter().Status)
		assert.Equal(t, 5, query.Filter().Limit)
	})

	t.Run("rejects an out of range limit", func(t *testing.T) {
		_, err := queries.NewListWorkOrdersQuery(queries.ListFilter{Limit: queries.MaxListLimit + 1})
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("rejects a zero creator id", func(t *testing.T) {
		zero := kernel.UUID{}
		_, err := queries.NewListWorkOrdersQuery(queries.ListFilter{CreatorID: &zero})
		assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		assert.ErrorIs(t, queries.ListWorkOrdersQuery{}.Validate(), queries.ErrListWorkOrdersQueryIsNotConstructed)
	})
}
