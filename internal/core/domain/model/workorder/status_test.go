package workorder_test

import (
	"testing"

	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	t.Run("should list the six statuses in display order", func(t *testing.T) {
		all := workorder.All()

		require.Len(t, all, 6)
		assert.Equal(t, []workorder.Status{
			workorder.Draft,
			workorder.Assigned,
			workorder.InProgress,
			workorder.Complete,
			workorder.Cancelled,
			workorder.Archived,
		}, all)
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].SortOrder(), all[i].SortOrder())
		}
	})

	t.Run("should not include None", func(t *testing.T) {
		assert.NotContains(t, workorder.All(), workorder.None)
	})
}

func TestParse(t *testing.T) {
	testCases := []struct {
		key      string
		expected workorder.Status
	}{
		{"DFT", workorder.Draft},
		{"asd", workorder.Assigned},
		{"Ipg", workorder.InProgress},
		{"CMP", workorder.Complete},
		{"cnl", workorder.Cancelled},
		{" ARC ", workorder.Archived},
		{"non", workorder.None},
	}

	for _, tc := range testCases {
		t.Run("should parse "+tc.key, func(t *testing.T) {
			s, err := workorder.Parse(tc.key)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, s)
		})
	}

	t.Run("should fail with unknown status", func(t *testing.T) {
		s, err := workorder.Parse("Done")

		require.ErrorIs(t, err, workorder.ErrUnknownStatus)
		assert.Contains(t, err.Error(), `"Done"`)
		assert.Equal(t, workorder.None, s)
	})

	t.Run("should round trip every key", func(t *testing.T) {
		for _, s := range workorder.All() {
			parsed, err := workorder.Parse(s.Key())
			require.NoError(t, err)
			assert.True(t, parsed.Equal(s))
		}
	})
}

func TestStatus_Equality(t *testing.T) {
	t.Run("should compare by key", func(t *testing.T) {
		parsed, err := workorder.Parse("cmp")
		require.NoError(t, err)

		assert.True(t, parsed.Equal(workorder.Complete))
		assert.Equal(t, workorder.Complete, parsed)
		assert.False(t, parsed.Equal(workorder.Archived))
	})

	t.Run("should work as map key", func(t *testing.T) {
		counts := map[workorder.Status]int{}
		for _, s := range append(workorder.All(), workorder.Draft) {
			counts[s]++
		}
		assert.Equal(t, 2, counts[workorder.Draft])
		assert.Len(t, counts, 6)
	})
}

func TestStatus_IsTerminal(t *testing.T) {
	terminal := map[workorder.Status]bool{
		workorder.Draft:      false,
		workorder.Assigned:   false,
		workorder.InProgress: false,
		workorder.Complete:   true,
		workorder.Cancelled:  true,
		workorder.Archived:   true,
	}
	for s, expected := range terminal {
		assert.Equal(t, expected, s.IsTerminal(), s.Name())
	}
}

func TestStatus_Validate(t *testing.T) {
	t.Run("should accept real statuses", func(t *testing.T) {
		for _, s := range workorder.All() {
			require.NoError(t, s.Validate())
		}
	})

	t.Run("should reject None and zero value", func(t *testing.T) {
		require.ErrorIs(t, workorder.None.Validate(), errs.ErrValueIsInvalid)
		require.ErrorIs(t, workorder.Status{}.Validate(), errs.ErrValueIsInvalid)
		assert.True(t, workorder.Status{}.IsNone())
		assert.Equal(t, "NON", workorder.Status{}.String())
	})
}
