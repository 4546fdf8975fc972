package products

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icommerce/internal/domain/catalog"
)

func TestNewVariantSetStartsWithOneEmptySlot(t *testing.T) {
	s := NewVariantSet()

	require.Len(t, s.Rows, 1)
	require.Len(t, s.Rows[0].Slots, 1)
	assert.Zero(t, s.Rows[0].Slots[0].AttributeID)
	assert.Zero(t, s.Rows[0].Slots[0].ValueID)
}

func TestAddSlotPropagatesToAllRows(t *testing.T) {
	s := NewVariantSet()
	s.AddRow()
	s.AddRow()

	require.NoError(t, s.AddSlot(7))

	for i, row := range s.Rows {
		require.Len(t, row.Slots, 2, "row %d", i)
		assert.Equal(t, int64(7), row.Slots[1].AttributeID, "row %d", i)
		assert.Zero(t, row.Slots[1].ValueID, "row %d", i)
	}
}

func TestAddSlotRejectsOccupiedAttribute(t *testing.T) {
	s := NewVariantSet()
	require.NoError(t, s.SetSlotDefinition(0, 0, 7))

	err := s.AddSlot(7)
	assert.ErrorIs(t, err, ErrAttributeOccupied)
}

func TestRemoveSlotKeepsAtLeastOne(t *testing.T) {
	s := NewVariantSet()
	s.AddRow()

	assert.ErrorIs(t, s.RemoveSlot(0), ErrLastSlot)

	require.NoError(t, s.AddSlot(7))
	require.NoError(t, s.RemoveSlot(0))
	for _, row := range s.Rows {
		require.Len(t, row.Slots, 1)
		assert.Equal(t, int64(7), row.Slots[0].AttributeID)
	}
}

func TestSetSlotDefinitionOnlyFromFirstRow(t *testing.T) {
	s := NewVariantSet()
	s.AddRow()

	err := s.SetSlotDefinition(1, 0, 7)
	assert.ErrorIs(t, err, ErrSlotNotFirstRow)
}

func TestSetSlotDefinitionClearsValuesEverywhere(t *testing.T) {
	s := NewVariantSet()
	s.AddRow()
	s.AddRow()
	require.NoError(t, s.SetSlotDefinition(0, 0, 7))

	require.NoError(t, s.SetSlotValue(0, 0, 71, nil))
	require.NoError(t, s.SetSlotValue(1, 0, 72, nil))
	require.NoError(t, s.SetSlotValue(2, 0, 73, nil))

	require.NoError(t, s.SetSlotDefinition(0, 0, 8))

	for i, row := range s.Rows {
		assert.Equal(t, int64(8), row.Slots[0].AttributeID, "row %d", i)
		assert.Zero(t, row.Slots[0].ValueID, "row %d inherits the cleared value", i)
	}
}

func TestSetSlotValueTouchesOnlyOneRow(t *testing.T) {
	s := NewVariantSet()
	s.AddRow()
	require.NoError(t, s.SetSlotDefinition(0, 0, 7))

	require.NoError(t, s.SetSlotValue(1, 0, 72, nil))

	assert.Zero(t, s.Rows[0].Slots[0].ValueID)
	assert.Equal(t, int64(72), s.Rows[1].Slots[0].ValueID)
}

func TestSetSlotValueChecksMembership(t *testing.T) {
	s := NewVariantSet()
	require.NoError(t, s.SetSlotDefinition(0, 0, 7))

	size := &catalog.Attribute{
		ID: 7,
		Values: []catalog.AttributeValue{
			{ID: 71, AttributeID: 7, Name: "30ml"},
			{ID: 72, AttributeID: 7, Name: "50ml"},
		},
	}

	require.NoError(t, s.SetSlotValue(0, 0, 71, size))
	assert.ErrorIs(t, s.SetSlotValue(0, 0, 99, size), ErrValueNotInAttribute)

	other := &catalog.Attribute{ID: 8}
	assert.ErrorIs(t, s.SetSlotValue(0, 0, 71, other), ErrValueNotInAttribute)
}

func TestAddRowCopiesDefinitionsNotValues(t *testing.T) {
	s := NewVariantSet()
	require.NoError(t, s.SetSlotDefinition(0, 0, 7))
	require.NoError(t, s.AddSlot(8))
	require.NoError(t, s.SetSlotValue(0, 0, 71, nil))
	require.NoError(t, s.SetSlotValue(0, 1, 81, nil))

	row := s.AddRow()

	require.Len(t, row.Slots, 2)
	assert.Equal(t, int64(7), row.Slots[0].AttributeID)
	assert.Equal(t, int64(8), row.Slots[1].AttributeID)
	assert.Zero(t, row.Slots[0].ValueID)
	assert.Zero(t, row.Slots[1].ValueID)

	assert.NoError(t, s.ValidateSchemaParity())
}

func TestRemoveRowKeepsAtLeastOne(t *testing.T) {
	s := NewVariantSet()
	assert.ErrorIs(t, s.RemoveRow(0), ErrLastRow)

	s.AddRow()
	require.NoError(t, s.RemoveRow(1))
	assert.Len(t, s.Rows, 1)
}

func TestValidateSchemaParity(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*VariantSet)
		wantErr bool
	}{
		{
			name:   "single row always passes",
			mutate: func(s *VariantSet) { s.Rows[0].Slots = []AttributeSlot{{AttributeID: 7}} },
		},
		{
			name: "identical sequences pass",
			mutate: func(s *VariantSet) {
				s.AddRow()
			},
		},
		{
			name: "different length fails",
			mutate: func(s *VariantSet) {
				s.AddRow()
				s.Rows[1].Slots = append(s.Rows[1].Slots, AttributeSlot{AttributeID: 8})
			},
			wantErr: true,
		},
		{
			name: "different attribute at same position fails",
			mutate: func(s *VariantSet) {
				s.AddRow()
				s.Rows[1].Slots[0].AttributeID = 9
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewVariantSet()
			require.NoError(t, s.SetSlotDefinition(0, 0, 7))
			tt.mutate(s)

			err := s.ValidateSchemaParity()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSchemaParity)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUniqueCombinationsNamesBothRows(t *testing.T) {
	s := NewVariantSet()
	require.NoError(t, s.SetSlotDefinition(0, 0, 7))
	s.AddRow()
	s.AddRow()

	require.NoError(t, s.SetSlotValue(0, 0, 71, nil))
	require.NoError(t, s.SetSlotValue(1, 0, 72, nil))
	require.NoError(t, s.SetSlotValue(2, 0, 71, nil))

	conflicts := s.ValidateUniqueCombinations()

	require.NotNil(t, conflicts)
	assert.Equal(t, 2, conflicts[0])
	assert.Equal(t, 0, conflicts[2])
	_, ok := conflicts[1]
	assert.False(t, ok, "row 1 has a distinct combination")
}

func TestValidateUniqueCombinationsDistinctRowsPass(t *testing.T) {
	s := NewVariantSet()
	require.NoError(t, s.SetSlotDefinition(0, 0, 7))
	s.AddRow()

	require.NoError(t, s.SetSlotValue(0, 0, 71, nil))
	require.NoError(t, s.SetSlotValue(1, 0, 72, nil))

	assert.Nil(t, s.ValidateUniqueCombinations())
}

func TestValidateUniqueCombinationsEmptyValuesCollide(t *testing.T) {
	s := NewVariantSet()
	require.NoError(t, s.SetSlotDefinition(0, 0, 7))
	s.AddRow()

	conflicts := s.ValidateUniqueCombinations()

	require.NotNil(t, conflicts)
	assert.Equal(t, 1, conflicts[0])
	assert.Equal(t, 0, conflicts[1])
}

func TestAvailableAttributesExcludesOccupied(t *testing.T) {
	all := []*catalog.Attribute{{ID: 7, Name: "Size"}, {ID: 8, Name: "Color"}, {ID: 9, Name: "Scent"}}

	s := NewVariantSet()
	require.NoError(t, s.SetSlotDefinition(0, 0, 7))
	require.NoError(t, s.AddSlot(9))

	free, err := s.AvailableAttributes(0, all)

	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, int64(8), free[0].ID)
}
