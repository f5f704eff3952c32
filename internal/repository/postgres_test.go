package repository

import (
	"testing"

	"github.com/eightam/acf-ofm-location/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestUniqueRecords(t *testing.T) {
	venue := models.FieldRef{Key: "field_64ab", Name: "venue"}
	office := models.FieldRef{Key: "field_64ac", Name: "office"}

	records := []ImportRecord{
		{PostID: 1, Field: venue, Location: models.CoordinatesOnly(1, 1)},
		{PostID: 1, Field: office, Location: models.CoordinatesOnly(2, 2)},
		{PostID: 2, Field: venue, Location: models.CoordinatesOnly(3, 3)},
		{PostID: 1, Field: venue, Location: models.CoordinatesOnly(4, 4)},
	}

	assert.Equal(t, []ImportRecord{
		{PostID: 1, Field: venue, Location: models.CoordinatesOnly(4, 4)},
		{PostID: 1, Field: office, Location: models.CoordinatesOnly(2, 2)},
		{PostID: 2, Field: venue, Location: models.CoordinatesOnly(3, 3)},
	}, uniqueRecords(records))

	assert.Empty(t, uniqueRecords(nil))
}
