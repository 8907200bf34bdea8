package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id int64, category, name string, price int64) Item {
	return Item{ID: id, Category: category, Name: name, Price: decimal.NewFromInt(price)}
}

func TestNewSnapshot_GroupsInReadOrder(t *testing.T) {
	snapshot := NewSnapshot([]Item{
		item(1, "Часы", "Apple Watch", 100),
		item(2, "Наушники", "AirPods", 50),
		item(3, "Часы", "Galaxy Watch", 80),
	})

	assert.Equal(t, 3, snapshot.Len())
	assert.Equal(t, []string{"Часы", "Наушники"}, snapshot.Categories())

	watches := snapshot.Items("Часы")
	require.Len(t, watches, 2)
	assert.Equal(t, "Apple Watch", watches[0].Name)
	assert.Equal(t, "Galaxy Watch", watches[1].Name)

	all := snapshot.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 3, 2}, []int64{all[0].ID, all[1].ID, all[2].ID})
}

func TestSnapshot_ItemsReturnsCopy(t *testing.T) {
	snapshot := NewSnapshot([]Item{item(1, "Часы", "Apple Watch", 100)})

	items := snapshot.Items("Часы")
	items[0].Name = "mutated"

	assert.Equal(t, "Apple Watch", snapshot.Items("Часы")[0].Name)
}

func TestSnapshot_Lookup(t *testing.T) {
	snapshot := NewSnapshot([]Item{item(1, "Часы", "Apple Watch", 100)})

	found, ok := snapshot.Lookup("Часы", "Apple Watch")
	assert.True(t, ok)
	assert.Equal(t, int64(1), found.ID)

	_, ok = snapshot.Lookup("Наушники", "Apple Watch")
	assert.False(t, ok)
}

func TestSnapshot_NilIsEmpty(t *testing.T) {
	var snapshot *Snapshot

	assert.True(t, snapshot.IsEmpty())
	assert.Nil(t, snapshot.Categories())
	assert.Nil(t, snapshot.Items("Часы"))
}
