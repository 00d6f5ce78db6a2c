package savegame

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-koopa/internal/core"
)

type memItems map[string][]byte

func (m memItems) SaveItem(key string, data []byte) error {
	m[key] = append([]byte(nil), data...)
	return nil
}

func (m memItems) LoadItem(key string) ([]byte, error) {
	data, ok := m[key]
	if !ok {
		return nil, errors.New("no such item")
	}
	return data, nil
}

func (m memItems) ItemExists(key string) bool {
	_, ok := m[key]
	return ok
}

func (m memItems) DeleteItem(key string) error {
	delete(m, key)
	return nil
}

func testStore() (*Store, memItems) {
	mem := memItems{}
	s := newStore(mem)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s, mem
}

func TestSlotLifecycle(t *testing.T) {
	s, _ := testStore()

	_, err := s.LoadSlot("koopa", "alice")
	require.ErrorIs(t, err, core.ErrSlotNotFound)

	require.NoError(t, s.SaveSlot("koopa", "alice", "W1-1 x3", []byte("one")))
	require.NoError(t, s.SaveSlot("koopa", "bob", "W2-3 x1", []byte("two")))
	require.NoError(t, s.SaveSlot("koopa", "alice", "W1-2 x3", []byte("three")))

	data, err := s.LoadSlot("koopa", "alice")
	require.NoError(t, err)
	assert.Equal(t, "three", string(data))

	slots, err := s.ListSlots("koopa")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "alice", slots[0].Name, "most recent first")
	assert.Equal(t, "W1-2 x3", slots[0].Summary)
	assert.Equal(t, "bob", slots[1].Name)

	require.NoError(t, s.DeleteSlot("koopa", "alice"))
	require.NoError(t, s.DeleteSlot("koopa", "alice"))
	_, err = s.LoadSlot("koopa", "alice")
	assert.ErrorIs(t, err, core.ErrSlotNotFound)

	slots, err = s.ListSlots("koopa")
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestSlotNamesAreEncoded(t *testing.T) {
	s, mem := testStore()

	require.NoError(t, s.SaveSlot("koopa", "../etc/passwd", "x", []byte("p")))

	for key := range mem {
		assert.NotContains(t, key, "/")
	}
	data, err := s.LoadSlot("koopa", "../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "p", string(data))
}

func TestGamesAreSeparate(t *testing.T) {
	s, _ := testStore()
	require.NoError(t, s.SaveSlot("koopa", "a", "x", []byte("1")))

	slots, err := s.ListSlots("koopa_custom")
	require.NoError(t, err)
	assert.Empty(t, slots)
	_, err = s.LoadSlot("koopa_custom", "a")
	assert.ErrorIs(t, err, core.ErrSlotNotFound)
}

func TestCorruptIndex(t *testing.T) {
	s, mem := testStore()
	mem[indexKey("koopa")] = []byte("{not json")

	_, err := s.ListSlots("koopa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "savegame: parse index")
}
