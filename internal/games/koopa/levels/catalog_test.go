package levels

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

func TestCatalogBuiltinThenGenerated(t *testing.T) {
	c := NewCatalog("")

	d, err := c.Level(1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "builtin/1-1.yaml", d.FilePath)

	gen, err := c.Level(1, 3, 0)
	require.NoError(t, err)
	assert.Empty(t, gen.FilePath)
	assert.Equal(t, Generate(1, 3, 0).Tiles, gen.Tiles)
}

func TestCatalogUserDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	custom := strings.Replace(smallLevel, "id: test", `id: "1-1"`, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.yaml"), []byte(custom), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("tiles: ["), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	c := NewCatalog(dir)
	d, err := c.Level(1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "Test Level", d.Name)

	all, err := c.LoadAll()
	require.NoError(t, err)
	assert.Len(t, all, 1, "broken files are skipped and ids are unique")
}

func TestCatalogWithoutGenerator(t *testing.T) {
	c := &Catalog{}
	_, err := c.Level(7, 3, 0)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileSourceRereadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lvl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallLevel), 0o600))

	src := FileSource{Path: path}
	d, err := src.Level(5, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "test", d.ID)

	edited := strings.Replace(smallLevel, "name: Test Level", "name: Edited", 1)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o600))
	d, err = src.Level(5, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "Edited", d.Name)
}

func TestLoadFileWrapsValidationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	bad := strings.Replace(smallLevel, "kind: goomba", "kind: dragon", 1)
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "UNKNOWN_ENEMY", verr.Code)
	assert.Contains(t, err.Error(), path)
}

const testTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="6" height="4" tilewidth="16" tileheight="16" infinite="0" nextlayerid="4" nextobjectid="5">
 <tileset firstgid="1" name="koopa" tilewidth="16" tileheight="16" tilecount="3" columns="0">
  <tile id="0"><properties><property name="kind" value="ground"/></properties></tile>
  <tile id="1"><properties><property name="kind" value="question"/></properties></tile>
  <tile id="2"><properties><property name="kind" value="pole"/></properties></tile>
 </tileset>
 <layer id="1" name="tiles" width="6" height="4">
  <data encoding="csv">
0,0,0,0,0,3,
0,0,2,0,0,3,
0,0,0,0,0,3,
1,1,1,1,1,1
</data>
 </layer>
 <objectgroup id="2" name="markers">
  <object id="1" name="player_start" x="8" y="40"/>
  <object id="2" name="flag" x="88" y="40"/>
 </objectgroup>
 <objectgroup id="3" name="enemies">
  <object id="3" name="goomba" x="56" y="40"/>
 </objectgroup>
 <objectgroup id="4" name="blocks">
  <object id="4" name="star" x="40" y="24"/>
 </objectgroup>
</map>
`

func TestImportTMX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.tmx")
	require.NoError(t, os.WriteFile(path, []byte(testTMX), 0o600))

	d, err := ImportTMX(path, TMXOptions{ID: "tmx", Name: "Tiled", Time: 200})
	require.NoError(t, err)

	assert.Equal(t, 6, d.Cols())
	assert.Equal(t, 4, d.Rows())
	assert.Equal(t, tile.Ground, d.KindAt(0, 3))
	assert.Equal(t, tile.Question, d.KindAt(2, 1))
	assert.Equal(t, tile.Pole, d.KindAt(5, 2))
	assert.Equal(t, tile.Pos{Col: 0, Row: 2}, d.PlayerStart)
	assert.Equal(t, tile.Pos{Col: 5, Row: 2}, d.Flag)
	assert.Equal(t, []Spawn{{Col: 3, Row: 2, Kind: Goomba}}, d.Enemies)
	assert.Equal(t, tile.ContentStar, d.Blocks[tile.Pos{Col: 2, Row: 1}])
	assert.Equal(t, 200, d.Time)

	// LoadFile routes .tmx through the importer.
	viaLoad, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, d.Tiles, viaLoad.Tiles)
}

func TestWatchFileReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lvl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallLevel), 0o600))

	w, err := WatchFile(path)
	require.NoError(t, err)
	defer w.Close()

	// Writes to other files in the directory are filtered out.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte(smallLevel), 0o600))
	require.NoError(t, os.WriteFile(path, []byte(smallLevel+"\n"), 0o600))

	select {
	case name := <-w.Events:
		assert.Equal(t, "lvl.yaml", filepath.Base(name))
	case <-time.After(3 * time.Second):
		t.Fatal("no watch event for edited level file")
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "Close is idempotent")
}
