package assets

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/tessera/engine/core"
)

type AssetType int

const (
	AssetTypeNone AssetType = iota
	AssetTypeMesh
	AssetTypeTexture
	AssetTypeShader
)

type AssetInfo struct {
	Path       string
	Type       AssetType
	LastLoaded time.Time
}

// Manager indexes the asset directory and, when watching is enabled, fires
// EVENT_CODE_ASSET_CHANGED for files created or modified on disk so changed
// meshes flow back through the import pipeline.
type Manager struct {
	assetsDir string
	assets    map[string]AssetInfo

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewManager() (*Manager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Manager{
		assets:   make(map[string]AssetInfo),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

func (am *Manager) Initialize(assetsDir string, watch bool) error {
	am.assetsDir = assetsDir

	if _, err := os.Stat(assetsDir); err != nil {
		core.LogWarn("asset directory %q not found, hot reload disabled", assetsDir)
		return nil
	}
	if err := am.watchRecursive(assetsDir); err != nil {
		return err
	}
	if watch {
		go am.start()
	}
	return nil
}

func (am *Manager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	return nil
}

// ResolvePath turns an asset-relative path into an absolute one rooted at
// the configured assets directory.
func (am *Manager) ResolvePath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(am.assetsDir, rel)
}

// Assets returns a snapshot of the indexed files of the given type.
func (am *Manager) Assets(t AssetType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	var out []AssetInfo
	for _, a := range am.assets {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

func (am *Manager) start() {
	for {
		select {
		case e := <-am.fsnotify.Events:
			s, statErr := os.Stat(e.Name)
			if statErr == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("failed to watch new directory %q: %s", e.Name, err.Error())
					}
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if am.indexFile(e.Name) {
					core.EventFire(core.EventContext{
						Type: core.EVENT_CODE_ASSET_CHANGED,
						Data: e.Name,
					})
				}
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
				am.fsnotify.Remove(e.Name)
			}

		case e := <-am.fsnotify.Errors:
			if e != nil {
				core.LogError(e.Error())
			}

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files it encounters.
func (am *Manager) watchRecursive(path string) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.indexFile(walkPath)
		return nil
	})
}

func (am *Manager) indexFile(path string) bool {
	assetType := determineAssetType(path)
	if assetType == AssetTypeNone {
		return false
	}
	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()
	return true
}

func (am *Manager) removeAsset(path string) {
	am.mutex.Lock()
	delete(am.assets, path)
	am.mutex.Unlock()
}

func determineAssetType(path string) AssetType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return AssetTypeMesh
	case ".png", ".jpg", ".jpeg":
		return AssetTypeTexture
	case ".spv":
		return AssetTypeShader
	default:
		return AssetTypeNone
	}
}
