package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/vesta/engine/assets/loaders"
	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

var ErrAssetNotFound = errors.New("asset not found")

type AssetInfo struct {
	Path       string
	Name       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager keeps an index of the shader and model files below a set of
// directories. A watcher keeps the index current as files come and go.
type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	started  bool
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	am.registerLoader(metadata.ResourceTypeBinary, &loaders.BinaryLoader{})
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeModel, &loaders.ModelLoader{})
	return am, nil
}

// Initialize indexes and watches every existing directory in dirs. Missing
// directories are skipped.
func (am *AssetManager) Initialize(dirs ...string) error {
	am.mutex.Lock()
	if am.started || am.isClosed {
		am.mutex.Unlock()
		return errors.New("asset manager already initialized")
	}
	am.started = true
	am.mutex.Unlock()
	go am.start()

	for _, dir := range dirs {
		if s, err := os.Stat(dir); err != nil || !s.IsDir() {
			core.LogWarn("asset directory %s not found, skipping", dir)
			continue
		}
		if err := am.addRecursive(dir); err != nil {
			return err
		}
	}
	core.LogInfo("Asset manager indexed %d files.", am.Len())
	return nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return core.ErrAlreadyDestroyed
	}
	am.isClosed = true
	started := am.started
	am.mutex.Unlock()

	if !started {
		return am.fsnotify.Close()
	}
	close(am.done)
	<-am.stopped
	return nil
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	am.mutex.RLock()
	closed := am.isClosed
	am.mutex.RUnlock()
	if closed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name)
}

func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

func (am *AssetManager) Len() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Find returns the indexed asset with the given name and type. The name is
// the file name without its last extension, so shader.vert.spv is
// "shader.vert".
func (am *AssetManager) Find(name string, resourceType metadata.ResourceType) (AssetInfo, error) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	for _, asset := range am.assets {
		if asset.Name == name && asset.Type == resourceType {
			return asset, nil
		}
	}
	return AssetInfo{}, fmt.Errorf("%s %q: %w", resourceType, name, ErrAssetNotFound)
}

// List returns the indexed assets of one type sorted by path.
func (am *AssetManager) List(resourceType metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	out := make([]AssetInfo, 0, len(am.assets))
	for _, asset := range am.assets {
		if asset.Type == resourceType {
			out = append(out, asset)
		}
	}
	am.mutex.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// LoadAsset finds an asset by name and runs the loader for its type.
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	asset, err := am.Find(name, resourceType)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return am.LoadPath(asset.Path, params)
}

// LoadPath loads an indexed file by path.
func (am *AssetManager) LoadPath(path string, params interface{}) (*metadata.Resource, error) {
	am.mutex.Lock()
	asset, exists := am.assets[path]
	if exists {
		asset.LastLoaded = time.Now()
		am.assets[path] = asset
	}
	am.mutex.Unlock()
	if !exists {
		err := fmt.Errorf("%s: %w", path, ErrAssetNotFound)
		core.LogError(err.Error())
		return nil, err
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(path, asset.Type, params)
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	if asset == nil {
		return fmt.Errorf("unload: %w", core.ErrInvalidHandle)
	}
	loader, ok := am.loaders[asset.ResourceType]
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %s", asset.ResourceType)
	}
	return loader.Unload(asset)
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogWarn("cannot watch %s: %s", e.Name, err)
			}
			return
		}
	}
	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		am.handleFileEvent(e.Name)
	}
	// Removed directories cannot be stat'ed, so every removal also drops
	// whatever was indexed below that path.
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		am.removeAsset(e.Name)
	}
}

// watchRecursive adds all directories under path to the watch list and
// indexes the files found on the way.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}
	path = filepath.Clean(path)

	am.mutex.Lock()
	defer am.mutex.Unlock()
	if _, known := am.assets[path]; !known {
		core.LogDebug("Indexed %s asset %s", assetType, path)
	}
	am.assets[path] = AssetInfo{
		Path: path,
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Type: assetType,
	}
}

func (am *AssetManager) removeAsset(path string) {
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)

	am.mutex.Lock()
	defer am.mutex.Unlock()
	for p := range am.assets {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(am.assets, p)
		}
	}
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".spv":
		return metadata.ResourceTypeShader
	case ".obj":
		return metadata.ResourceTypeModel
	case ".bin":
		return metadata.ResourceTypeBinary
	default:
		return metadata.ResourceTypeNone
	}
}
