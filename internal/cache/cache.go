package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"inlet/internal/logger"
	"inlet/internal/resolver"
)

// Many modules in one npm package share a single "package.json", so the
// manifest would otherwise be re-parsed once per module. The parse result is
// considered immutable and is shared between concurrent module-view
// constructions.
//
// The cached value must not depend on the contents of any file other than
// the manifest being cached, since invalidating an entry does not invalidate
// entries that depend on it.
type PackageJSONCache struct {
	mutex   sync.Mutex
	entries *lru.Cache[logger.Path, *packageJSONEntry]
}

type packageJSONEntry struct {
	contents string
	pkg      *resolver.PackageJSON
	msgs     []logger.Msg
}

// Bounded so that watch-mode rebuilds over very large dependency trees can't
// grow without limit.
const packageJSONCacheSize = 4096

func MakePackageJSONCache() *PackageJSONCache {
	entries, err := lru.New[logger.Path, *packageJSONEntry](packageJSONCacheSize)
	if err != nil {
		panic(err)
	}
	return &PackageJSONCache{entries: entries}
}

// Parse returns the parsed manifest for the given source, reusing a previous
// result when the contents are unchanged. Warnings from the original parse
// are replayed into the log so every build sees the same diagnostics.
func (c *PackageJSONCache) Parse(log logger.Log, source logger.Source) *resolver.PackageJSON {
	c.mutex.Lock()
	entry, ok := c.entries.Get(source.KeyPath)
	c.mutex.Unlock()

	if ok && entry.contents == source.Contents {
		for _, msg := range entry.msgs {
			log.AddMsg(msg)
		}
		return entry.pkg
	}

	parseLog := logger.NewDeferLog()
	pkg := resolver.ParsePackageJSON(parseLog, source)
	msgs := parseLog.Done()
	for _, msg := range msgs {
		log.AddMsg(msg)
	}

	c.mutex.Lock()
	c.entries.Add(source.KeyPath, &packageJSONEntry{
		contents: source.Contents,
		pkg:      pkg,
		msgs:     msgs,
	})
	c.mutex.Unlock()
	return pkg
}
